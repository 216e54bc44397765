package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateWaitlistCode(t *testing.T) {
	code := GenerateWaitlistCode()

	assert.True(t, strings.HasPrefix(code, "REFUGIO-"))
	suffix := strings.TrimPrefix(code, "REFUGIO-")
	assert.Len(t, suffix, 5)
	for _, r := range suffix {
		assert.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", string(r))
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "maria@example.com", NormalizeEmail("  MARIA@Example.COM "))
	assert.Equal(t, "a@b.co", NormalizeEmail("a@b.co"))
}

func TestPointer(t *testing.T) {
	n := Pointer(3)
	assert.Equal(t, 3, *n)

	s := Pointer("hola")
	assert.Equal(t, "hola", *s)
}
