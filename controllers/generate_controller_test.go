package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"plain json",
			`{"subject":"Hola"}`,
			`{"subject":"Hola"}`,
		},
		{
			"fenced json",
			"```json\n{\"subject\":\"Hola\"}\n```",
			`{"subject":"Hola"}`,
		},
		{
			"surrounding prose",
			"Aquí está el email:\n{\"subject\":\"Hola\"}\nEspero que sirva.",
			`{"subject":"Hola"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}

func TestFormatNewsContext(t *testing.T) {
	empty := formatNewsContext(nil)
	assert.Contains(t, empty, "No se encontraron noticias")

	withItems := formatNewsContext([]newsItem{
		{Title: "Noticia uno", Source: "ACI Prensa", Link: "https://example.com/1"},
	})
	assert.Contains(t, withItems, "Noticia uno")
	assert.Contains(t, withItems, "https://example.com/1")
	assert.Contains(t, withItems, "no inventes noticias")
}

func TestSystemPromptsCoverEveryEmailType(t *testing.T) {
	for _, emailType := range []string{"sequence", "broadcast", "gospel_reflection", "pope_words", "news", "launch"} {
		assert.Contains(t, systemPrompts, emailType)
	}
}
