package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/boscogd/waitlist/models"
	"github.com/boscogd/waitlist/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

type stubMailer struct {
	sent []utils.OutgoingEmail
}

func (m *stubMailer) Send(email utils.OutgoingEmail) (string, error) {
	m.sent = append(m.sent, email)
	return "msg-1", nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newWaitlistApp(t *testing.T) (*fiber.App, *gorm.DB, *stubMailer) {
	t.Helper()
	db := newTestDB(t)
	mailer := &stubMailer{}
	wc := NewWaitlistController(db, mailer, discardLogger())

	app := fiber.New()
	app.Post("/api/waitlist", wc.JoinWaitlist)
	app.Get("/api/waitlist", wc.CheckWaitlist)
	app.Post("/api/waitlist/unsubscribe", wc.Unsubscribe)
	return app, db, mailer
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestJoinWaitlist(t *testing.T) {
	app, db, mailer := newWaitlistApp(t)

	resp, body := postJSON(t, app, "/api/waitlist", fiber.Map{
		"email": "Maria@Example.com",
		"name":  "María",
	})

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	code, _ := body["code"].(string)
	assert.True(t, strings.HasPrefix(code, "REFUGIO-"))

	var entry models.WaitlistEntry
	require.NoError(t, db.Where("email = ?", "maria@example.com").First(&entry).Error)
	assert.Equal(t, "María", entry.Name)
	assert.Equal(t, 0, entry.EmailSequenceStep)
	assert.False(t, entry.Unsubscribed)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "maria@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].HTMLContent, code)
}

func TestJoinWaitlistDuplicateReturnsExistingCode(t *testing.T) {
	app, _, _ := newWaitlistApp(t)

	_, first := postJSON(t, app, "/api/waitlist", fiber.Map{
		"email": "maria@example.com",
		"name":  "María",
	})

	resp, second := postJSON(t, app, "/api/waitlist", fiber.Map{
		"email": "MARIA@example.com",
		"name":  "María otra vez",
	})

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, first["code"], second["code"])
}

func TestJoinWaitlistValidation(t *testing.T) {
	app, _, mailer := newWaitlistApp(t)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing email", fiber.Map{"name": "María"}},
		{"missing name", fiber.Map{"email": "a@example.com"}},
		{"invalid email", fiber.Map{"email": "not-an-email", "name": "María"}},
		{"name too short", fiber.Map{"email": "a@example.com", "name": "M"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postJSON(t, app, "/api/waitlist", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Empty(t, mailer.sent)
}

func TestCheckWaitlist(t *testing.T) {
	app, _, _ := newWaitlistApp(t)

	_, created := postJSON(t, app, "/api/waitlist", fiber.Map{
		"email": "pedro@example.com",
		"name":  "Pedro",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/waitlist?email=pedro@example.com", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, created["code"], body["code"])

	req = httptest.NewRequest(http.MethodGet, "/api/waitlist?email=nobody@example.com", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["exists"])
}

func TestUnsubscribe(t *testing.T) {
	app, db, _ := newWaitlistApp(t)

	_, created := postJSON(t, app, "/api/waitlist", fiber.Map{
		"email": "ana@example.com",
		"name":  "Ana",
	})
	code := created["code"].(string)

	resp, _ := postJSON(t, app, "/api/waitlist/unsubscribe", fiber.Map{
		"email": "ana@example.com",
		"code":  code,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var entry models.WaitlistEntry
	require.NoError(t, db.Where("email = ?", "ana@example.com").First(&entry).Error)
	assert.True(t, entry.Unsubscribed)
	require.NotNil(t, entry.UnsubscribedAt)

	// Repeating the request stays successful
	resp, _ = postJSON(t, app, "/api/waitlist/unsubscribe", fiber.Map{
		"email": "ana@example.com",
		"code":  code,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUnsubscribeWrongCode(t *testing.T) {
	app, db, _ := newWaitlistApp(t)

	postJSON(t, app, "/api/waitlist", fiber.Map{
		"email": "ana@example.com",
		"name":  "Ana",
	})

	resp, _ := postJSON(t, app, "/api/waitlist/unsubscribe", fiber.Map{
		"email": "ana@example.com",
		"code":  "REFUGIO-WRONG",
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var entry models.WaitlistEntry
	require.NoError(t, db.Where("email = ?", "ana@example.com").First(&entry).Error)
	assert.False(t, entry.Unsubscribed)
}
