package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/chat", HandleChat)
	app.Post("/api/clear-session", HandleClearSession)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestHandleChatEmptyMessage(t *testing.T) {
	app := newTestApp()

	resp := postJSON(t, app, "/api/chat", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/api/chat", map[string]string{"message": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleChatInvalidBody(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleClearSessionRequiresID(t *testing.T) {
	app := newTestApp()

	resp := postJSON(t, app, "/api/clear-session", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleClearSessionUnknownID(t *testing.T) {
	app := newTestApp()

	resp := postJSON(t, app, "/api/clear-session", map[string]string{"session_id": "never-existed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Cleared   bool   `json:"cleared"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Cleared)
	assert.Equal(t, "never-existed", body.SessionID)
}
