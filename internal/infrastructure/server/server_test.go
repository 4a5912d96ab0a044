package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "settings.db")
	cfg.Classifier.BaseURL = "http://127.0.0.1:1"

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func serve(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestServerRoutes(t *testing.T) {
	srv := newTestServer(t)

	w := serve(srv, "GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "bridge_connected").Bool())
	assert.Equal(t, "closed", gjson.Get(w.Body.String(), "classifier_breaker").String())
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w = serve(srv, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "safewaters_")

	w = serve(srv, "POST", "/messages", `{"action":"getConfig","tabId":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://127.0.0.1:1", gjson.Get(w.Body.String(), "config.apiBaseUrl").String())
	assert.False(t, gjson.Get(w.Body.String(), "config.configured").Bool())
}

func TestServerPersistsSettings(t *testing.T) {
	srv := newTestServer(t)

	w := serve(srv, "POST", "/messages", `{"action":"setProtection","enabled":false,"tabId":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, gjson.Get(w.Body.String(), "success").Bool())

	w = serve(srv, "POST", "/messages", `{"action":"getConfig","tabId":1}`)
	assert.False(t, gjson.Get(w.Body.String(), "config.protectionEnabled").Bool())
}

func TestNewServerRejectsBadPatterns(t *testing.T) {
	cfg := config.Default()
	cfg.Guard.PatternsFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewServer(cfg)
	assert.Error(t, err)
}
