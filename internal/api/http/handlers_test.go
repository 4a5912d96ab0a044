package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/browser/browsertest"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/guard"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/providers/settings"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/testutil"
)

func setupRouter(t *testing.T) (*gin.Engine, *testutil.MockClassifier, *browsertest.Host) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cls := testutil.NewMockClassifier(t)
	store := settings.NewMemory()
	require.NoError(t, store.SetCredential(context.Background(), "token-123"))
	host := browsertest.New()

	g := guard.New(guard.DefaultConfig(), guard.Deps{
		Classifier: cls,
		Validator:  cls,
		Store:      store,
		Host:       host,
	})

	router := gin.New()
	NewHandlers(g, Status{
		BridgeConnected: func() bool { return true },
		BreakerState:    func() string { return "closed" },
	}, nil).Register(router)
	return router, cls, host
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := do(router, "GET", "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","bridge_connected":true,"classifier_breaker":"closed"}`, w.Body.String())
}

func TestMessageCheckClick(t *testing.T) {
	router, cls, host := setupRouter(t)
	cls.OnClassify("https://phish.test/", types.ClassificationResult{Malicious: true, Reason: "Phishing"}).Once()

	w := do(router, "POST", "/messages", `{"action":"checkClickUrl","url":"https://phish.test/","tabId":8}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := gjson.Parse(w.Body.String())
	assert.True(t, body.Get("success").Bool())
	assert.Equal(t, "popup", body.Get("result.action").String())
	assert.Equal(t, "warning", body.Get("result.popupType").String())
	assert.Len(t, host.CallsTo("ShowInterstitial"), 1)
}

func TestMessageErrors(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := do(router, "POST", "/messages", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "POST", "/messages", `{"action":"nope","tabId":1}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
	assert.Contains(t, gjson.Get(w.Body.String(), "error").String(), "unknown action")
}

func TestNavigationEvent(t *testing.T) {
	router, cls, host := setupRouter(t)
	cls.OnClassify("https://casino.test/", types.ClassificationResult{BlockedByRule: true}).Once()

	w := do(router, "POST", "/events/navigation", `{"kind":"beforeNavigate","url":"https://casino.test/","tabId":2,"frameId":0}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SHOW_BLOCKED", gjson.Get(w.Body.String(), "decision").String())
	updates := host.CallsTo("UpdateTab")
	require.Len(t, updates, 1)
	assert.Contains(t, updates[0].URL, "blocked.html")
}

func TestNavigationEventInvalid(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := do(router, "POST", "/events/navigation", `{"url":"https://a.test/"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ALLOW", gjson.Get(w.Body.String(), "decision").String())

	w = do(router, "POST", "/events/navigation", `{"kind":"teleport","url":"https://a.test/"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	router, cls, _ := setupRouter(t)
	cls.OnClassify("https://example.com/", types.SafeResult()).Once()

	do(router, "POST", "/messages", `{"action":"checkClickUrl","url":"https://example.com/","tabId":1}`)
	w := do(router, "GET", "/stats", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "clicksProcessed").Int())
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "interceptors.click.allowedDirectly").Int())
}

