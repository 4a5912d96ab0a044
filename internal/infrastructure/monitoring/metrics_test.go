package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolated(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordDecision("CLICK", "ALLOW")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Decisions.WithLabelValues("CLICK", "ALLOW")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Decisions.WithLabelValues("CLICK", "ALLOW")))
}

func TestRecordSweepSkipsZero(t *testing.T) {
	m := NewMetrics()

	m.RecordSweep("ledger", 0)
	m.RecordSweep("tracker", 3)

	assert.Equal(t, 1, testutil.CollectAndCount(m.SweepRemoved))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SweepRemoved.WithLabelValues("tracker")))
}

func TestTimer(t *testing.T) {
	m := NewMetrics()

	NewTimer(m).Stop("uncertain")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClassifierCalls.WithLabelValues("uncertain")))

	// nil metrics only measures
	assert.GreaterOrEqual(t, NewTimer(nil).Stop("safe"), time.Duration(0))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "safewaters_http_requests_total")
	assert.Contains(t, w.Body.String(), "safewaters_uptime_seconds")
}
