package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Route templates keep label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Timer measures a classifier round trip.
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer starts a timer. A nil metrics makes Stop a no-op.
func NewTimer(metrics *Metrics) *Timer {
	return &Timer{start: time.Now(), metrics: metrics}
}

// Stop records the elapsed time under outcome.
func (t *Timer) Stop(outcome string) time.Duration {
	elapsed := time.Since(t.start)
	if t.metrics != nil {
		t.metrics.RecordClassification(outcome, elapsed)
	}
	return elapsed
}
