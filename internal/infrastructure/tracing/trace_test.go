package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer := New("test", nil)

	root, ctx := tracer.StartSpan(context.Background(), "root")
	child, childCtx := tracer.StartSpan(ctx, "child")

	assert.NotEmpty(t, root.TraceID)
	assert.Empty(t, root.ParentID)
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.NotEqual(t, root.SpanID, child.SpanID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))
}

func TestExtractInject(t *testing.T) {
	in := http.Header{}
	in.Set(HeaderTraceID, "trc_abc")
	in.Set(HeaderSpanID, "spn_def")

	ctx := Extract(context.Background(), in)
	assert.Equal(t, TraceID("trc_abc"), GetTraceID(ctx))

	out := http.Header{}
	Inject(ctx, out)
	assert.Equal(t, "trc_abc", out.Get(HeaderTraceID))
	assert.Equal(t, "spn_def", out.Get(HeaderSpanID))

	empty := http.Header{}
	Inject(context.Background(), empty)
	assert.Empty(t, empty)
}

func TestSubmitNeverBlocks(t *testing.T) {
	tracer := &Tracer{spans: make(chan *Span, 1)}
	tracer.logger = New("test", nil).logger

	span := &Span{TraceID: "t", SpanID: "s", Tags: map[string]string{}}
	assert.True(t, tracer.Submit(span))
	assert.False(t, tracer.Submit(span))
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := New("test", nil)

	var seen TraceID
	r := gin.New()
	r.Use(HTTPMiddleware(tracer))
	r.GET("/health", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(HeaderTraceID, "trc_upstream")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, TraceID("trc_upstream"), seen)
	assert.Equal(t, "trc_upstream", w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
}
