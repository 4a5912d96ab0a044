/*
Package tracing provides lightweight request tracing for the guard.

A trace starts at the edge (an HTTP request or a bridge frame) and its id
travels in the context down to the classifier, which forwards it to the
reputation service as X-Trace-ID. Finished spans are logged by a
background collector; a full buffer drops spans instead of blocking the
decision path.

# Usage

	tracer := tracing.New("guard", logger)
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "bridge message")
	defer func() { span.Finish(); tracer.Submit(span) }()

	tracing.Inject(ctx, req.Header)
*/
package tracing
