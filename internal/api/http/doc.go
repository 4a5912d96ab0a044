// Package http serves the guard over plain request/response HTTP.
//
//	GET  /                    service identity
//	GET  /health              {status, bridge_connected, classifier_breaker}
//	GET  /stats               lifetime counters
//	POST /messages            extension message, answered with guard.Response
//	POST /events/navigation   navigation event, answered with {decision}
//
// The WebSocket bridge carries the same payloads; these routes exist for
// tooling and integration tests.
package http
