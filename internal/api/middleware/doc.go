// Package middleware provides the HTTP middleware of the guard API.
//
// Middleware stack:
//   - Recovery: panic recovery logged through zap
//   - RequestLogger: per-request zap logging
//   - CORS: extension and localhost origins
//   - RateLimit: per-IP token buckets with idle eviction
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Guard.ExtensionBaseURL)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
