// Package main is the entry point for the SafeWaters guard backend.
//
// The guard decides whether a browser navigation may proceed. The
// extension forwards link clicks and top-level navigations over a
// WebSocket bridge; the guard consults the reputation service and answers
// with ALLOW or with a command to show a warning, blocked, uncertain or
// setup page.
//
//	Extension ⇄ /bridge (WebSocket) ⇄ Guard → Reputation service
//	                                    ↳ settings (sqlite)
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	./server -port 8787 -classifier http://127.0.0.1:8000 -storage safewaters.db
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
