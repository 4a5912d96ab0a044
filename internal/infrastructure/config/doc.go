// Package config provides 12-factor configuration management for the
// SafeWaters navigation guard.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/server can override the loaded values.
//
// Configuration Sections:
//   - Server: HTTP listen address for the extension bridge and API
//   - Classifier: remote reputation service URL, timeout and rate
//   - Storage: sqlite DSN for the credential and protection flag
//   - Guard: approval TTL, sweep cadence, tracker ages, patterns file
//   - Bridge: command acknowledgement timeout
//   - Logging: level, console mode, rotated log file
//   - RateLimit: per-client API rate limiting
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("guard listening on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
package config
