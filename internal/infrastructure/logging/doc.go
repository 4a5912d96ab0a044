// Package logging provides structured logging using uber/zap.
//
// Two output modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// When Config.File is set, a second JSON core writes to a size-rotated
// file managed by lumberjack. Both cores share one atomic level.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Guard starting", zap.String("port", "8787"))
//	logger.Named("classifier").Warn("Check failed", zap.Error(err))
package logging
