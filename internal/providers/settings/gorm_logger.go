package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/logging"
)

const slowQueryThreshold = time.Second

// GormLogger writes GORM's logs through zap.
type GormLogger struct {
	log      *logging.Logger
	LogLevel logger.LogLevel
}

// NewGormLogger creates a GORM logger at Warn level.
func NewGormLogger(l *logging.Logger) *GormLogger {
	return &GormLogger{log: l.Named("gorm"), LogLevel: logger.Warn}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Info {
		l.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Warn {
		l.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Error {
		l.log.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs failed and slow statements; at Info level every statement
// is logged at debug.
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && l.LogLevel >= logger.Error && !isNotFound(err):
		l.log.Error("SQL failed", append(fields, zap.Error(err))...)
	case elapsed > slowQueryThreshold && l.LogLevel >= logger.Warn:
		l.log.Warn("Slow SQL", append(fields, zap.Duration("threshold", slowQueryThreshold))...)
	case l.LogLevel == logger.Info:
		l.log.Debug("SQL", fields...)
	}
}

// Lookups of absent keys are expected.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
