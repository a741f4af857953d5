// Package gorm routes GORM log output through the request logger of the
// query context, falling back to the global zerolog logger.
package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/govfinance-admin/govfinance-admin/internal/logger"
)

// Logger implements gorm's logger.Interface on top of zerolog.
type Logger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// New returns a Logger. Queries slower than slowThreshold are logged as
// warnings; zero disables slow query reporting.
func New(slowThreshold time.Duration) *Logger {
	return &Logger{
		level:         levelFromZerolog(zerolog.GlobalLevel()),
		slowThreshold: slowThreshold,
	}
}

func levelFromZerolog(l zerolog.Level) gormlogger.LogLevel {
	switch {
	case l <= zerolog.DebugLevel:
		return gormlogger.Info
	case l == zerolog.InfoLevel, l == zerolog.WarnLevel:
		return gormlogger.Warn
	case l == zerolog.Disabled:
		return gormlogger.Silent
	default:
		return gormlogger.Error
	}
}

// LogMode returns a copy of the logger with the given level.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	n := *l
	n.level = level

	return &n
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		logger.FromContext(ctx).Info().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		logger.FromContext(ctx).Warn().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		logger.FromContext(ctx).Error().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace logs a finished query. Failures are errors, slow queries are
// warnings and everything else is debug output.
func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	lg := logger.FromContext(ctx)

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		lg.Error().Err(err).Str("component", "gorm").Dur("elapsed", elapsed).
			Int64("rows", rows).Str("sql", sql).Msg("query failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		lg.Warn().Str("component", "gorm").Dur("elapsed", elapsed).
			Int64("rows", rows).Str("sql", sql).Msg("slow query")
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		lg.Debug().Str("component", "gorm").Dur("elapsed", elapsed).
			Int64("rows", rows).Str("sql", sql).Msg("query")
	}
}
