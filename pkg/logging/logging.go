// Package logging provides the structured logging facade used across the
// client. It is a thin layer over zap so that library packages depend on a
// small interface and applications control the backend.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface consumed by the client packages.
// keysAndValues are treated as alternating key-value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})

	// With returns a new logger carrying the given key-value pair on
	// every subsequent entry.
	With(key string, value interface{}) Logger

	// Named returns a new logger for a subsystem.
	Named(name string) Logger
}

type zapLogger struct {
	lg *zap.SugaredLogger
}

var _ Logger = (*zapLogger)(nil)

// New creates a production zap logger at the given level. Accepted levels
// are "debug", "info", "warn" and "error"; anything else falls back to info.
func New(name, level string) Logger {
	zapLevel := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		zapLevel = parsed
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.DisableStacktrace = true

	lg, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		lg = zap.NewNop()
	}
	return &zapLogger{lg: lg.Named(name).Sugar()}
}

// NewNop returns a logger that discards everything. Used as the default when
// no logger is configured, and throughout the tests.
func NewNop() Logger {
	return &zapLogger{lg: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger.
func FromZap(lg *zap.Logger) Logger {
	return &zapLogger{lg: lg.Sugar()}
}

func (l *zapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.lg.Debugw(msg, keysAndValues...)
}

func (l *zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.lg.Infow(msg, keysAndValues...)
}

func (l *zapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.lg.Warnw(msg, keysAndValues...)
}

func (l *zapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.lg.Errorw(msg, keysAndValues...)
}

func (l *zapLogger) With(key string, value interface{}) Logger {
	return &zapLogger{lg: l.lg.With(key, value)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{lg: l.lg.Named(name)}
}
