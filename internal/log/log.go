// Package log is the application-wide structured logger.
// Call sites pass a message followed by key/value pairs.
package log

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	base    *zap.Logger
	sugar   *zap.SugaredLogger
	initOne sync.Once
)

// initDefault installs an INFO-level production logger on first use.
func initDefault() {
	initOne.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if base != nil {
			return
		}
		l, err := newLogger("info")
		if err != nil {
			l = zap.NewNop()
		}
		base = l
		sugar = l.Sugar()
	})
}

// Init replaces the global logger with one at the given level
// ("debug", "info", "warn", "error"). Unknown levels fall back to info.
func Init(level string) error {
	l, err := newLogger(level)
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Set installs l as the global logger. Tests use it with zap.NewNop or an observer core.
func Set(l *zap.Logger) {
	initOne.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	base = l
	sugar = l.Sugar()
}

// Logger returns the underlying zap logger for components that take one by injection.
func Logger() *zap.Logger {
	initDefault()
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger().Sync()
}

func Debug(msg string, kv ...any) {
	current().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	current().Infow(msg, kv...)
}

func Warn(msg string, kv ...any) {
	current().Warnw(msg, kv...)
}

// Error logs msg with err attached under the "err" key.
func Error(msg string, err error, kv ...any) {
	extended := append([]any{zap.Error(err)}, kv...)
	current().Errorw(msg, extended...)
}

func current() *zap.SugaredLogger {
	initDefault()
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn", "warning":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
