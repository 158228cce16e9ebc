// Package log provides the package-level structured logging surface used
// throughout the module. It wraps a zap.SugaredLogger behind a small set of
// level-prefixed functions so call sites never import zap directly.
package log

import (
	"sync"

	"go.uber.org/zap"
)

// Logger is the interface the package-level functions delegate to. Embedders
// may supply their own implementation via SetLogger.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

var (
	mu      sync.RWMutex
	current Logger = newDefault()
)

func newDefault() Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Fall back to a no-sampling development logger; should not happen
		// with a static config.
		z = zap.NewExample()
	}
	return z.Sugar()
}

// SetLogger replaces the package-level logger. Passing nil restores the
// default zap-backed logger.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		current = newDefault()
		return
	}
	current = l
}

func get() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Debug logs at debug level.
func Debug(args ...interface{}) { get().Debug(args...) }

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...interface{}) { get().Debugf(format, args...) }

// Info logs at info level.
func Info(args ...interface{}) { get().Info(args...) }

// Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) { get().Infof(format, args...) }

// Warn logs at warn level.
func Warn(args ...interface{}) { get().Warn(args...) }

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...interface{}) { get().Warnf(format, args...) }

// Error logs at error level.
func Error(args ...interface{}) { get().Error(args...) }

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) { get().Errorf(format, args...) }

// Fatal logs at fatal level then terminates the process.
func Fatal(args ...interface{}) { get().Fatal(args...) }

// Fatalf logs a formatted message at fatal level then terminates the process.
func Fatalf(format string, args ...interface{}) { get().Fatalf(format, args...) }
