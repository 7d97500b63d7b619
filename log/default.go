package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// DefaultContextProvider supplies the context for logging calls that do not
// take one.
//
//nolint:gochecknoglobals
var DefaultContextProvider = context.TODO

//nolint:gochecknoglobals
var (
	defaultMu  sync.RWMutex
	defaultLog = Make(os.Stderr)
)

// Default returns the package-level logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultLog
}

// Config applies opts to the package-level logger.
func Config(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = defaultLog.Wrap(opts...)
}

// SetDefault replaces the package-level logger.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = l
}

// pkgSkip counts runtime.Callers, logDepth and the package-level function.
const pkgSkip = 3

// TraceContext logs at [LevelTrace] with the default logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logDepth(ctx, pkgSkip, LevelTrace, msg, attrs...)
}

// DebugContext logs at [LevelDebug] with the default logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logDepth(ctx, pkgSkip, LevelDebug, msg, attrs...)
}

// InfoContext logs at [LevelInfo] with the default logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logDepth(ctx, pkgSkip, LevelInfo, msg, attrs...)
}

// WarnContext logs at [LevelWarn] with the default logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logDepth(ctx, pkgSkip, LevelWarn, msg, attrs...)
}

// ErrorContext logs at [LevelError] with the default logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logDepth(ctx, pkgSkip, LevelError, msg, attrs...)
}

// Trace logs at [LevelTrace] with the default logger.
func Trace(msg string, attrs ...slog.Attr) {
	Default().logDepth(DefaultContextProvider(), pkgSkip, LevelTrace, msg, attrs...)
}

// Debug logs at [LevelDebug] with the default logger.
func Debug(msg string, attrs ...slog.Attr) {
	Default().logDepth(DefaultContextProvider(), pkgSkip, LevelDebug, msg, attrs...)
}

// Info logs at [LevelInfo] with the default logger.
func Info(msg string, attrs ...slog.Attr) {
	Default().logDepth(DefaultContextProvider(), pkgSkip, LevelInfo, msg, attrs...)
}

// Warn logs at [LevelWarn] with the default logger.
func Warn(msg string, attrs ...slog.Attr) {
	Default().logDepth(DefaultContextProvider(), pkgSkip, LevelWarn, msg, attrs...)
}

// Error logs at [LevelError] with the default logger.
func Error(msg string, attrs ...slog.Attr) {
	Default().logDepth(DefaultContextProvider(), pkgSkip, LevelError, msg, attrs...)
}

// With returns the default logger with attrs added.
func With(attrs ...slog.Attr) Logger {
	return Default().With(attrs...)
}
