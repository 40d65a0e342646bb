package logger

import (
	"context"
	"log/slog"
)

// contextKey is unexported to keep the logger entry collision-free.
type contextKey struct{}

var loggerKey = contextKey{}

// WithLogger returns a context carrying the given logger. Middleware
// uses this to attach a request-scoped logger (with trace ID) that
// lower layers retrieve via FromContext.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger stored in ctx, or the process default
// logger when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(loggerKey).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return slog.Default()
}

// FromContextOrDefault returns the logger stored in ctx, or fallback
// when none is present. A nil fallback falls through to the process
// default.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(loggerKey).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
