// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// Context keys for logging
const (
	RequestIDKey LogContextKey = "request_id"
	UserIDKey    LogContextKey = "user_id"
)

// WithRequestID returns a context carrying the request ID for log enrichment.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// FromContext returns a logger enriched with request-scoped attributes.
func (l *Logger) FromContext(ctx context.Context) *slog.Logger {
	logger := l.Logger
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		logger = logger.With(slog.String("request_id", id))
	}
	if uid, ok := ctx.Value(UserIDKey).(uint); ok && uid != 0 {
		logger = logger.With(slog.Uint64("user_id", uint64(uid)))
	}
	return logger
}
