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

// WSLogger logs websocket lifecycle events for one hub. The hub name is
// bound once so every record carries it.
type WSLogger struct {
	logger *slog.Logger
}

// NewWSLogger creates a new WSLogger for the given hub.
func NewWSLogger(hubName string) *WSLogger {
	return &WSLogger{logger: GlobalLogger.With(slog.String("hub", hubName))}
}

// LogConnect records a client joining the hub.
func (l *WSLogger) LogConnect(ctx context.Context, userID uint, count int) {
	l.logger.InfoContext(ctx, "websocket connected",
		slog.Uint64("user_id", uint64(userID)),
		slog.Int("local_users", count),
	)
}

// LogDisconnect records a client leaving the hub.
func (l *WSLogger) LogDisconnect(ctx context.Context, userID uint, count int, reason string) {
	l.logger.InfoContext(ctx, "websocket disconnected",
		slog.Uint64("user_id", uint64(userID)),
		slog.Int("local_users", count),
		slog.String("reason", reason),
	)
}

// LogError records a websocket failure.
func (l *WSLogger) LogError(ctx context.Context, userID uint, err error, eventType string) {
	l.logger.ErrorContext(ctx, "websocket error",
		slog.Uint64("user_id", uint64(userID)),
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}
