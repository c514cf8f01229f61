package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger emits structured audit records for security-relevant actions.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, userID int64, action, resource string, resourceID int64, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.Int64("resource_id", resourceID),
		slog.Int64("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogRegistration(ctx context.Context, userID int64, status, details string) {
	al.LogAction(ctx, userID, "register", "user", userID, status, details)
}

func (al *Logger) LogLogin(ctx context.Context, userID int64, status, details string) {
	al.LogAction(ctx, userID, "login", "user", userID, status, details)
}

func (al *Logger) LogTaskMutation(ctx context.Context, userID int64, action string, taskID int64, status string) {
	al.LogAction(ctx, userID, action, "task", taskID, status, "")
}

func (al *Logger) LogDenied(ctx context.Context, userID int64, reason string) {
	al.LogAction(ctx, userID, "access_denied", "api", 0, "denied", reason)
}
