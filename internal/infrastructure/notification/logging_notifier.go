// Package notification provides best-effort delivery of branch notifications.
package notification

import (
	"context"

	"github.com/assetflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LoggingNotifier writes notifications to the structured log. It is the
// default sink when no external channel (SMS gateway, push service) is
// configured; delivery failures cannot occur.
type LoggingNotifier struct {
	logger *zap.Logger
}

func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger}
}

func (n *LoggingNotifier) Notify(_ context.Context, notification shared.Notification) {
	n.logger.Info("branch notification",
		zap.String("branch_id", notification.BranchID.String()),
		zap.String("type", string(notification.Type)),
		zap.String("title", notification.Title),
		zap.String("message", notification.Message),
		zap.Any("payload", notification.Payload),
	)
}

// CompositeNotifier fans a notification out to every registered sink.
type CompositeNotifier struct {
	sinks []shared.Notifier
}

func NewCompositeNotifier(sinks ...shared.Notifier) *CompositeNotifier {
	return &CompositeNotifier{sinks: sinks}
}

func (n *CompositeNotifier) Notify(ctx context.Context, notification shared.Notification) {
	for _, sink := range n.sinks {
		sink.Notify(ctx, notification)
	}
}

var (
	_ shared.Notifier = (*LoggingNotifier)(nil)
	_ shared.Notifier = (*CompositeNotifier)(nil)
)
