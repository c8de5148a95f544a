package usecase

import (
	"context"

	"github.com/riskibarqy/survivor-league/internal/domain/notification"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/riskibarqy/survivor-league/internal/platform/metrics"
)

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, notification.Message) error { return nil }

func notifierOrNoop(n notification.Notifier) notification.Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// sendNotification is fire-and-forget: failures are logged and counted, never returned.
func sendNotification(ctx context.Context, notifier notification.Notifier, logger *logging.Logger, msg notification.Message) {
	if err := notifier.Notify(ctx, msg); err != nil {
		metrics.Notifications.WithLabelValues(msg.Kind, "failed").Inc()
		logger.WarnContext(ctx, "notification send failed",
			"kind", msg.Kind,
			"user_id", msg.UserID,
			"season_id", msg.SeasonID,
			"gameweek", msg.Gameweek,
			"error", err,
		)
		return
	}
	metrics.Notifications.WithLabelValues(msg.Kind, "sent").Inc()
}
