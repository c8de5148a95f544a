package notifier

import (
	"context"

	"github.com/riskibarqy/survivor-league/internal/domain/notification"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
)

// LogNotifier writes notifications to the structured log. Used when no
// delivery transport is configured.
type LogNotifier struct {
	logger *logging.Logger
}

func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg notification.Message) error {
	n.logger.InfoContext(ctx, "notification",
		"kind", msg.Kind,
		"user_id", msg.UserID,
		"season_id", msg.SeasonID,
		"gameweek", msg.Gameweek,
		"team_id", msg.TeamID,
		"dedup_id", msg.DedupID,
	)
	return nil
}
