package notification

import (
	"context"
	"time"
)

const (
	KindAutoAssigned     = "pick.auto_assigned"
	KindDeadlineReminder = "pick.deadline_reminder"
	KindEliminated       = "player.eliminated"
)

// Message is a best-effort user notification. DedupID lets the transport drop
// repeats of the same logical message.
type Message struct {
	Kind     string    `json:"kind"`
	UserID   string    `json:"user_id"`
	SeasonID string    `json:"season_id"`
	Gameweek int       `json:"gameweek"`
	TeamID   string    `json:"team_id,omitempty"`
	Deadline time.Time `json:"deadline,omitempty"`
	DedupID  string    `json:"dedup_id,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
