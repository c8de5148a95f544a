package participation

import (
	"context"
	"time"
)

// Participation is a user's entry into a season. Only approved entries play.
type Participation struct {
	UserID     string
	SeasonID   string
	IsApproved bool
	ApprovedAt *time.Time
	CreatedAt  time.Time
}

type Repository interface {
	Get(ctx context.Context, userID, seasonID string) (Participation, bool, error)
	ListApproved(ctx context.Context, seasonID string) ([]Participation, error)
	Upsert(ctx context.Context, item Participation) error
}
