package gameweek

import (
	"context"
	"time"
)

type Repository interface {
	ListBySeason(ctx context.Context, seasonID string) ([]Gameweek, error)
	Get(ctx context.Context, seasonID string, weekNumber int) (Gameweek, bool, error)
	// ListDeadlinePassed returns gameweeks of the season whose deadline is at or before now, oldest first.
	ListDeadlinePassed(ctx context.Context, seasonID string, now time.Time) ([]Gameweek, error)
	UpdateEliminationCount(ctx context.Context, seasonID string, weekNumber, count int) error
}
