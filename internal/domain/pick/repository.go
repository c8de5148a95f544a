package pick

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, pickID string) (Pick, bool, error)
	GetByUserGameweek(ctx context.Context, userID, seasonID string, week int) (Pick, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Pick, error)
	ListByUser(ctx context.Context, userID, seasonID string) ([]Pick, error)
	ListByGameweek(ctx context.Context, seasonID string, week int) ([]Pick, error)
	// Create returns ErrDuplicatePick when (user, season, gameweek) is taken.
	Create(ctx context.Context, item Pick) error
	UpdateTeam(ctx context.Context, pickID, teamID string, updatedAt time.Time) error
	Delete(ctx context.Context, pickID string) error
	UpdateScores(ctx context.Context, updates []ScoreUpdate) (int, error)
}

type RuleRepository interface {
	Get(ctx context.Context, seasonID string, half int) (Rule, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Rule, error)
	Upsert(ctx context.Context, rule Rule) error
}
