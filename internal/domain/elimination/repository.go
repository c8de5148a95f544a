package elimination

import "context"

type Repository interface {
	ListBySeason(ctx context.Context, seasonID string) ([]Elimination, error)
	ListByGameweek(ctx context.Context, seasonID string, week int) ([]Elimination, error)
	IsProcessed(ctx context.Context, seasonID string, week int) (bool, error)
	// SaveBatch writes the batch marker and its items atomically; it returns
	// ErrAlreadyProcessed when a marker for the gameweek exists.
	SaveBatch(ctx context.Context, batch Batch) error
}
