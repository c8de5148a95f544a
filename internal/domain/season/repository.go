package season

import "context"

type Repository interface {
	List(ctx context.Context) ([]Season, error)
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
	GetActive(ctx context.Context) (Season, bool, error)
	Create(ctx context.Context, item Season) error
	// Activate flips is_active to the target season and clears it on every other
	// season in one transaction. Returns ErrNotFound or ErrArchived.
	Activate(ctx context.Context, seasonID string) (Season, error)
}
