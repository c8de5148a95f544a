package fixture

import "context"

// Repository exposes fixture read operations. Fixtures are written by the
// external data sync; this service only reads them.
type Repository interface {
	ListBySeason(ctx context.Context, seasonID string) ([]Fixture, error)
	ListByGameweek(ctx context.Context, seasonID string, week int) ([]Fixture, error)
}
