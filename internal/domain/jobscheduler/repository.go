package jobscheduler

import "context"

// Repository keeps the latest state of every sweep run.
type Repository interface {
	UpsertEvent(ctx context.Context, event DispatchEvent) error
}
