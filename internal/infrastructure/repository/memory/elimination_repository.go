package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
)

// EliminationRepository stores one batch per (season, gameweek); a second
// SaveBatch for the same key fails like the SQL primary key would.
type EliminationRepository struct {
	mu      sync.RWMutex
	batches map[gameweekKey]elimination.Batch
}

func NewEliminationRepository() *EliminationRepository {
	return &EliminationRepository{batches: make(map[gameweekKey]elimination.Batch)}
}

func (r *EliminationRepository) ListBySeason(_ context.Context, seasonID string) ([]elimination.Elimination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]elimination.Elimination, 0)
	for key, batch := range r.batches {
		if key.seasonID == seasonID {
			out = append(out, batch.Items...)
		}
	}
	sortEliminations(out)
	return out, nil
}

func (r *EliminationRepository) ListByGameweek(_ context.Context, seasonID string, week int) ([]elimination.Elimination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch := r.batches[gameweekKey{seasonID: seasonID, week: week}]
	out := append([]elimination.Elimination(nil), batch.Items...)
	sortEliminations(out)
	return out, nil
}

func (r *EliminationRepository) IsProcessed(_ context.Context, seasonID string, week int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.batches[gameweekKey{seasonID: seasonID, week: week}]
	return ok, nil
}

func (r *EliminationRepository) SaveBatch(_ context.Context, batch elimination.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := gameweekKey{seasonID: batch.SeasonID, week: batch.GameweekNumber}
	if _, exists := r.batches[key]; exists {
		return elimination.ErrAlreadyProcessed
	}
	batch.Items = append([]elimination.Elimination(nil), batch.Items...)
	r.batches[key] = batch
	return nil
}

func sortEliminations(items []elimination.Elimination) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].GameweekNumber != items[j].GameweekNumber {
			return items[i].GameweekNumber < items[j].GameweekNumber
		}
		return items[i].Position < items[j].Position
	})
}
