package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
)

type FixtureRepository struct {
	mu               sync.RWMutex
	fixturesBySeason map[string][]fixture.Fixture
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	r := &FixtureRepository{fixturesBySeason: make(map[string][]fixture.Fixture)}
	r.Upsert(fixtures...)
	return r
}

func (r *FixtureRepository) ListBySeason(_ context.Context, seasonID string) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.fixturesBySeason[seasonID]
	out := make([]fixture.Fixture, 0, len(items))
	out = append(out, items...)
	return out, nil
}

func (r *FixtureRepository) ListByGameweek(_ context.Context, seasonID string, week int) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0)
	for _, item := range r.fixturesBySeason[seasonID] {
		if item.Gameweek == week {
			out = append(out, item)
		}
	}
	return out, nil
}

// Upsert stands in for the external fixture sync when running on memory storage.
func (r *FixtureRepository) Upsert(items ...fixture.Fixture) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		rows := r.fixturesBySeason[item.SeasonID]
		replaced := false
		for idx := range rows {
			if rows[idx].ID == item.ID {
				rows[idx] = item
				replaced = true
				break
			}
		}
		if !replaced {
			rows = append(rows, item)
		}
		r.fixturesBySeason[item.SeasonID] = rows
	}
}
