package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/season"
)

type SeasonRepository struct {
	mu     sync.RWMutex
	items  map[string]season.Season
	orders []string
	now    func() time.Time
}

func NewSeasonRepository(seasons []season.Season) *SeasonRepository {
	r := &SeasonRepository{
		items: make(map[string]season.Season, len(seasons)),
		now:   time.Now,
	}
	for _, item := range seasons {
		r.items[item.ID] = item
		r.orders = append(r.orders, item.ID)
	}
	return r
}

func (r *SeasonRepository) List(_ context.Context) ([]season.Season, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]season.Season, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *SeasonRepository) GetByID(_ context.Context, seasonID string) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[seasonID]
	return item, ok, nil
}

func (r *SeasonRepository) GetActive(_ context.Context) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.orders {
		if item := r.items[id]; item.IsActive {
			return item, true, nil
		}
	}
	return season.Season{}, false, nil
}

func (r *SeasonRepository) Create(_ context.Context, item season.Season) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("season %s: %w", item.ID, season.ErrDuplicate)
	}
	item.IsActive = false
	r.items[item.ID] = item
	r.orders = append(r.orders, item.ID)
	return nil
}

func (r *SeasonRepository) Activate(_ context.Context, seasonID string) (season.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.items[seasonID]
	if !ok {
		return season.Season{}, season.ErrNotFound
	}
	if target.IsArchived {
		return season.Season{}, season.ErrArchived
	}

	now := r.now().UTC()
	for id, item := range r.items {
		active := id == seasonID
		if item.IsActive == active {
			continue
		}
		item.IsActive = active
		item.UpdatedAt = now
		r.items[id] = item
	}
	return r.items[seasonID], nil
}
