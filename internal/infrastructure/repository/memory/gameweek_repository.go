package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
)

type gameweekKey struct {
	seasonID string
	week     int
}

type GameweekRepository struct {
	mu    sync.RWMutex
	items map[gameweekKey]gameweek.Gameweek
}

func NewGameweekRepository(gameweeks []gameweek.Gameweek) *GameweekRepository {
	r := &GameweekRepository{items: make(map[gameweekKey]gameweek.Gameweek, len(gameweeks))}
	r.Upsert(gameweeks...)
	return r
}

func (r *GameweekRepository) ListBySeason(_ context.Context, seasonID string) ([]gameweek.Gameweek, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(item gameweek.Gameweek) bool { return item.SeasonID == seasonID }), nil
}

func (r *GameweekRepository) Get(_ context.Context, seasonID string, weekNumber int) (gameweek.Gameweek, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[gameweekKey{seasonID: seasonID, week: weekNumber}]
	return item, ok, nil
}

func (r *GameweekRepository) ListDeadlinePassed(_ context.Context, seasonID string, now time.Time) ([]gameweek.Gameweek, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(item gameweek.Gameweek) bool {
		return item.SeasonID == seasonID && item.DeadlinePassed(now)
	}), nil
}

func (r *GameweekRepository) UpdateEliminationCount(_ context.Context, seasonID string, weekNumber, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := gameweekKey{seasonID: seasonID, week: weekNumber}
	item, ok := r.items[key]
	if !ok {
		return fmt.Errorf("gameweek season=%s week=%d not found", seasonID, weekNumber)
	}
	item.EliminationCount = count
	r.items[key] = item
	return nil
}

func (r *GameweekRepository) Upsert(items ...gameweek.Gameweek) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.items[gameweekKey{seasonID: item.SeasonID, week: item.WeekNumber}] = item
	}
}

func (r *GameweekRepository) filter(keep func(gameweek.Gameweek) bool) []gameweek.Gameweek {
	out := make([]gameweek.Gameweek, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeasonID != out[j].SeasonID {
			return out[i].SeasonID < out[j].SeasonID
		}
		return out[i].WeekNumber < out[j].WeekNumber
	})
	return out
}
