package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/pick"
)

type pickSlot struct {
	userID   string
	seasonID string
	week     int
}

// PickRepository keeps the (user, season, gameweek) uniqueness the SQL schema enforces.
type PickRepository struct {
	mu     sync.RWMutex
	items  map[string]pick.Pick
	bySlot map[pickSlot]string
}

func NewPickRepository() *PickRepository {
	return &PickRepository{
		items:  make(map[string]pick.Pick),
		bySlot: make(map[pickSlot]string),
	}
}

func (r *PickRepository) GetByID(_ context.Context, pickID string) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[pickID]
	return item, ok, nil
}

func (r *PickRepository) GetByUserGameweek(_ context.Context, userID, seasonID string, week int) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlot[pickSlot{userID: userID, seasonID: seasonID, week: week}]
	if !ok {
		return pick.Pick{}, false, nil
	}
	return r.items[id], true, nil
}

func (r *PickRepository) ListBySeason(_ context.Context, seasonID string) ([]pick.Pick, error) {
	return r.filter(func(item pick.Pick) bool { return item.SeasonID == seasonID }), nil
}

func (r *PickRepository) ListByUser(_ context.Context, userID, seasonID string) ([]pick.Pick, error) {
	return r.filter(func(item pick.Pick) bool { return item.UserID == userID && item.SeasonID == seasonID }), nil
}

func (r *PickRepository) ListByGameweek(_ context.Context, seasonID string, week int) ([]pick.Pick, error) {
	return r.filter(func(item pick.Pick) bool { return item.SeasonID == seasonID && item.GameweekNumber == week }), nil
}

func (r *PickRepository) Create(_ context.Context, item pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot := pickSlot{userID: item.UserID, seasonID: item.SeasonID, week: item.GameweekNumber}
	if _, exists := r.bySlot[slot]; exists {
		return pick.ErrDuplicatePick
	}
	if _, exists := r.items[item.ID]; exists {
		return pick.ErrDuplicatePick
	}
	r.items[item.ID] = item
	r.bySlot[slot] = item.ID
	return nil
}

func (r *PickRepository) UpdateTeam(_ context.Context, pickID, teamID string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[pickID]
	if !ok {
		return pick.ErrNotFound
	}
	item.TeamID = teamID
	item.UpdatedAt = updatedAt
	r.items[pickID] = item
	return nil
}

func (r *PickRepository) Delete(_ context.Context, pickID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[pickID]
	if !ok {
		return pick.ErrNotFound
	}
	delete(r.items, pickID)
	delete(r.bySlot, pickSlot{userID: item.UserID, seasonID: item.SeasonID, week: item.GameweekNumber})
	return nil
}

func (r *PickRepository) UpdateScores(_ context.Context, updates []pick.ScoreUpdate) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := 0
	for _, update := range updates {
		item, ok := r.items[update.PickID]
		if !ok || item.Score() == update.Score {
			continue
		}
		item.Points = update.Score.Points
		item.GoalsFor = update.Score.GoalsFor
		item.GoalsAgainst = update.Score.GoalsAgainst
		r.items[update.PickID] = item
		updated++
	}
	return updated, nil
}

func (r *PickRepository) filter(keep func(pick.Pick) bool) []pick.Pick {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GameweekNumber != out[j].GameweekNumber {
			return out[i].GameweekNumber < out[j].GameweekNumber
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type pickRuleKey struct {
	seasonID string
	half     int
}

type PickRuleRepository struct {
	mu    sync.RWMutex
	items map[pickRuleKey]pick.Rule
}

func NewPickRuleRepository(rules []pick.Rule) *PickRuleRepository {
	r := &PickRuleRepository{items: make(map[pickRuleKey]pick.Rule, len(rules))}
	for _, item := range rules {
		r.items[pickRuleKey{seasonID: item.SeasonID, half: item.Half}] = item
	}
	return r
}

func (r *PickRuleRepository) Get(_ context.Context, seasonID string, half int) (pick.Rule, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[pickRuleKey{seasonID: seasonID, half: half}]
	return item, ok, nil
}

func (r *PickRuleRepository) ListBySeason(_ context.Context, seasonID string) ([]pick.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Rule, 0, 2)
	for _, item := range r.items {
		if item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Half < out[j].Half })
	return out, nil
}

func (r *PickRuleRepository) Upsert(_ context.Context, rule pick.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[pickRuleKey{seasonID: rule.SeasonID, half: rule.Half}] = rule
	return nil
}
