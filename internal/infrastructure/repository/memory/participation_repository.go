package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/survivor-league/internal/domain/participation"
)

type participationKey struct {
	userID   string
	seasonID string
}

type ParticipationRepository struct {
	mu    sync.RWMutex
	items map[participationKey]participation.Participation
}

func NewParticipationRepository(items []participation.Participation) *ParticipationRepository {
	r := &ParticipationRepository{items: make(map[participationKey]participation.Participation, len(items))}
	for _, item := range items {
		r.items[participationKey{userID: item.UserID, seasonID: item.SeasonID}] = item
	}
	return r
}

func (r *ParticipationRepository) Get(_ context.Context, userID, seasonID string) (participation.Participation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[participationKey{userID: userID, seasonID: seasonID}]
	return item, ok, nil
}

func (r *ParticipationRepository) ListApproved(_ context.Context, seasonID string) ([]participation.Participation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]participation.Participation, 0)
	for _, item := range r.items {
		if item.SeasonID == seasonID && item.IsApproved {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *ParticipationRepository) Upsert(_ context.Context, item participation.Participation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[participationKey{userID: item.UserID, seasonID: item.SeasonID}] = item
	return nil
}
