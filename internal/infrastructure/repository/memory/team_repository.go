package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/survivor-league/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	items  map[string]team.Team
	orders []string
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	r := &TeamRepository{items: make(map[string]team.Team, len(teams))}
	_ = r.UpsertTeams(context.Background(), teams)
	return r
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[teamID]
	return item, ok, nil
}

func (r *TeamRepository) UpsertTeams(_ context.Context, items []team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		teamID := strings.TrimSpace(item.ID)
		if teamID == "" {
			continue
		}
		if _, exists := r.items[teamID]; !exists {
			r.orders = append(r.orders, teamID)
		}
		r.items[teamID] = item
	}
	return nil
}
