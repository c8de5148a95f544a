package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/survivor-league/internal/platform/cache"
)

func TestSeasonRepository_ActivateInvalidatesActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	start := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	next := memory.NewSeasonRepository(memory.SeedSeasons())
	repo := NewSeasonRepository(next, basecache.NewStore(time.Minute))

	active, ok, err := repo.GetActive(ctx)
	if err != nil || !ok {
		t.Fatalf("get active season: ok=%t err=%v", ok, err)
	}
	if active.ID != memory.SeasonIDDemo {
		t.Fatalf("unexpected active season: %s", active.ID)
	}

	if err := repo.Create(ctx, season.Season{ID: "2026-2027", Name: "2026/2027", StartDate: start, EndDate: start.AddDate(0, 10, 0)}); err != nil {
		t.Fatalf("create season: %v", err)
	}
	if _, err := repo.Activate(ctx, "2026-2027"); err != nil {
		t.Fatalf("activate season: %v", err)
	}

	active, ok, err = repo.GetActive(ctx)
	if err != nil || !ok {
		t.Fatalf("get active season after activate: ok=%t err=%v", ok, err)
	}
	if active.ID != "2026-2027" {
		t.Fatalf("expected cached active season to be refreshed, got %s", active.ID)
	}
}

func TestGameweekRepository_UpdateEliminationCountInvalidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := memory.NewGameweekRepository(memory.SeedGameweeks())
	repo := NewGameweekRepository(next, basecache.NewStore(time.Minute))

	item, ok, err := repo.Get(ctx, memory.SeasonIDDemo, 4)
	if err != nil || !ok {
		t.Fatalf("get gameweek: ok=%t err=%v", ok, err)
	}
	if item.EliminationCount != 0 {
		t.Fatalf("expected zero elimination count, got %d", item.EliminationCount)
	}

	if err := repo.UpdateEliminationCount(ctx, memory.SeasonIDDemo, 4, 2); err != nil {
		t.Fatalf("update elimination count: %v", err)
	}

	item, _, err = repo.Get(ctx, memory.SeasonIDDemo, 4)
	if err != nil {
		t.Fatalf("get gameweek after update: %v", err)
	}
	if item.EliminationCount != 2 {
		t.Fatalf("expected refreshed elimination count 2, got %d", item.EliminationCount)
	}
}

func TestPickRuleRepository_CachesMissingRule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := memory.NewPickRuleRepository(nil)
	repo := NewPickRuleRepository(next, basecache.NewStore(time.Minute))

	if _, ok, err := repo.Get(ctx, "s-1", 2); err != nil || ok {
		t.Fatalf("expected missing rule, ok=%t err=%v", ok, err)
	}

	// a write that bypasses the decorator stays invisible until invalidated
	if err := next.Upsert(ctx, pick.Rule{SeasonID: "s-1", Half: 2, MaxTimesTeamCanBePicked: 1, MaxTimesOppositionCanBeTargeted: 1}); err != nil {
		t.Fatalf("seed pick rule: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "s-1", 2); ok {
		t.Fatalf("expected cached miss before invalidation")
	}

	if err := repo.Upsert(ctx, pick.Rule{SeasonID: "s-1", Half: 2, MaxTimesTeamCanBePicked: 3, MaxTimesOppositionCanBeTargeted: 2}); err != nil {
		t.Fatalf("upsert rule: %v", err)
	}
	rule, ok, err := repo.Get(ctx, "s-1", 2)
	if err != nil || !ok {
		t.Fatalf("expected rule after upsert, ok=%t err=%v", ok, err)
	}
	if rule.MaxTimesTeamCanBePicked != 3 {
		t.Fatalf("unexpected max times: %d", rule.MaxTimesTeamCanBePicked)
	}
}
