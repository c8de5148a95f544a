package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
)

func TestPickRepositoryEnforcesSlotUniqueness(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPickRepository()
	first := pick.Pick{ID: "p1", UserID: "u1", SeasonID: "s1", GameweekNumber: 3, TeamID: "ars"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create first pick: %v", err)
	}

	second := first
	second.ID = "p2"
	second.TeamID = "che"
	if err := repo.Create(ctx, second); !errors.Is(err, pick.ErrDuplicatePick) {
		t.Fatalf("expected ErrDuplicatePick, got %v", err)
	}

	if err := repo.Delete(ctx, "p1"); err != nil {
		t.Fatalf("delete pick: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("slot should be free after delete: %v", err)
	}
}

func TestPickRepositoryUpdateScoresSkipsUnchanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPickRepository()
	if err := repo.Create(ctx, pick.Pick{ID: "p1", UserID: "u1", SeasonID: "s1", GameweekNumber: 1, TeamID: "ars", Points: 3, GoalsFor: 1}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}
	if err := repo.Create(ctx, pick.Pick{ID: "p2", UserID: "u2", SeasonID: "s1", GameweekNumber: 1, TeamID: "che"}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	updated, err := repo.UpdateScores(ctx, []pick.ScoreUpdate{
		{PickID: "p1", Score: pick.Score{Points: 3, GoalsFor: 1}},
		{PickID: "p2", Score: pick.Score{Points: 0, GoalsFor: 0, GoalsAgainst: 1}},
		{PickID: "missing", Score: pick.Score{Points: 1}},
	})
	if err != nil {
		t.Fatalf("update scores: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 updated pick, got %d", updated)
	}
}

func TestEliminationRepositoryRejectsSecondBatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewEliminationRepository()
	batch := elimination.Batch{
		SeasonID:       "s1",
		GameweekNumber: 5,
		Items:          []elimination.Elimination{{ID: "e1", UserID: "u1", SeasonID: "s1", GameweekNumber: 5, Position: 1}},
	}
	if err := repo.SaveBatch(ctx, batch); err != nil {
		t.Fatalf("save batch: %v", err)
	}
	if err := repo.SaveBatch(ctx, batch); !errors.Is(err, elimination.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	processed, err := repo.IsProcessed(ctx, "s1", 5)
	if err != nil || !processed {
		t.Fatalf("expected processed, got %v err=%v", processed, err)
	}
	items, _ := repo.ListBySeason(ctx, "s1")
	if len(items) != 1 {
		t.Fatalf("expected one elimination, got %d", len(items))
	}
}

func TestSeasonRepositoryActivateIsExclusive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	start := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	repo := NewSeasonRepository([]season.Season{
		{ID: "2024-2025", Name: "2024/2025", StartDate: start, EndDate: start.AddDate(1, 0, 0), IsActive: true},
		{ID: "2023-2024", Name: "2023/2024", StartDate: start.AddDate(-1, 0, 0), EndDate: start, IsArchived: true},
	})
	if err := repo.Create(ctx, season.Season{ID: "2025-2026", Name: "2025/2026"}); err != nil {
		t.Fatalf("create season: %v", err)
	}

	activated, err := repo.Activate(ctx, "2025-2026")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !activated.IsActive {
		t.Fatalf("expected activated season to be active")
	}
	active, ok, _ := repo.GetActive(ctx)
	if !ok || active.ID != "2025-2026" {
		t.Fatalf("unexpected active season: %+v", active)
	}
	previous, _, _ := repo.GetByID(ctx, "2024-2025")
	if previous.IsActive {
		t.Fatalf("previous season must be deactivated")
	}

	if _, err := repo.Activate(ctx, "2023-2024"); !errors.Is(err, season.ErrArchived) {
		t.Fatalf("expected ErrArchived, got %v", err)
	}
	if _, err := repo.Activate(ctx, "missing"); !errors.Is(err, season.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeedFixturesCoverEveryGameweek(t *testing.T) {
	t.Parallel()

	fixtures := SeedFixtures()
	weeks := make(map[int]int)
	for _, item := range fixtures {
		if item.HomeTeamID == item.AwayTeamID {
			t.Fatalf("team plays itself in %s", item.ID)
		}
		weeks[item.Gameweek]++
	}
	if len(weeks) != 38 {
		t.Fatalf("expected 38 gameweeks, got %d", len(weeks))
	}
	if weeks[1] != 3 {
		t.Fatalf("expected 3 fixtures per week for 6 active teams, got %d", weeks[1])
	}
}

func TestSweepRunRepositoryNeverReopensFinishedRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewSweepRunRepository()
	done := jobscheduler.DispatchEvent{
		DispatchID: "reminders-unknown-1",
		Status:     jobscheduler.StatusCompleted,
		Payload:    map[string]any{"reminded": 2},
		TraceID:    "t1",
	}
	if err := repo.UpsertEvent(ctx, done); err != nil {
		t.Fatalf("upsert completed: %v", err)
	}
	if err := repo.UpsertEvent(ctx, jobscheduler.DispatchEvent{DispatchID: done.DispatchID, Status: jobscheduler.StatusRunning, TraceID: "t2"}); err != nil {
		t.Fatalf("upsert running: %v", err)
	}

	got, ok := repo.Get(done.DispatchID)
	if !ok || got.Status != jobscheduler.StatusCompleted || got.TraceID != "t1" || got.Payload["reminded"] != 2 {
		t.Fatalf("unexpected run state: %+v", got)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected one run, got %d", repo.Len())
	}
}
