package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/notification"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
)

func seedPoints(t *testing.T, env *testEnv, userID string, pointsByWeek map[int]int) {
	t.Helper()
	for week, points := range pointsByWeek {
		err := env.picks.Create(context.Background(), pick.Pick{
			ID:             userID + "-" + string(rune('a'+week)),
			UserID:         userID,
			SeasonID:       testSeasonID,
			GameweekNumber: week,
			TeamID:         "team-a",
			Points:         points,
		})
		if err != nil {
			t.Fatalf("seed pick: %v", err)
		}
	}
}

func TestEliminationService_TieBreakIsDeterministic(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	if err := env.gameweeks.UpdateEliminationCount(ctx, testSeasonID, 5, 1); err != nil {
		t.Fatalf("set elimination count: %v", err)
	}
	seedPoints(t, env, "u2", map[int]int{1: 3, 5: 1})
	seedPoints(t, env, "u1", map[int]int{1: 1, 3: 3})
	seedPoints(t, env, "u3", map[int]int{1: 3, 2: 3})

	result, err := env.eliminateSvc.Process(ctx, ProcessEliminationInput{SeasonID: testSeasonID, GameweekNumber: 5, ActorID: "admin-1"})
	if err != nil {
		t.Fatalf("process eliminations: %v", err)
	}
	if result.EliminatedCount != 1 || len(result.Eliminated) != 1 {
		t.Fatalf("expected exactly one elimination, got %+v", result)
	}
	got := result.Eliminated[0]
	if got.UserID != "u1" || got.Position != 1 || got.TotalPoints != 4 || got.ActorID != "admin-1" {
		t.Fatalf("unexpected elimination: %+v", got)
	}
	if env.notifier.count(notification.KindEliminated) != 1 {
		t.Fatalf("expected elimination notification")
	}

	again, err := env.eliminateSvc.Process(ctx, ProcessEliminationInput{SeasonID: testSeasonID, GameweekNumber: 5, ActorID: "admin-1"})
	if err != nil {
		t.Fatalf("second process: %v", err)
	}
	if again.EliminatedCount != 0 || !again.AlreadyProcessed {
		t.Fatalf("second run must be a no-op, got %+v", again)
	}
	items, _ := env.eliminations.ListBySeason(ctx, testSeasonID)
	if len(items) != 1 {
		t.Fatalf("expected one stored elimination, got %d", len(items))
	}
}

func TestEliminationService_ExcludesPreviouslyEliminatedAndFuturePicks(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	if err := env.gameweeks.UpdateEliminationCount(ctx, testSeasonID, 4, 2); err != nil {
		t.Fatalf("seed elimination count: %v", err)
	}
	seedPoints(t, env, "u0", map[int]int{1: 0})
	seedPoints(t, env, "u1", map[int]int{1: 3, 5: 3})
	seedPoints(t, env, "u2", map[int]int{1: 1})
	seedPoints(t, env, "u3", map[int]int{1: 3, 2: 3})
	if err := env.eliminations.SaveBatch(ctx, elimination.Batch{
		SeasonID:       testSeasonID,
		GameweekNumber: 2,
		Items:          []elimination.Elimination{{ID: "old", UserID: "u0", SeasonID: testSeasonID, GameweekNumber: 2, Position: 1}},
	}); err != nil {
		t.Fatalf("seed eliminations: %v", err)
	}

	result, err := env.eliminateSvc.Process(ctx, ProcessEliminationInput{SeasonID: testSeasonID, GameweekNumber: 4, ActorID: elimination.SystemActorID})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.EliminatedCount != 2 {
		t.Fatalf("expected 2 eliminated, got %+v", result)
	}
	if result.Eliminated[0].UserID != "u2" || result.Eliminated[1].UserID != "u1" {
		t.Fatalf("unexpected order: %+v", result.Eliminated)
	}
	if result.Eliminated[1].TotalPoints != 3 {
		t.Fatalf("gameweek 5 points must not count, got %d", result.Eliminated[1].TotalPoints)
	}
}

func TestEliminationService_ZeroCountIsNoop(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	result, err := env.eliminateSvc.Process(context.Background(), ProcessEliminationInput{SeasonID: testSeasonID, GameweekNumber: 3, ActorID: "admin-1"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.EliminatedCount != 0 || result.Message == "" {
		t.Fatalf("expected explanatory no-op, got %+v", result)
	}

	_, err = env.eliminateSvc.Process(context.Background(), ProcessEliminationInput{SeasonID: testSeasonID, GameweekNumber: 3})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected actor id to be required, got %v", err)
	}
}

func TestEliminationService_UpdateEliminationCounts(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	if err := env.eliminations.SaveBatch(ctx, elimination.Batch{SeasonID: testSeasonID, GameweekNumber: 2}); err != nil {
		t.Fatalf("seed eliminations: %v", err)
	}

	result, err := env.eliminateSvc.UpdateEliminationCounts(ctx, testSeasonID, []EliminationCountItem{
		{GameweekNumber: 1, Count: 2},
		{GameweekNumber: 2, Count: 1},
		{GameweekNumber: 3, Count: -1},
		{GameweekNumber: 20, Count: 1},
		{GameweekNumber: 4, Count: 0},
	}, "admin-1")
	if err != nil {
		t.Fatalf("update counts: %v", err)
	}
	if len(result.Updated) != 2 || result.Updated[0] != 1 || result.Updated[1] != 4 {
		t.Fatalf("unexpected updated: %+v", result.Updated)
	}
	if len(result.Failed) != 3 {
		t.Fatalf("expected 3 failures, got %+v", result.Failed)
	}

	gw, _, _ := env.gameweeks.Get(ctx, testSeasonID, 1)
	if gw.EliminationCount != 2 {
		t.Fatalf("expected count 2, got %d", gw.EliminationCount)
	}
}
