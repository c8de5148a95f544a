package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
)

func TestStandingsService_GetStandings(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	if err := env.picks.Create(ctx, pick.Pick{ID: "p1", UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 1, TeamID: "team-a", Points: 3, GoalsFor: 2}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}
	if err := env.picks.Create(ctx, pick.Pick{ID: "p2", UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-b"}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}
	if err := env.picks.Create(ctx, pick.Pick{ID: "p3", UserID: "u2", SeasonID: testSeasonID, GameweekNumber: 1, TeamID: "team-b", GoalsAgainst: 2}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	entries, err := env.standingsSvc.GetStandings(ctx, testSeasonID)
	if err != nil {
		t.Fatalf("get standings: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserID != "u1" || entries[0].PicksMade != 1 || entries[0].TotalPoints != 3 {
		t.Fatalf("unexpected leader: %+v", entries[0])
	}
	if entries[1].Losses != 1 || entries[1].Rank != 2 {
		t.Fatalf("unexpected second: %+v", entries[1])
	}

	all, err := env.standingsSvc.GetStandings(ctx, "")
	if err != nil {
		t.Fatalf("get all-season standings: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries across seasons, got %d", len(all))
	}

	if _, err := env.standingsSvc.GetStandings(ctx, "1999-2000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStandingsService_IncludesApprovedParticipantsWithoutPicks(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	if err := env.participations.Upsert(ctx, participation.Participation{UserID: "u2", SeasonID: testSeasonID, IsApproved: false}); err != nil {
		t.Fatalf("seed participation: %v", err)
	}
	if err := env.participations.Upsert(ctx, participation.Participation{UserID: "u9", SeasonID: testSeasonID, IsApproved: true}); err != nil {
		t.Fatalf("seed participation: %v", err)
	}
	if err := env.picks.Create(ctx, pick.Pick{ID: "p1", UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 1, TeamID: "team-a", Points: 3, GoalsFor: 1}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	entries, err := env.standingsSvc.GetStandings(ctx, testSeasonID)
	if err != nil {
		t.Fatalf("get standings: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 rows, got %+v", entries)
	}
	if entries[1].UserID != "u9" || entries[1].PicksMade != 0 || entries[1].Rank != 2 {
		t.Fatalf("expected zero row for u9, got %+v", entries[1])
	}
}

func TestStandingsService_AllSeasonsMarksActiveSeasonEliminationsOnly(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	const pastSeasonID = "2024-2025"
	if err := env.seasons.Create(ctx, season.Season{
		ID:         pastSeasonID,
		Name:       "2024/2025",
		StartDate:  time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		IsArchived: true,
	}); err != nil {
		t.Fatalf("seed season: %v", err)
	}
	if err := env.eliminations.SaveBatch(ctx, elimination.Batch{
		SeasonID:       pastSeasonID,
		GameweekNumber: 30,
		Items:          []elimination.Elimination{{ID: "old", UserID: "u1", SeasonID: pastSeasonID, GameweekNumber: 30, Position: 1}},
	}); err != nil {
		t.Fatalf("seed eliminations: %v", err)
	}
	if err := env.eliminations.SaveBatch(ctx, elimination.Batch{
		SeasonID:       testSeasonID,
		GameweekNumber: 1,
		Items:          []elimination.Elimination{{ID: "now", UserID: "u2", SeasonID: testSeasonID, GameweekNumber: 1, Position: 1}},
	}); err != nil {
		t.Fatalf("seed eliminations: %v", err)
	}

	all, err := env.standingsSvc.GetStandings(ctx, "")
	if err != nil {
		t.Fatalf("get all-season standings: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows, got %+v", all)
	}
	for _, entry := range all {
		switch entry.UserID {
		case "u1":
			if entry.IsEliminated {
				t.Fatalf("past season elimination must not carry over: %+v", entry)
			}
		case "u2":
			if !entry.IsEliminated || entry.EliminatedGameweek != 1 {
				t.Fatalf("expected active season elimination: %+v", entry)
			}
		}
	}

	past, err := env.standingsSvc.GetStandings(ctx, pastSeasonID)
	if err != nil {
		t.Fatalf("get past standings: %v", err)
	}
	if len(past) != 0 {
		t.Fatalf("past season has no participants or picks, got %+v", past)
	}
}
