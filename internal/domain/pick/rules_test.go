package pick

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
)

func intPtr(v int) *int { return &v }

func TestCheckSelection(t *testing.T) {
	t.Parallel()

	halves := gameweek.DefaultHalves()
	rule := Rule{SeasonID: "s1", Half: 1, MaxTimesTeamCanBePicked: 1, MaxTimesOppositionCanBeTargeted: 1}
	fixtures := []fixture.Fixture{
		{ID: "f1", SeasonID: "s1", Gameweek: 1, HomeTeamID: "ars", AwayTeamID: "che"},
		{ID: "f2", SeasonID: "s1", Gameweek: 2, HomeTeamID: "liv", AwayTeamID: "che"},
		{ID: "f3", SeasonID: "s1", Gameweek: 3, HomeTeamID: "ars", AwayTeamID: "mun"},
		{ID: "f4", SeasonID: "s1", Gameweek: 20, HomeTeamID: "ars", AwayTeamID: "tot"},
	}
	history := []Pick{
		{ID: "p1", UserID: "u1", SeasonID: "s1", GameweekNumber: 1, TeamID: "ars"},
	}

	tests := []struct {
		name      string
		candidate Candidate
		history   []Pick
		targetErr error
	}{
		{
			name:      "fresh team allowed",
			candidate: Candidate{UserID: "u1", SeasonID: "s1", GameweekNumber: 3, TeamID: "mun"},
			history:   history,
		},
		{
			name:      "team already used this half",
			candidate: Candidate{UserID: "u1", SeasonID: "s1", GameweekNumber: 3, TeamID: "ars"},
			history:   history,
			targetErr: ErrTeamLimitExceeded,
		},
		{
			name:      "same opposition targeted twice",
			candidate: Candidate{UserID: "u1", SeasonID: "s1", GameweekNumber: 2, TeamID: "liv"},
			history:   history,
			targetErr: ErrOppositionLimitExceeded,
		},
		{
			name:      "excluded pick is ignored on update",
			candidate: Candidate{UserID: "u1", SeasonID: "s1", GameweekNumber: 3, TeamID: "ars", ExcludePickID: "p1"},
			history:   history,
		},
		{
			name:      "other half resets counts",
			candidate: Candidate{UserID: "u1", SeasonID: "s1", GameweekNumber: 20, TeamID: "ars"},
			history:   history,
		},
		{
			name:      "no fixture skips opposition check",
			candidate: Candidate{UserID: "u1", SeasonID: "s1", GameweekNumber: 5, TeamID: "liv"},
			history:   []Pick{{ID: "p2", UserID: "u1", SeasonID: "s1", GameweekNumber: 2, TeamID: "che"}},
		},
		{
			name:      "other users do not count",
			candidate: Candidate{UserID: "u2", SeasonID: "s1", GameweekNumber: 3, TeamID: "ars"},
			history:   history,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := CheckSelection(rule, tc.candidate, tc.history, fixtures, halves)
			if tc.targetErr == nil && err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if tc.targetErr != nil && !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected error %v, got %v", tc.targetErr, err)
			}
		})
	}
}

func TestCheckSelectionHigherLimit(t *testing.T) {
	t.Parallel()

	rule := Rule{MaxTimesTeamCanBePicked: 2, MaxTimesOppositionCanBeTargeted: 5}
	history := []Pick{{ID: "p1", UserID: "u1", SeasonID: "s1", GameweekNumber: 1, TeamID: "ars"}}
	candidate := Candidate{UserID: "u1", SeasonID: "s1", GameweekNumber: 2, TeamID: "ars"}
	if err := CheckSelection(rule, candidate, history, nil, gameweek.DefaultHalves()); err != nil {
		t.Fatalf("expected second pick of team to be allowed, got %v", err)
	}

	history = append(history, Pick{ID: "p2", UserID: "u1", SeasonID: "s1", GameweekNumber: 2, TeamID: "ars"})
	candidate.GameweekNumber = 3
	if err := CheckSelection(rule, candidate, history, nil, gameweek.DefaultHalves()); !errors.Is(err, ErrTeamLimitExceeded) {
		t.Fatalf("expected team limit error, got %v", err)
	}
}

func TestScoreFromFixture(t *testing.T) {
	t.Parallel()

	finished := fixture.Fixture{
		HomeTeamID: "ars",
		AwayTeamID: "che",
		HomeScore:  intPtr(2),
		AwayScore:  intPtr(1),
		Status:     fixture.StatusFinished,
		KickoffAt:  time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC),
	}

	home, ok := ScoreFromFixture(finished, "ars")
	if !ok || home.Points != PointsWin || home.GoalsFor != 2 || home.GoalsAgainst != 1 {
		t.Fatalf("unexpected home score: %+v ok=%v", home, ok)
	}
	away, ok := ScoreFromFixture(finished, "che")
	if !ok || away.Points != PointsLoss || away.GoalsFor != 1 {
		t.Fatalf("unexpected away score: %+v ok=%v", away, ok)
	}

	finished.Status = fixture.StatusLive
	if _, ok := ScoreFromFixture(finished, "ars"); ok {
		t.Fatalf("live fixture must not be scored")
	}
	if ResultPoints(1, 1) != PointsDraw {
		t.Fatalf("expected draw points")
	}
}

func TestTeamsUsedInHalf(t *testing.T) {
	t.Parallel()

	history := []Pick{
		{GameweekNumber: 1, TeamID: "ars"},
		{GameweekNumber: 2, TeamID: "che"},
		{GameweekNumber: 4, TeamID: "liv"},
		{GameweekNumber: 25, TeamID: "mun"},
	}
	used := TeamsUsedInHalf(history, 4, gameweek.DefaultHalves())
	if len(used) != 2 || used["ars"] != 1 || used["che"] != 1 {
		t.Fatalf("unexpected used teams: %+v", used)
	}
}
