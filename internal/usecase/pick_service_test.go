package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
)

func TestPickService_CreatePick_Success(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	created, err := env.pickSvc.CreatePick(ctx, CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-a"})
	if err != nil {
		t.Fatalf("create pick: %v", err)
	}
	if created.ID == "" || created.Points != 0 || created.IsAutoAssigned {
		t.Fatalf("unexpected pick: %+v", created)
	}

	_, err = env.pickSvc.CreatePick(ctx, CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-b"})
	if !errors.Is(err, ErrDuplicatePick) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected duplicate pick conflict, got %v", err)
	}
}

func TestPickService_CreatePick_DeadlinePassed(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	_, err := env.pickSvc.CreatePick(context.Background(), CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 2, TeamID: "team-a"})
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed, got %v", err)
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("deadline error must be a conflict, got %v", err)
	}
}

func TestPickService_CreatePick_Preconditions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     CreatePickInput
		targetErr error
	}{
		{name: "missing gameweek", input: CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 30, TeamID: "team-a"}, targetErr: ErrNotFound},
		{name: "unapproved participant", input: CreatePickInput{UserID: "u4", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-a"}, targetErr: ErrForbidden},
		{name: "unknown participant", input: CreatePickInput{UserID: "u9", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-a"}, targetErr: ErrForbidden},
		{name: "unknown team", input: CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-z"}, targetErr: ErrNotFound},
		{name: "inactive team", input: CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-c"}, targetErr: ErrInvalidInput},
		{name: "invalid week", input: CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 0, TeamID: "team-a"}, targetErr: ErrInvalidInput},
		{name: "missing team", input: CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3}, targetErr: ErrInvalidInput},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			_, err := env.pickSvc.CreatePick(context.Background(), tc.input)
			if !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected %v, got %v", tc.targetErr, err)
			}
		})
	}
}

func TestPickService_CreatePick_RuleViolation(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	if err := env.rules.Upsert(ctx, pick.Rule{SeasonID: testSeasonID, Half: 1, MaxTimesTeamCanBePicked: 1, MaxTimesOppositionCanBeTargeted: 5}); err != nil {
		t.Fatalf("seed pick rule: %v", err)
	}
	if err := env.picks.Create(ctx, pick.Pick{ID: "old", UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 1, TeamID: "team-a"}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	_, err := env.pickSvc.CreatePick(ctx, CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-a"})
	if !errors.Is(err, ErrRuleViolation) || !errors.Is(err, pick.ErrTeamLimitExceeded) {
		t.Fatalf("expected team limit rule violation, got %v", err)
	}

	if _, err := env.pickSvc.CreatePick(ctx, CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-b"}); err != nil {
		t.Fatalf("unused team should be allowed: %v", err)
	}
}

func TestPickService_UpdatePick(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	if err := env.rules.Upsert(ctx, pick.Rule{SeasonID: testSeasonID, Half: 1, MaxTimesTeamCanBePicked: 1, MaxTimesOppositionCanBeTargeted: 5}); err != nil {
		t.Fatalf("seed pick rule: %v", err)
	}

	created, err := env.pickSvc.CreatePick(ctx, CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-a"})
	if err != nil {
		t.Fatalf("create pick: %v", err)
	}

	updated, err := env.pickSvc.UpdatePick(ctx, UpdatePickInput{PickID: created.ID, UserID: "u1", TeamID: "team-b"})
	if err != nil {
		t.Fatalf("update pick: %v", err)
	}
	if updated.TeamID != "team-b" {
		t.Fatalf("expected team-b, got %s", updated.TeamID)
	}

	// Switching back must not count the pick's own previous selection.
	if _, err := env.pickSvc.UpdatePick(ctx, UpdatePickInput{PickID: created.ID, UserID: "u1", TeamID: "team-a"}); err != nil {
		t.Fatalf("update back to team-a: %v", err)
	}

	_, err = env.pickSvc.UpdatePick(ctx, UpdatePickInput{PickID: created.ID, UserID: "u2", TeamID: "team-b"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	_, err = env.pickSvc.UpdatePick(ctx, UpdatePickInput{PickID: "missing", UserID: "u1", TeamID: "team-b"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPickService_UpdatePick_RevokedParticipation(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	created, err := env.pickSvc.CreatePick(ctx, CreatePickInput{UserID: "u2", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-a"})
	if err != nil {
		t.Fatalf("create pick: %v", err)
	}
	if err := env.participations.Upsert(ctx, participation.Participation{UserID: "u2", SeasonID: testSeasonID, IsApproved: false}); err != nil {
		t.Fatalf("seed participation: %v", err)
	}

	_, err = env.pickSvc.UpdatePick(ctx, UpdatePickInput{PickID: created.ID, UserID: "u2", TeamID: "team-b"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPickService_EliminatedUserCannotPick(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	created, err := env.pickSvc.CreatePick(ctx, CreatePickInput{UserID: "u2", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-a"})
	if err != nil {
		t.Fatalf("create pick: %v", err)
	}
	if err := env.eliminations.SaveBatch(ctx, elimination.Batch{
		SeasonID:       testSeasonID,
		GameweekNumber: 1,
		Items: []elimination.Elimination{
			{ID: "e1", UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 1, Position: 1},
			{ID: "e2", UserID: "u2", SeasonID: testSeasonID, GameweekNumber: 1, Position: 2},
		},
	}); err != nil {
		t.Fatalf("seed eliminations: %v", err)
	}

	_, err = env.pickSvc.CreatePick(ctx, CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-a"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on create, got %v", err)
	}
	if _, exists, _ := env.picks.GetByUserGameweek(ctx, "u1", testSeasonID, 3); exists {
		t.Fatalf("eliminated user must not get a pick")
	}

	_, err = env.pickSvc.UpdatePick(ctx, UpdatePickInput{PickID: created.ID, UserID: "u2", TeamID: "team-b"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on update, got %v", err)
	}
	stored, _, _ := env.picks.GetByID(ctx, created.ID)
	if stored.TeamID != "team-a" {
		t.Fatalf("pick must be unchanged, got %s", stored.TeamID)
	}
}

func TestPickService_UpdatePick_InactiveTeam(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	created, err := env.pickSvc.CreatePick(ctx, CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-a"})
	if err != nil {
		t.Fatalf("create pick: %v", err)
	}

	_, err = env.pickSvc.UpdatePick(ctx, UpdatePickInput{PickID: created.ID, UserID: "u1", TeamID: "team-c"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPickService_DeletePick(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	created, err := env.pickSvc.CreatePick(ctx, CreatePickInput{UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 3, TeamID: "team-a"})
	if err != nil {
		t.Fatalf("create pick: %v", err)
	}
	if err := env.pickSvc.DeletePick(ctx, created.ID, "u2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := env.pickSvc.DeletePick(ctx, created.ID, "u1"); err != nil {
		t.Fatalf("delete pick: %v", err)
	}
	if _, exists, _ := env.picks.GetByID(ctx, created.ID); exists {
		t.Fatalf("pick should be gone")
	}

	if err := env.picks.Create(ctx, pick.Pick{ID: "closed", UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 1, TeamID: "team-a"}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}
	if err := env.pickSvc.DeletePick(ctx, "closed", "u1"); !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed, got %v", err)
	}
}

func TestPickService_ListAvailableTeams(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	if err := env.rules.Upsert(ctx, pick.Rule{SeasonID: testSeasonID, Half: 1, MaxTimesTeamCanBePicked: 1, MaxTimesOppositionCanBeTargeted: 5}); err != nil {
		t.Fatalf("seed pick rule: %v", err)
	}
	if err := env.picks.Create(ctx, pick.Pick{ID: "old", UserID: "u1", SeasonID: testSeasonID, GameweekNumber: 1, TeamID: "team-a"}); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	items, err := env.pickSvc.ListAvailableTeams(ctx, "u1", testSeasonID, 3)
	if err != nil {
		t.Fatalf("list available teams: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected only active teams, got %d", len(items))
	}
	for _, item := range items {
		switch item.Team.ID {
		case "team-a":
			if item.CanBePicked || item.TimesUsed != 1 {
				t.Fatalf("team-a should be exhausted: %+v", item)
			}
		case "team-b":
			if !item.CanBePicked {
				t.Fatalf("team-b should be available: %+v", item)
			}
		default:
			t.Fatalf("unexpected team %s", item.Team.ID)
		}
	}

	mine, err := env.pickSvc.ListMyPicks(ctx, "u1", "")
	if err != nil {
		t.Fatalf("list my picks: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "old" {
		t.Fatalf("unexpected picks: %+v", mine)
	}
}
