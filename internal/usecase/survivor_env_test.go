package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/notification"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/domain/team"
	"github.com/riskibarqy/survivor-league/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/survivor-league/internal/platform/id"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
)

const testSeasonID = "2025-2026"

var testNow = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
	fail     bool
}

func (n *recordingNotifier) Notify(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("notification transport down")
	}
	n.messages = append(n.messages, msg)
	return nil
}

func (n *recordingNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, msg := range n.messages {
		if msg.Kind == kind {
			total++
		}
	}
	return total
}

// testEnv wires memory repositories and services around one season with
// teams A and B active and C inactive. Gameweeks 1 and 2 are closed, 3 is open.
type testEnv struct {
	seasons        *memory.SeasonRepository
	gameweeks      *memory.GameweekRepository
	teams          *memory.TeamRepository
	fixtures       *memory.FixtureRepository
	participations *memory.ParticipationRepository
	picks          *memory.PickRepository
	rules          *memory.PickRuleRepository
	eliminations   *memory.EliminationRepository
	dispatches     *memory.SweepRunRepository
	notifier       *recordingNotifier

	validator    *PickRuleValidator
	pickSvc      *PickService
	autoAssign   *AutoAssignmentService
	eliminateSvc *EliminationService
	standingsSvc *StandingsService
	resultsSvc   *ResultsService
	reminderSvc  *ReminderService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		seasons: memory.NewSeasonRepository([]season.Season{{
			ID:        testSeasonID,
			Name:      "2025/2026",
			StartDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
			IsActive:  true,
		}}),
		gameweeks: memory.NewGameweekRepository([]gameweek.Gameweek{
			{SeasonID: testSeasonID, WeekNumber: 1, Deadline: time.Date(2025, 8, 15, 18, 0, 0, 0, time.UTC)},
			{SeasonID: testSeasonID, WeekNumber: 2, Deadline: time.Date(2025, 8, 22, 18, 0, 0, 0, time.UTC)},
			{SeasonID: testSeasonID, WeekNumber: 3, Deadline: testNow.Add(12 * time.Hour)},
			{SeasonID: testSeasonID, WeekNumber: 4, Deadline: testNow.Add(7 * 24 * time.Hour)},
			{SeasonID: testSeasonID, WeekNumber: 5, Deadline: testNow.Add(14 * 24 * time.Hour)},
		}),
		teams: memory.NewTeamRepository([]team.Team{
			{ID: "team-a", Name: "Team A", IsActive: true},
			{ID: "team-b", Name: "Team B", IsActive: true},
			{ID: "team-c", Name: "Team C", IsActive: false},
		}),
		fixtures: memory.NewFixtureRepository([]fixture.Fixture{
			{ID: "f1", SeasonID: testSeasonID, Gameweek: 1, HomeTeamID: "team-a", AwayTeamID: "team-b",
				HomeScore: intRef(2), AwayScore: intRef(0), Status: fixture.StatusFinished,
				KickoffAt: time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC)},
			{ID: "f2", SeasonID: testSeasonID, Gameweek: 2, HomeTeamID: "team-b", AwayTeamID: "team-a",
				Status: fixture.StatusScheduled, KickoffAt: time.Date(2025, 8, 23, 14, 0, 0, 0, time.UTC)},
			{ID: "f3", SeasonID: testSeasonID, Gameweek: 3, HomeTeamID: "team-a", AwayTeamID: "team-b",
				Status: fixture.StatusScheduled, KickoffAt: testNow.Add(24 * time.Hour)},
		}),
		participations: memory.NewParticipationRepository([]participation.Participation{
			{UserID: "u1", SeasonID: testSeasonID, IsApproved: true},
			{UserID: "u2", SeasonID: testSeasonID, IsApproved: true},
			{UserID: "u4", SeasonID: testSeasonID, IsApproved: false},
		}),
		picks:        memory.NewPickRepository(),
		rules:        memory.NewPickRuleRepository(nil),
		eliminations: memory.NewEliminationRepository(),
		dispatches:   memory.NewSweepRunRepository(),
		notifier:     &recordingNotifier{},
	}

	halves := gameweek.DefaultHalves()
	logger := logging.NewNop()
	clock := func() time.Time { return testNow }

	env.validator = NewPickRuleValidator(env.rules, env.picks, env.fixtures, halves)

	env.pickSvc = NewPickService(env.seasons, env.gameweeks, env.participations, env.picks, env.rules, env.teams,
		env.eliminations, env.validator, halves, idgen.NewSequenceGenerator("pick"), logger)
	env.pickSvc.now = clock

	env.autoAssign = NewAutoAssignmentService(env.seasons, env.gameweeks, env.participations, env.eliminations,
		env.picks, env.teams, env.fixtures, env.notifier, halves, idgen.NewSequenceGenerator("auto"), 2, logger)
	env.autoAssign.now = clock

	env.eliminateSvc = NewEliminationService(env.gameweeks, env.eliminations, env.picks, env.notifier,
		idgen.NewSequenceGenerator("elim"), logger)
	env.eliminateSvc.now = clock

	env.standingsSvc = NewStandingsService(env.seasons, env.gameweeks, env.participations, env.picks, env.eliminations)
	env.standingsSvc.now = clock

	env.resultsSvc = NewResultsService(env.seasons, env.gameweeks, env.fixtures, env.picks, env.eliminateSvc, logger)
	env.resultsSvc.now = clock

	env.reminderSvc = NewReminderService(env.seasons, env.gameweeks, env.participations, env.eliminations,
		env.picks, env.notifier, 24*time.Hour, logger)
	env.reminderSvc.now = clock

	return env
}

func intRef(v int) *int { return &v }
