package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/leaguestanding"
	"github.com/riskibarqy/survivor-league/internal/domain/notification"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/domain/team"
	idgen "github.com/riskibarqy/survivor-league/internal/platform/id"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/riskibarqy/survivor-league/internal/platform/metrics"
)

const defaultAutoAssignWorkers = 8

type AutoAssignInput struct {
	// SeasonID defaults to the active season.
	SeasonID string
	// GameweekNumber limits the run to one gameweek; zero sweeps every
	// gameweek whose deadline has passed.
	GameweekNumber int
}

type AutoAssignResult struct {
	SeasonID      string                     `json:"season_id"`
	AssignedCount int                        `json:"assigned_count"`
	SkippedCount  int                        `json:"skipped_count"`
	FailedCount   int                        `json:"failed_count"`
	Gameweeks     []AutoAssignGameweekResult `json:"gameweeks"`
}

type AutoAssignGameweekResult struct {
	GameweekNumber int                 `json:"gameweek_number"`
	Assignments    []AutoAssignedPick  `json:"assignments"`
	Skipped        []AutoAssignSkipped `json:"skipped,omitempty"`
	Failed         []AutoAssignSkipped `json:"failed,omitempty"`
}

type AutoAssignedPick struct {
	UserID string `json:"user_id"`
	TeamID string `json:"team_id"`
	PickID string `json:"pick_id"`
}

type AutoAssignSkipped struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

type autoAssignOutcome struct {
	userID string
	status string
	pick   pick.Pick
	reason string
}

const (
	autoAssignStatusAssigned = "assigned"
	autoAssignStatusSkipped  = "skipped"
	autoAssignStatusFailed   = "failed"
)

// AutoAssignmentService gives users who missed a deadline the lowest-ranked
// team they have not used in the current half.
type AutoAssignmentService struct {
	seasonRepo        season.Repository
	gameweekRepo      gameweek.Repository
	participationRepo participation.Repository
	eliminationRepo   elimination.Repository
	pickRepo          pick.Repository
	teamRepo          team.Repository
	fixtureRepo       fixture.Repository
	notifier          notification.Notifier
	halves            gameweek.Halves
	idGen             idgen.Generator
	workers           int
	logger            *logging.Logger
	now               func() time.Time
}

func NewAutoAssignmentService(
	seasonRepo season.Repository,
	gameweekRepo gameweek.Repository,
	participationRepo participation.Repository,
	eliminationRepo elimination.Repository,
	pickRepo pick.Repository,
	teamRepo team.Repository,
	fixtureRepo fixture.Repository,
	notifier notification.Notifier,
	halves gameweek.Halves,
	idGen idgen.Generator,
	workers int,
	logger *logging.Logger,
) *AutoAssignmentService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultAutoAssignWorkers
	}

	return &AutoAssignmentService{
		seasonRepo:        seasonRepo,
		gameweekRepo:      gameweekRepo,
		participationRepo: participationRepo,
		eliminationRepo:   eliminationRepo,
		pickRepo:          pickRepo,
		teamRepo:          teamRepo,
		fixtureRepo:       fixtureRepo,
		notifier:          notifierOrNoop(notifier),
		halves:            halves,
		idGen:             idGen,
		workers:           workers,
		logger:            logger,
		now:               time.Now,
	}
}

func (s *AutoAssignmentService) Run(ctx context.Context, input AutoAssignInput) (AutoAssignResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AutoAssignmentService.Run", seasonAttr(input.SeasonID))
	defer span.End()

	seasonID, err := resolveSeasonID(ctx, s.seasonRepo, input.SeasonID)
	if err != nil {
		return AutoAssignResult{}, err
	}
	result := AutoAssignResult{SeasonID: seasonID}
	now := s.now().UTC()

	var targets []gameweek.Gameweek
	if input.GameweekNumber != 0 {
		if !gameweek.ValidWeekNumber(input.GameweekNumber) {
			return AutoAssignResult{}, fmt.Errorf("%w: invalid gameweek number %d", ErrInvalidInput, input.GameweekNumber)
		}
		gw, exists, err := s.gameweekRepo.Get(ctx, seasonID, input.GameweekNumber)
		if err != nil {
			return AutoAssignResult{}, fmt.Errorf("get gameweek: %w", err)
		}
		if !exists {
			return AutoAssignResult{}, fmt.Errorf("%w: gameweek season=%s week=%d", ErrNotFound, seasonID, input.GameweekNumber)
		}
		if !gw.DeadlinePassed(now) {
			return AutoAssignResult{}, fmt.Errorf("%w: gameweek=%d deadline has not passed", ErrInvalidInput, gw.WeekNumber)
		}
		targets = []gameweek.Gameweek{gw}
	} else {
		targets, err = s.gameweekRepo.ListDeadlinePassed(ctx, seasonID, now)
		if err != nil {
			return AutoAssignResult{}, fmt.Errorf("list deadline-passed gameweeks: %w", err)
		}
	}
	if len(targets) == 0 {
		return result, nil
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return AutoAssignResult{}, fmt.Errorf("list teams: %w", err)
	}
	fixtures, err := s.fixtureRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return AutoAssignResult{}, fmt.Errorf("list season fixtures: %w", err)
	}

	for _, gw := range targets {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		row, err := s.assignGameweek(ctx, gw, teams, fixtures)
		if err != nil {
			return result, fmt.Errorf("auto-assign gameweek=%d: %w", gw.WeekNumber, err)
		}
		result.AssignedCount += len(row.Assignments)
		result.SkippedCount += len(row.Skipped)
		result.FailedCount += len(row.Failed)
		result.Gameweeks = append(result.Gameweeks, row)
	}

	s.logger.InfoContext(ctx, "auto-assignment run finished",
		"season_id", seasonID,
		"gameweeks", len(targets),
		"assigned", result.AssignedCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

func (s *AutoAssignmentService) assignGameweek(
	ctx context.Context,
	gw gameweek.Gameweek,
	teams []team.Team,
	fixtures []fixture.Fixture,
) (AutoAssignGameweekResult, error) {
	row := AutoAssignGameweekResult{GameweekNumber: gw.WeekNumber}

	needs, err := s.usersNeedingPick(ctx, gw)
	if err != nil {
		return row, err
	}
	if len(needs) == 0 {
		return row, nil
	}

	table := leaguestanding.BuildBefore(gw.SeasonID, gw.WeekNumber, teams, fixtures)

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return row, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan autoAssignOutcome, len(needs))
	var assignedCount atomic.Int32

	var workers sync.WaitGroup
	for _, userID := range needs {
		userID := userID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			outcome := s.assignUser(ctx, gw, userID, table)
			if outcome.status == autoAssignStatusAssigned {
				assignedCount.Add(1)
			}
			results <- outcome
		}); err != nil {
			workers.Done()
			results <- autoAssignOutcome{userID: userID, status: autoAssignStatusFailed, reason: err.Error()}
		}
	}

	workers.Wait()
	close(results)

	for outcome := range results {
		switch outcome.status {
		case autoAssignStatusAssigned:
			row.Assignments = append(row.Assignments, AutoAssignedPick{
				UserID: outcome.userID,
				TeamID: outcome.pick.TeamID,
				PickID: outcome.pick.ID,
			})
		case autoAssignStatusSkipped:
			row.Skipped = append(row.Skipped, AutoAssignSkipped{UserID: outcome.userID, Reason: outcome.reason})
		default:
			row.Failed = append(row.Failed, AutoAssignSkipped{UserID: outcome.userID, Reason: outcome.reason})
		}
	}
	sort.SliceStable(row.Assignments, func(i, j int) bool { return row.Assignments[i].UserID < row.Assignments[j].UserID })
	sort.SliceStable(row.Skipped, func(i, j int) bool { return row.Skipped[i].UserID < row.Skipped[j].UserID })
	sort.SliceStable(row.Failed, func(i, j int) bool { return row.Failed[i].UserID < row.Failed[j].UserID })

	metrics.AutoAssignedPicks.Add(float64(assignedCount.Load()))
	return row, nil
}

// usersNeedingPick is approved participants minus eliminated users minus users
// who already hold a pick for gw.
func (s *AutoAssignmentService) usersNeedingPick(ctx context.Context, gw gameweek.Gameweek) ([]string, error) {
	approved, err := s.participationRepo.ListApproved(ctx, gw.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("list approved participants: %w", err)
	}
	if len(approved) == 0 {
		return nil, nil
	}

	eliminations, err := s.eliminationRepo.ListBySeason(ctx, gw.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("list eliminations: %w", err)
	}
	eliminated := elimination.EliminatedUsers(eliminations)

	existing, err := s.pickRepo.ListByGameweek(ctx, gw.SeasonID, gw.WeekNumber)
	if err != nil {
		return nil, fmt.Errorf("list gameweek picks: %w", err)
	}
	picked := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		picked[item.UserID] = struct{}{}
	}

	out := make([]string, 0, len(approved))
	for _, entry := range approved {
		if _, ok := eliminated[entry.UserID]; ok {
			continue
		}
		if _, ok := picked[entry.UserID]; ok {
			continue
		}
		out = append(out, entry.UserID)
	}
	sort.Strings(out)
	return out, nil
}

func (s *AutoAssignmentService) assignUser(
	ctx context.Context,
	gw gameweek.Gameweek,
	userID string,
	table []leaguestanding.Standing,
) autoAssignOutcome {
	outcome := autoAssignOutcome{userID: userID, status: autoAssignStatusFailed}
	if err := ctx.Err(); err != nil {
		outcome.reason = err.Error()
		return outcome
	}

	history, err := s.pickRepo.ListByUser(ctx, userID, gw.SeasonID)
	if err != nil {
		outcome.reason = fmt.Sprintf("list user picks: %v", err)
		s.logger.WarnContext(ctx, "auto-assignment failed", "user_id", userID, "gameweek", gw.WeekNumber, "error", err)
		return outcome
	}

	teamID, ok := leaguestanding.LowestUnused(table, pick.TeamsUsedInHalf(history, gw.WeekNumber, s.halves))
	if !ok {
		s.logger.WarnContext(ctx, "auto-assignment found no unused team",
			"user_id", userID,
			"season_id", gw.SeasonID,
			"gameweek", gw.WeekNumber,
		)
		outcome.status = autoAssignStatusSkipped
		outcome.reason = "no unused active team left in this half"
		return outcome
	}

	pickID, err := s.idGen.NewID()
	if err != nil {
		outcome.reason = fmt.Sprintf("generate pick id: %v", err)
		return outcome
	}
	now := s.now().UTC()
	item := pick.Pick{
		ID:             pickID,
		UserID:         userID,
		SeasonID:       gw.SeasonID,
		GameweekNumber: gw.WeekNumber,
		TeamID:         teamID,
		IsAutoAssigned: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.pickRepo.Create(ctx, item); err != nil {
		if errors.Is(err, pick.ErrDuplicatePick) {
			outcome.status = autoAssignStatusSkipped
			outcome.reason = "pick already exists"
			return outcome
		}
		outcome.reason = fmt.Sprintf("create pick: %v", err)
		s.logger.WarnContext(ctx, "auto-assignment insert failed", "user_id", userID, "gameweek", gw.WeekNumber, "error", err)
		return outcome
	}

	s.logger.InfoContext(ctx, "pick auto-assigned",
		"user_id", userID,
		"season_id", gw.SeasonID,
		"gameweek", gw.WeekNumber,
		"team_id", teamID,
	)
	sendNotification(ctx, s.notifier, s.logger, notification.Message{
		Kind:     notification.KindAutoAssigned,
		UserID:   userID,
		SeasonID: gw.SeasonID,
		Gameweek: gw.WeekNumber,
		TeamID:   teamID,
		DedupID:  strings.Join([]string{"auto-assign", gw.SeasonID, fmt.Sprint(gw.WeekNumber), userID}, "-"),
		SentAt:   now,
	})

	outcome.status = autoAssignStatusAssigned
	outcome.pick = item
	return outcome
}
