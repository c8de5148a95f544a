package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/domain/team"
	idgen "github.com/riskibarqy/survivor-league/internal/platform/id"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/riskibarqy/survivor-league/internal/platform/metrics"
)

type CreatePickInput struct {
	UserID         string
	SeasonID       string
	GameweekNumber int
	TeamID         string
}

type UpdatePickInput struct {
	PickID string
	UserID string
	TeamID string
}

// AvailableTeam is an active team annotated with the caller's usage in the half.
type AvailableTeam struct {
	Team          team.Team
	TimesUsed     int
	MaxTimes      int
	CanBePicked   bool
	HasRuleLimits bool
}

type PickService struct {
	seasonRepo        season.Repository
	gameweekRepo      gameweek.Repository
	participationRepo participation.Repository
	pickRepo          pick.Repository
	ruleRepo          pick.RuleRepository
	teamRepo          team.Repository
	eliminationRepo   elimination.Repository
	validator         *PickRuleValidator
	halves            gameweek.Halves
	idGen             idgen.Generator
	logger            *logging.Logger
	now               func() time.Time
}

func NewPickService(
	seasonRepo season.Repository,
	gameweekRepo gameweek.Repository,
	participationRepo participation.Repository,
	pickRepo pick.Repository,
	ruleRepo pick.RuleRepository,
	teamRepo team.Repository,
	eliminationRepo elimination.Repository,
	validator *PickRuleValidator,
	halves gameweek.Halves,
	idGen idgen.Generator,
	logger *logging.Logger,
) *PickService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PickService{
		seasonRepo:        seasonRepo,
		gameweekRepo:      gameweekRepo,
		participationRepo: participationRepo,
		pickRepo:          pickRepo,
		ruleRepo:          ruleRepo,
		teamRepo:          teamRepo,
		eliminationRepo:   eliminationRepo,
		validator:         validator,
		halves:            halves,
		idGen:             idGen,
		logger:            logger,
		now:               time.Now,
	}
}

func (s *PickService) CreatePick(ctx context.Context, input CreatePickInput) (pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.CreatePick",
		seasonAttr(input.SeasonID), gameweekAttr(input.GameweekNumber))
	defer span.End()

	item, err := s.createPick(ctx, input)
	recordPickOperation("create", err)
	return item, err
}

func (s *PickService) createPick(ctx context.Context, input CreatePickInput) (pick.Pick, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.SeasonID = strings.TrimSpace(input.SeasonID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	if input.UserID == "" {
		return pick.Pick{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.SeasonID == "" {
		return pick.Pick{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if input.TeamID == "" {
		return pick.Pick{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	gw, err := s.getGameweek(ctx, input.SeasonID, input.GameweekNumber)
	if err != nil {
		return pick.Pick{}, err
	}
	if err := s.ensureApproved(ctx, input.UserID, gw.SeasonID); err != nil {
		return pick.Pick{}, err
	}
	if err := s.ensureNotEliminated(ctx, input.UserID, gw.SeasonID); err != nil {
		return pick.Pick{}, err
	}

	_, exists, err := s.pickRepo.GetByUserGameweek(ctx, input.UserID, gw.SeasonID, gw.WeekNumber)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get existing pick: %w", err)
	}
	if exists {
		return pick.Pick{}, fmt.Errorf("%w: user=%s gameweek=%d", ErrDuplicatePick, input.UserID, gw.WeekNumber)
	}

	now := s.now().UTC()
	if gw.DeadlinePassed(now) {
		return pick.Pick{}, fmt.Errorf("%w: gameweek=%d deadline=%s", ErrDeadlinePassed, gw.WeekNumber, gw.Deadline.UTC().Format(time.RFC3339))
	}
	if err := s.ensureTeam(ctx, input.TeamID); err != nil {
		return pick.Pick{}, err
	}

	if err := s.validator.Validate(ctx, PickValidationInput{
		UserID:         input.UserID,
		SeasonID:       gw.SeasonID,
		GameweekNumber: gw.WeekNumber,
		TeamID:         input.TeamID,
	}); err != nil {
		return pick.Pick{}, err
	}

	pickID, err := s.idGen.NewID()
	if err != nil {
		return pick.Pick{}, fmt.Errorf("generate pick id: %w", err)
	}
	item := pick.Pick{
		ID:             pickID,
		UserID:         input.UserID,
		SeasonID:       gw.SeasonID,
		GameweekNumber: gw.WeekNumber,
		TeamID:         input.TeamID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.pickRepo.Create(ctx, item); err != nil {
		if errors.Is(err, pick.ErrDuplicatePick) {
			return pick.Pick{}, fmt.Errorf("%w: user=%s gameweek=%d", ErrDuplicatePick, input.UserID, gw.WeekNumber)
		}
		return pick.Pick{}, fmt.Errorf("create pick: %w", err)
	}

	s.logger.InfoContext(ctx, "pick created",
		"pick_id", item.ID,
		"user_id", item.UserID,
		"season_id", item.SeasonID,
		"gameweek", item.GameweekNumber,
		"team_id", item.TeamID,
	)
	return item, nil
}

func (s *PickService) UpdatePick(ctx context.Context, input UpdatePickInput) (pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.UpdatePick")
	defer span.End()

	item, err := s.updatePick(ctx, input)
	recordPickOperation("update", err)
	return item, err
}

func (s *PickService) updatePick(ctx context.Context, input UpdatePickInput) (pick.Pick, error) {
	input.TeamID = strings.TrimSpace(input.TeamID)
	if input.TeamID == "" {
		return pick.Pick{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	item, err := s.getOwnedPick(ctx, input.PickID, input.UserID)
	if err != nil {
		return pick.Pick{}, err
	}
	gw, err := s.getGameweek(ctx, item.SeasonID, item.GameweekNumber)
	if err != nil {
		return pick.Pick{}, err
	}

	now := s.now().UTC()
	if gw.DeadlinePassed(now) {
		return pick.Pick{}, fmt.Errorf("%w: gameweek=%d deadline=%s", ErrDeadlinePassed, gw.WeekNumber, gw.Deadline.UTC().Format(time.RFC3339))
	}
	if err := s.ensureApproved(ctx, item.UserID, item.SeasonID); err != nil {
		return pick.Pick{}, err
	}
	if err := s.ensureNotEliminated(ctx, item.UserID, item.SeasonID); err != nil {
		return pick.Pick{}, err
	}
	if err := s.ensureTeam(ctx, input.TeamID); err != nil {
		return pick.Pick{}, err
	}
	if item.TeamID == input.TeamID {
		return item, nil
	}

	if err := s.validator.Validate(ctx, PickValidationInput{
		UserID:         item.UserID,
		SeasonID:       item.SeasonID,
		GameweekNumber: item.GameweekNumber,
		TeamID:         input.TeamID,
		ExcludePickID:  item.ID,
	}); err != nil {
		return pick.Pick{}, err
	}

	if err := s.pickRepo.UpdateTeam(ctx, item.ID, input.TeamID, now); err != nil {
		if errors.Is(err, pick.ErrNotFound) {
			return pick.Pick{}, fmt.Errorf("%w: pick=%s", ErrNotFound, item.ID)
		}
		return pick.Pick{}, fmt.Errorf("update pick team: %w", err)
	}

	s.logger.InfoContext(ctx, "pick updated",
		"pick_id", item.ID,
		"user_id", item.UserID,
		"from_team_id", item.TeamID,
		"to_team_id", input.TeamID,
	)
	item.TeamID = input.TeamID
	item.UpdatedAt = now
	return item, nil
}

func (s *PickService) DeletePick(ctx context.Context, pickID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.DeletePick")
	defer span.End()

	err := s.deletePick(ctx, pickID, userID)
	recordPickOperation("delete", err)
	return err
}

func (s *PickService) deletePick(ctx context.Context, pickID, userID string) error {
	item, err := s.getOwnedPick(ctx, pickID, userID)
	if err != nil {
		return err
	}
	gw, err := s.getGameweek(ctx, item.SeasonID, item.GameweekNumber)
	if err != nil {
		return err
	}
	if gw.DeadlinePassed(s.now().UTC()) {
		return fmt.Errorf("%w: gameweek=%d", ErrDeadlinePassed, gw.WeekNumber)
	}

	if err := s.pickRepo.Delete(ctx, item.ID); err != nil {
		if errors.Is(err, pick.ErrNotFound) {
			return fmt.Errorf("%w: pick=%s", ErrNotFound, item.ID)
		}
		return fmt.Errorf("delete pick: %w", err)
	}

	s.logger.InfoContext(ctx, "pick deleted", "pick_id", item.ID, "user_id", item.UserID)
	return nil
}

// ListMyPicks returns the user's picks for seasonID, or for the active season
// when seasonID is empty.
func (s *PickService) ListMyPicks(ctx context.Context, userID, seasonID string) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListMyPicks")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	seasonID, err := resolveSeasonID(ctx, s.seasonRepo, seasonID)
	if err != nil {
		return nil, err
	}

	items, err := s.pickRepo.ListByUser(ctx, userID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list user picks: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].GameweekNumber < items[j].GameweekNumber
	})
	return items, nil
}

func (s *PickService) ListAvailableTeams(ctx context.Context, userID, seasonID string, week int) ([]AvailableTeam, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListAvailableTeams")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	gw, err := s.getGameweek(ctx, strings.TrimSpace(seasonID), week)
	if err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	history, err := s.pickRepo.ListByUser(ctx, userID, gw.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("list user picks: %w", err)
	}
	rule, hasRule, err := s.ruleRepo.Get(ctx, gw.SeasonID, s.halves.Of(gw.WeekNumber))
	if err != nil {
		return nil, fmt.Errorf("get pick rule: %w", err)
	}

	used := pick.TeamsUsedInHalf(history, gw.WeekNumber, s.halves)
	out := make([]AvailableTeam, 0, len(teams))
	for _, item := range team.ActiveOnly(teams) {
		row := AvailableTeam{
			Team:        item,
			TimesUsed:   used[item.ID],
			CanBePicked: true,
		}
		if hasRule {
			row.HasRuleLimits = true
			row.MaxTimes = rule.MaxTimesTeamCanBePicked
			row.CanBePicked = row.TimesUsed < rule.MaxTimesTeamCanBePicked
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *PickService) getGameweek(ctx context.Context, seasonID string, week int) (gameweek.Gameweek, error) {
	if seasonID == "" {
		return gameweek.Gameweek{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if !gameweek.ValidWeekNumber(week) {
		return gameweek.Gameweek{}, fmt.Errorf("%w: invalid gameweek number %d", ErrInvalidInput, week)
	}
	gw, exists, err := s.gameweekRepo.Get(ctx, seasonID, week)
	if err != nil {
		return gameweek.Gameweek{}, fmt.Errorf("get gameweek: %w", err)
	}
	if !exists {
		return gameweek.Gameweek{}, fmt.Errorf("%w: gameweek season=%s week=%d", ErrNotFound, seasonID, week)
	}
	return gw, nil
}

func (s *PickService) getOwnedPick(ctx context.Context, pickID, userID string) (pick.Pick, error) {
	pickID = strings.TrimSpace(pickID)
	userID = strings.TrimSpace(userID)
	if pickID == "" {
		return pick.Pick{}, fmt.Errorf("%w: pick id is required", ErrInvalidInput)
	}
	if userID == "" {
		return pick.Pick{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	item, exists, err := s.pickRepo.GetByID(ctx, pickID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get pick: %w", err)
	}
	if !exists {
		return pick.Pick{}, fmt.Errorf("%w: pick=%s", ErrNotFound, pickID)
	}
	if item.UserID != userID {
		return pick.Pick{}, fmt.Errorf("%w: pick=%s is not owned by user=%s", ErrForbidden, pickID, userID)
	}
	return item, nil
}

func (s *PickService) ensureApproved(ctx context.Context, userID, seasonID string) error {
	entry, exists, err := s.participationRepo.Get(ctx, userID, seasonID)
	if err != nil {
		return fmt.Errorf("get season participation: %w", err)
	}
	if !exists || !entry.IsApproved {
		return fmt.Errorf("%w: user=%s is not an approved participant of season=%s", ErrForbidden, userID, seasonID)
	}
	return nil
}

func (s *PickService) ensureNotEliminated(ctx context.Context, userID, seasonID string) error {
	items, err := s.eliminationRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("list eliminations: %w", err)
	}
	if item, ok := elimination.EliminatedUsers(items)[userID]; ok {
		return fmt.Errorf("%w: user=%s was eliminated in gameweek %d", ErrForbidden, userID, item.GameweekNumber)
	}
	return nil
}

func (s *PickService) ensureTeam(ctx context.Context, teamID string) error {
	item, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	if !item.IsActive {
		return fmt.Errorf("%w: team=%s is not active", ErrInvalidInput, teamID)
	}
	return nil
}

func recordPickOperation(operation string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrConflict):
		outcome = "conflict"
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	metrics.PickOperations.WithLabelValues(operation, outcome).Inc()
}

// resolveSeasonID falls back to the active season when seasonID is empty.
func resolveSeasonID(ctx context.Context, repo season.Repository, seasonID string) (string, error) {
	seasonID = strings.TrimSpace(seasonID)
	if seasonID != "" {
		return seasonID, nil
	}
	active, exists, err := repo.GetActive(ctx)
	if err != nil {
		return "", fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return "", ErrNoActiveSeason
	}
	return active.ID, nil
}
