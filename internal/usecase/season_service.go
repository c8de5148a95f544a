package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/domain/team"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
)

type CreateSeasonInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	// Activate defaults to true; a new season replaces the active one.
	Activate *bool
	ActorID  string
}

type SeasonService struct {
	seasonRepo   season.Repository
	gameweekRepo gameweek.Repository
	teamRepo     team.Repository
	logger       *logging.Logger
	now          func() time.Time
}

func NewSeasonService(
	seasonRepo season.Repository,
	gameweekRepo gameweek.Repository,
	teamRepo team.Repository,
	logger *logging.Logger,
) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SeasonService{
		seasonRepo:   seasonRepo,
		gameweekRepo: gameweekRepo,
		teamRepo:     teamRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *SeasonService) ListSeasons(ctx context.Context) ([]season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ListSeasons")
	defer span.End()

	items, err := s.seasonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].StartDate.After(items[j].StartDate) })
	return items, nil
}

func (s *SeasonService) GetActiveSeason(ctx context.Context) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.GetActiveSeason")
	defer span.End()

	item, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return season.Season{}, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return season.Season{}, ErrNoActiveSeason
	}
	return item, nil
}

func (s *SeasonService) CreateSeason(ctx context.Context, input CreateSeasonInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.CreateSeason")
	defer span.End()

	now := s.now().UTC()
	item := season.Season{
		ID:        season.IDFromName(input.Name),
		Name:      strings.TrimSpace(input.Name),
		StartDate: input.StartDate.UTC(),
		EndDate:   input.EndDate.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return season.Season{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	_, exists, err := s.seasonRepo.GetByID(ctx, item.ID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if exists {
		return season.Season{}, fmt.Errorf("%w: season %s already exists", ErrConflict, item.Name)
	}
	if err := s.seasonRepo.Create(ctx, item); err != nil {
		if errors.Is(err, season.ErrDuplicate) {
			return season.Season{}, fmt.Errorf("%w: season %s already exists", ErrConflict, item.Name)
		}
		return season.Season{}, fmt.Errorf("create season: %w", err)
	}

	s.logger.InfoContext(ctx, "season created", "season_id", item.ID, "actor_id", input.ActorID)
	if input.Activate != nil && !*input.Activate {
		return item, nil
	}
	return s.ActivateSeason(ctx, item.ID, input.ActorID)
}

// ActivateSeason makes seasonID the only active season.
func (s *SeasonService) ActivateSeason(ctx context.Context, seasonID, actorID string) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ActivateSeason")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return season.Season{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	item, err := s.seasonRepo.Activate(ctx, seasonID)
	switch {
	case errors.Is(err, season.ErrNotFound):
		return season.Season{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	case errors.Is(err, season.ErrArchived):
		return season.Season{}, fmt.Errorf("%w: season=%s is archived", ErrConflict, seasonID)
	case err != nil:
		return season.Season{}, fmt.Errorf("activate season: %w", err)
	}

	s.logger.InfoContext(ctx, "season activated", "season_id", seasonID, "actor_id", actorID)
	return item, nil
}

func (s *SeasonService) ListGameweeks(ctx context.Context, seasonID string) ([]gameweek.Gameweek, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ListGameweeks")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return nil, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	_, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}

	items, err := s.gameweekRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list gameweeks: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].WeekNumber < items[j].WeekNumber })
	return items, nil
}

// ListTeams returns every team; activeOnly drops inactive ones.
func (s *SeasonService) ListTeams(ctx context.Context, activeOnly bool) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ListTeams")
	defer span.End()

	items, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if activeOnly {
		items = team.ActiveOnly(items)
	}
	return items, nil
}
