package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/domain/standings"
)

type StandingsService struct {
	seasonRepo        season.Repository
	gameweekRepo      gameweek.Repository
	participationRepo participation.Repository
	pickRepo          pick.Repository
	eliminationRepo   elimination.Repository
	now               func() time.Time
}

func NewStandingsService(
	seasonRepo season.Repository,
	gameweekRepo gameweek.Repository,
	participationRepo participation.Repository,
	pickRepo pick.Repository,
	eliminationRepo elimination.Repository,
) *StandingsService {
	return &StandingsService{
		seasonRepo:        seasonRepo,
		gameweekRepo:      gameweekRepo,
		participationRepo: participationRepo,
		pickRepo:          pickRepo,
		eliminationRepo:   eliminationRepo,
		now:               time.Now,
	}
}

// GetStandings returns the leaderboard of seasonID, or across every season when
// seasonID is empty. The all-season view only marks eliminations from the
// active season.
func (s *StandingsService) GetStandings(ctx context.Context, seasonID string) ([]standings.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.GetStandings", seasonAttr(seasonID))
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	seasonIDs, err := s.seasonScope(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	eliminationScope := seasonID
	if eliminationScope == "" {
		active, exists, err := s.seasonRepo.GetActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("get active season: %w", err)
		}
		if exists {
			eliminationScope = active.ID
		}
	}

	var (
		participants []participation.Participation
		picks        []pick.Pick
		gameweeks    []gameweek.Gameweek
		eliminations []elimination.Elimination
	)
	for _, id := range seasonIDs {
		approved, err := s.participationRepo.ListApproved(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list participants season=%s: %w", id, err)
		}
		participants = append(participants, approved...)

		items, err := s.pickRepo.ListBySeason(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list picks season=%s: %w", id, err)
		}
		picks = append(picks, items...)

		weeks, err := s.gameweekRepo.ListBySeason(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list gameweeks season=%s: %w", id, err)
		}
		gameweeks = append(gameweeks, weeks...)

		if id != eliminationScope {
			continue
		}
		out, err := s.eliminationRepo.ListBySeason(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list eliminations season=%s: %w", id, err)
		}
		eliminations = append(eliminations, out...)
	}

	return standings.Calculate(seasonID, participants, picks, gameweeks, eliminations, s.now().UTC()), nil
}

func (s *StandingsService) seasonScope(ctx context.Context, seasonID string) ([]string, error) {
	if seasonID != "" {
		_, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
		if err != nil {
			return nil, fmt.Errorf("get season: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
		}
		return []string{seasonID}, nil
	}

	items, err := s.seasonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out, nil
}
