package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
)

type ResultsSyncResult struct {
	SeasonID              string     `json:"season_id"`
	UpdatedPicks          int        `json:"updated_picks"`
	CompletedGameweeks    []int      `json:"completed_gameweeks"`
	EliminationsTriggered int        `json:"eliminations_triggered"`
	HasLive               bool       `json:"has_live"`
	NextKickoff           *time.Time `json:"next_kickoff,omitempty"`
}

// ResultsService writes pick scores from finished fixtures and runs automatic
// eliminations for gameweeks whose fixtures are all terminal.
type ResultsService struct {
	seasonRepo   season.Repository
	gameweekRepo gameweek.Repository
	fixtureRepo  fixture.Repository
	pickRepo     pick.Repository
	eliminations *EliminationService
	logger       *logging.Logger
	now          func() time.Time
}

func NewResultsService(
	seasonRepo season.Repository,
	gameweekRepo gameweek.Repository,
	fixtureRepo fixture.Repository,
	pickRepo pick.Repository,
	eliminations *EliminationService,
	logger *logging.Logger,
) *ResultsService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ResultsService{
		seasonRepo:   seasonRepo,
		gameweekRepo: gameweekRepo,
		fixtureRepo:  fixtureRepo,
		pickRepo:     pickRepo,
		eliminations: eliminations,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *ResultsService) Sync(ctx context.Context, seasonID string) (ResultsSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.Sync")
	defer span.End()

	seasonID, err := resolveSeasonID(ctx, s.seasonRepo, seasonID)
	if err != nil {
		return ResultsSyncResult{}, err
	}
	result := ResultsSyncResult{SeasonID: seasonID, CompletedGameweeks: []int{}}

	fixtures, err := s.fixtureRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return ResultsSyncResult{}, fmt.Errorf("list season fixtures: %w", err)
	}
	result.HasLive, result.NextKickoff = analyzeFixtures(fixtures, s.now().UTC())

	picks, err := s.pickRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return ResultsSyncResult{}, fmt.Errorf("list season picks: %w", err)
	}
	updates := scoreUpdates(picks, fixtures)
	if len(updates) > 0 {
		updated, err := s.pickRepo.UpdateScores(ctx, updates)
		if err != nil {
			return ResultsSyncResult{}, fmt.Errorf("update pick scores: %w", err)
		}
		result.UpdatedPicks = updated
	}

	byWeek := make(map[int][]fixture.Fixture)
	for _, item := range fixtures {
		byWeek[item.Gameweek] = append(byWeek[item.Gameweek], item)
	}
	weeks := make([]int, 0, len(byWeek))
	for week, items := range byWeek {
		if fixture.AllTerminal(items) {
			weeks = append(weeks, week)
		}
	}
	sort.Ints(weeks)

	for _, week := range weeks {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.CompletedGameweeks = append(result.CompletedGameweeks, week)
		if s.eliminations == nil {
			continue
		}
		_, exists, err := s.gameweekRepo.Get(ctx, seasonID, week)
		if err != nil {
			return result, fmt.Errorf("get gameweek %d: %w", week, err)
		}
		if !exists {
			continue
		}
		out, err := s.eliminations.Process(ctx, ProcessEliminationInput{
			SeasonID:       seasonID,
			GameweekNumber: week,
			ActorID:        elimination.SystemActorID,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "automatic elimination failed", "season_id", seasonID, "gameweek", week, "error", err)
			continue
		}
		if out.EliminatedCount > 0 {
			result.EliminationsTriggered++
		}
	}

	s.logger.InfoContext(ctx, "results synced",
		"season_id", seasonID,
		"updated_picks", result.UpdatedPicks,
		"completed_gameweeks", len(result.CompletedGameweeks),
		"eliminations_triggered", result.EliminationsTriggered,
		"has_live", result.HasLive,
	)
	return result, nil
}

// scoreUpdates returns only picks whose stored score differs from the result of
// their team's finished fixture.
func scoreUpdates(picks []pick.Pick, fixtures []fixture.Fixture) []pick.ScoreUpdate {
	out := make([]pick.ScoreUpdate, 0)
	for _, item := range picks {
		match, ok := fixture.FindForTeam(fixtures, item.GameweekNumber, item.TeamID)
		if !ok {
			continue
		}
		score, ok := pick.ScoreFromFixture(match, item.TeamID)
		if !ok || score == item.Score() {
			continue
		}
		out = append(out, pick.ScoreUpdate{PickID: item.ID, Score: score})
	}
	return out
}
