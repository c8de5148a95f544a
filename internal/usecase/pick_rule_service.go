package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
)

type UpsertPickRuleInput struct {
	SeasonID                        string
	Half                            int
	MaxTimesTeamCanBePicked         int
	MaxTimesOppositionCanBeTargeted int
	ActorID                         string
}

type PickRuleService struct {
	seasonRepo season.Repository
	ruleRepo   pick.RuleRepository
	logger     *logging.Logger
}

func NewPickRuleService(seasonRepo season.Repository, ruleRepo pick.RuleRepository, logger *logging.Logger) *PickRuleService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PickRuleService{seasonRepo: seasonRepo, ruleRepo: ruleRepo, logger: logger}
}

func (s *PickRuleService) UpsertPickRule(ctx context.Context, input UpsertPickRuleInput) (pick.Rule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickRuleService.UpsertPickRule")
	defer span.End()

	input.SeasonID = strings.TrimSpace(input.SeasonID)
	if input.SeasonID == "" {
		return pick.Rule{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if input.Half != 1 && input.Half != 2 {
		return pick.Rule{}, fmt.Errorf("%w: half must be 1 or 2", ErrInvalidInput)
	}
	if input.MaxTimesTeamCanBePicked < 1 || input.MaxTimesOppositionCanBeTargeted < 1 {
		return pick.Rule{}, fmt.Errorf("%w: pick rule limits must be at least 1", ErrInvalidInput)
	}

	_, exists, err := s.seasonRepo.GetByID(ctx, input.SeasonID)
	if err != nil {
		return pick.Rule{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return pick.Rule{}, fmt.Errorf("%w: season=%s", ErrNotFound, input.SeasonID)
	}

	rule := pick.Rule{
		SeasonID:                        input.SeasonID,
		Half:                            input.Half,
		MaxTimesTeamCanBePicked:         input.MaxTimesTeamCanBePicked,
		MaxTimesOppositionCanBeTargeted: input.MaxTimesOppositionCanBeTargeted,
	}
	if err := s.ruleRepo.Upsert(ctx, rule); err != nil {
		return pick.Rule{}, fmt.Errorf("upsert pick rule: %w", err)
	}

	s.logger.InfoContext(ctx, "pick rule saved",
		"season_id", rule.SeasonID,
		"half", rule.Half,
		"max_team", rule.MaxTimesTeamCanBePicked,
		"max_opposition", rule.MaxTimesOppositionCanBeTargeted,
		"actor_id", input.ActorID,
	)
	return rule, nil
}

func (s *PickRuleService) ListPickRules(ctx context.Context, seasonID string) ([]pick.Rule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickRuleService.ListPickRules")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return nil, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	items, err := s.ruleRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list pick rules: %w", err)
	}
	return items, nil
}
