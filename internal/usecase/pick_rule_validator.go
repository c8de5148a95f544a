package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
)

type PickValidationInput struct {
	UserID         string
	SeasonID       string
	GameweekNumber int
	TeamID         string
	// ExcludePickID drops the pick being updated from the rule counts.
	ExcludePickID string
}

// PickRuleValidator decides whether a team selection respects the half-season
// pick rule. A missing rule allows every selection.
type PickRuleValidator struct {
	ruleRepo    pick.RuleRepository
	pickRepo    pick.Repository
	fixtureRepo fixture.Repository
	halves      gameweek.Halves
}

func NewPickRuleValidator(
	ruleRepo pick.RuleRepository,
	pickRepo pick.Repository,
	fixtureRepo fixture.Repository,
	halves gameweek.Halves,
) *PickRuleValidator {
	return &PickRuleValidator{
		ruleRepo:    ruleRepo,
		pickRepo:    pickRepo,
		fixtureRepo: fixtureRepo,
		halves:      halves,
	}
}

func (v *PickRuleValidator) Validate(ctx context.Context, input PickValidationInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickRuleValidator.Validate")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.SeasonID = strings.TrimSpace(input.SeasonID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	if input.UserID == "" || input.SeasonID == "" || input.TeamID == "" {
		return fmt.Errorf("%w: user, season and team are required", ErrInvalidInput)
	}
	if !gameweek.ValidWeekNumber(input.GameweekNumber) {
		return fmt.Errorf("%w: invalid gameweek number %d", ErrInvalidInput, input.GameweekNumber)
	}

	half := v.halves.Of(input.GameweekNumber)
	rule, exists, err := v.ruleRepo.Get(ctx, input.SeasonID, half)
	if err != nil {
		return fmt.Errorf("get pick rule season=%s half=%d: %w", input.SeasonID, half, err)
	}
	if !exists {
		return nil
	}

	history, err := v.pickRepo.ListByUser(ctx, input.UserID, input.SeasonID)
	if err != nil {
		return fmt.Errorf("list user picks: %w", err)
	}
	fixtures, err := v.fixtureRepo.ListBySeason(ctx, input.SeasonID)
	if err != nil {
		return fmt.Errorf("list season fixtures: %w", err)
	}

	candidate := pick.Candidate{
		UserID:         input.UserID,
		SeasonID:       input.SeasonID,
		GameweekNumber: input.GameweekNumber,
		TeamID:         input.TeamID,
		ExcludePickID:  input.ExcludePickID,
	}
	if err := pick.CheckSelection(rule, candidate, history, fixtures, v.halves); err != nil {
		return fmt.Errorf("%w: %w", ErrRuleViolation, err)
	}
	return nil
}
