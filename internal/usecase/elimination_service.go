package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/notification"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	idgen "github.com/riskibarqy/survivor-league/internal/platform/id"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/riskibarqy/survivor-league/internal/platform/metrics"
)

type ProcessEliminationInput struct {
	SeasonID       string
	GameweekNumber int
	// ActorID is the admin user id, or elimination.SystemActorID for automatic runs.
	ActorID string
}

type EliminationResult struct {
	SeasonID         string                    `json:"season_id"`
	GameweekNumber   int                       `json:"gameweek_number"`
	EliminatedCount  int                       `json:"eliminated_count"`
	Eliminated       []elimination.Elimination `json:"eliminated"`
	AlreadyProcessed bool                      `json:"already_processed"`
	Message          string                    `json:"message,omitempty"`
}

type EliminationCountItem struct {
	GameweekNumber int `json:"gameweek_number" validate:"required,min=1,max=38"`
	Count          int `json:"count" validate:"min=0"`
}

type EliminationCountFailure struct {
	GameweekNumber int    `json:"gameweek_number"`
	Reason         string `json:"reason"`
}

type EliminationCountResult struct {
	Updated []int                     `json:"updated"`
	Failed  []EliminationCountFailure `json:"failed"`
}

type EliminationService struct {
	gameweekRepo    gameweek.Repository
	eliminationRepo elimination.Repository
	pickRepo        pick.Repository
	notifier        notification.Notifier
	idGen           idgen.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewEliminationService(
	gameweekRepo gameweek.Repository,
	eliminationRepo elimination.Repository,
	pickRepo pick.Repository,
	notifier notification.Notifier,
	idGen idgen.Generator,
	logger *logging.Logger,
) *EliminationService {
	if logger == nil {
		logger = logging.Default()
	}

	return &EliminationService{
		gameweekRepo:    gameweekRepo,
		eliminationRepo: eliminationRepo,
		pickRepo:        pickRepo,
		notifier:        notifierOrNoop(notifier),
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

// Process eliminates the bottom N users of a gameweek. A zero count or an
// already processed gameweek is a no-op reported through Message.
func (s *EliminationService) Process(ctx context.Context, input ProcessEliminationInput) (EliminationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EliminationService.Process",
		seasonAttr(input.SeasonID), gameweekAttr(input.GameweekNumber))
	defer span.End()

	input.SeasonID = strings.TrimSpace(input.SeasonID)
	input.ActorID = strings.TrimSpace(input.ActorID)
	if input.SeasonID == "" {
		return EliminationResult{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if input.ActorID == "" {
		return EliminationResult{}, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}
	if !gameweek.ValidWeekNumber(input.GameweekNumber) {
		return EliminationResult{}, fmt.Errorf("%w: invalid gameweek number %d", ErrInvalidInput, input.GameweekNumber)
	}

	result := EliminationResult{SeasonID: input.SeasonID, GameweekNumber: input.GameweekNumber}

	gw, exists, err := s.gameweekRepo.Get(ctx, input.SeasonID, input.GameweekNumber)
	if err != nil {
		return EliminationResult{}, fmt.Errorf("get gameweek: %w", err)
	}
	if !exists {
		return EliminationResult{}, fmt.Errorf("%w: gameweek season=%s week=%d", ErrNotFound, input.SeasonID, input.GameweekNumber)
	}
	if gw.EliminationCount <= 0 {
		result.Message = "no eliminations configured for this gameweek"
		return result, nil
	}

	processed, err := s.eliminationRepo.IsProcessed(ctx, gw.SeasonID, gw.WeekNumber)
	if err != nil {
		return EliminationResult{}, fmt.Errorf("check eliminations processed: %w", err)
	}
	if processed {
		result.AlreadyProcessed = true
		result.Message = "eliminations already processed for this gameweek"
		return result, nil
	}

	totals, err := s.activeTotals(ctx, gw)
	if err != nil {
		return EliminationResult{}, err
	}
	bottom := elimination.SelectBottom(totals, gw.EliminationCount)
	if len(bottom) == 0 {
		result.Message = "no active users to eliminate"
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return EliminationResult{}, err
	}

	now := s.now().UTC()
	batch := elimination.Batch{
		SeasonID:       gw.SeasonID,
		GameweekNumber: gw.WeekNumber,
		ActorID:        input.ActorID,
		ProcessedAt:    now,
		Items:          make([]elimination.Elimination, 0, len(bottom)),
	}
	for i, total := range bottom {
		id, err := s.idGen.NewID()
		if err != nil {
			return EliminationResult{}, fmt.Errorf("generate elimination id: %w", err)
		}
		batch.Items = append(batch.Items, elimination.Elimination{
			ID:             id,
			UserID:         total.UserID,
			SeasonID:       gw.SeasonID,
			GameweekNumber: gw.WeekNumber,
			Position:       i + 1,
			TotalPoints:    total.Points,
			EliminatedAt:   now,
			ActorID:        input.ActorID,
		})
	}

	if err := s.eliminationRepo.SaveBatch(ctx, batch); err != nil {
		if errors.Is(err, elimination.ErrAlreadyProcessed) {
			result.AlreadyProcessed = true
			result.Message = "eliminations already processed for this gameweek"
			return result, nil
		}
		return EliminationResult{}, fmt.Errorf("save elimination batch: %w", err)
	}

	trigger := "manual"
	if input.ActorID == elimination.SystemActorID {
		trigger = "system"
	}
	metrics.Eliminations.WithLabelValues(trigger).Add(float64(len(batch.Items)))

	s.logger.InfoContext(ctx, "eliminations processed",
		"season_id", gw.SeasonID,
		"gameweek", gw.WeekNumber,
		"eliminated", len(batch.Items),
		"actor_id", input.ActorID,
	)
	for _, item := range batch.Items {
		sendNotification(ctx, s.notifier, s.logger, notification.Message{
			Kind:     notification.KindEliminated,
			UserID:   item.UserID,
			SeasonID: item.SeasonID,
			Gameweek: item.GameweekNumber,
			DedupID:  fmt.Sprintf("eliminated-%s-%d-%s", item.SeasonID, item.GameweekNumber, item.UserID),
			SentAt:   now,
		})
	}

	result.Eliminated = batch.Items
	result.EliminatedCount = len(batch.Items)
	return result, nil
}

// activeTotals sums points up to and including gw for users not eliminated in
// any other gameweek of the season.
func (s *EliminationService) activeTotals(ctx context.Context, gw gameweek.Gameweek) ([]elimination.Total, error) {
	previous, err := s.eliminationRepo.ListBySeason(ctx, gw.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("list season eliminations: %w", err)
	}
	excluded := make(map[string]struct{}, len(previous))
	for _, item := range previous {
		if item.GameweekNumber != gw.WeekNumber {
			excluded[item.UserID] = struct{}{}
		}
	}

	picks, err := s.pickRepo.ListBySeason(ctx, gw.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("list season picks: %w", err)
	}

	index := make(map[string]int)
	totals := make([]elimination.Total, 0)
	for _, item := range picks {
		if item.GameweekNumber > gw.WeekNumber {
			continue
		}
		if _, ok := excluded[item.UserID]; ok {
			continue
		}
		pos, ok := index[item.UserID]
		if !ok {
			pos = len(totals)
			index[item.UserID] = pos
			totals = append(totals, elimination.Total{UserID: item.UserID})
		}
		totals[pos].Points += item.Points
	}
	return totals, nil
}

// UpdateEliminationCounts applies each item independently; rejected items are
// reported in Failed and do not stop the rest.
func (s *EliminationService) UpdateEliminationCounts(ctx context.Context, seasonID string, items []EliminationCountItem, actorID string) (EliminationCountResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EliminationService.UpdateEliminationCounts")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return EliminationCountResult{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if len(items) == 0 {
		return EliminationCountResult{}, fmt.Errorf("%w: at least one gameweek is required", ErrInvalidInput)
	}

	result := EliminationCountResult{Updated: []int{}, Failed: []EliminationCountFailure{}}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.updateEliminationCount(ctx, seasonID, item); err != nil {
			s.logger.WarnContext(ctx, "elimination count update rejected",
				"season_id", seasonID,
				"gameweek", item.GameweekNumber,
				"actor_id", actorID,
				"error", err,
			)
			result.Failed = append(result.Failed, EliminationCountFailure{GameweekNumber: item.GameweekNumber, Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, item.GameweekNumber)
	}

	s.logger.InfoContext(ctx, "elimination counts updated",
		"season_id", seasonID,
		"updated", len(result.Updated),
		"failed", len(result.Failed),
		"actor_id", actorID,
	)
	return result, nil
}

func (s *EliminationService) updateEliminationCount(ctx context.Context, seasonID string, item EliminationCountItem) error {
	if !gameweek.ValidWeekNumber(item.GameweekNumber) {
		return fmt.Errorf("%w: invalid gameweek number %d", ErrInvalidInput, item.GameweekNumber)
	}
	if item.Count < 0 {
		return fmt.Errorf("%w: count must not be negative", ErrInvalidInput)
	}
	_, exists, err := s.gameweekRepo.Get(ctx, seasonID, item.GameweekNumber)
	if err != nil {
		return fmt.Errorf("get gameweek: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: gameweek %d", ErrNotFound, item.GameweekNumber)
	}
	processed, err := s.eliminationRepo.IsProcessed(ctx, seasonID, item.GameweekNumber)
	if err != nil {
		return fmt.Errorf("check eliminations processed: %w", err)
	}
	if processed {
		return fmt.Errorf("%w: gameweek %d", ErrAlreadyProcessed, item.GameweekNumber)
	}
	if err := s.gameweekRepo.UpdateEliminationCount(ctx, seasonID, item.GameweekNumber, item.Count); err != nil {
		return fmt.Errorf("update elimination count: %w", err)
	}
	return nil
}
