package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/notification"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
)

const defaultReminderLead = 24 * time.Hour

type ReminderResult struct {
	SeasonID       string `json:"season_id"`
	GameweekNumber int    `json:"gameweek_number"`
	RemindedCount  int    `json:"reminded_count"`
}

// ReminderService nudges active participants without a pick ahead of the next deadline.
type ReminderService struct {
	seasonRepo        season.Repository
	gameweekRepo      gameweek.Repository
	participationRepo participation.Repository
	eliminationRepo   elimination.Repository
	pickRepo          pick.Repository
	notifier          notification.Notifier
	lead              time.Duration
	logger            *logging.Logger
	now               func() time.Time
}

func NewReminderService(
	seasonRepo season.Repository,
	gameweekRepo gameweek.Repository,
	participationRepo participation.Repository,
	eliminationRepo elimination.Repository,
	pickRepo pick.Repository,
	notifier notification.Notifier,
	lead time.Duration,
	logger *logging.Logger,
) *ReminderService {
	if logger == nil {
		logger = logging.Default()
	}
	if lead <= 0 {
		lead = defaultReminderLead
	}

	return &ReminderService{
		seasonRepo:        seasonRepo,
		gameweekRepo:      gameweekRepo,
		participationRepo: participationRepo,
		eliminationRepo:   eliminationRepo,
		pickRepo:          pickRepo,
		notifier:          notifierOrNoop(notifier),
		lead:              lead,
		logger:            logger,
		now:               time.Now,
	}
}

func (s *ReminderService) SendDeadlineReminders(ctx context.Context) (ReminderResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReminderService.SendDeadlineReminders")
	defer span.End()

	active, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return ReminderResult{}, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return ReminderResult{}, nil
	}
	result := ReminderResult{SeasonID: active.ID}

	now := s.now().UTC()
	gw, ok, err := s.nextOpenGameweek(ctx, active.ID, now)
	if err != nil {
		return result, err
	}
	if !ok {
		return result, nil
	}
	result.GameweekNumber = gw.WeekNumber

	approved, err := s.participationRepo.ListApproved(ctx, active.ID)
	if err != nil {
		return result, fmt.Errorf("list approved participants: %w", err)
	}
	eliminations, err := s.eliminationRepo.ListBySeason(ctx, active.ID)
	if err != nil {
		return result, fmt.Errorf("list eliminations: %w", err)
	}
	eliminated := elimination.EliminatedUsers(eliminations)
	picks, err := s.pickRepo.ListByGameweek(ctx, active.ID, gw.WeekNumber)
	if err != nil {
		return result, fmt.Errorf("list gameweek picks: %w", err)
	}
	picked := make(map[string]struct{}, len(picks))
	for _, item := range picks {
		picked[item.UserID] = struct{}{}
	}

	for _, entry := range approved {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, ok := eliminated[entry.UserID]; ok {
			continue
		}
		if _, ok := picked[entry.UserID]; ok {
			continue
		}
		sendNotification(ctx, s.notifier, s.logger, notification.Message{
			Kind:     notification.KindDeadlineReminder,
			UserID:   entry.UserID,
			SeasonID: active.ID,
			Gameweek: gw.WeekNumber,
			Deadline: gw.Deadline.UTC(),
			DedupID:  reminderDedupID(active.ID, gw.WeekNumber, entry.UserID),
			SentAt:   now,
		})
		result.RemindedCount++
	}

	s.logger.InfoContext(ctx, "deadline reminders sent",
		"season_id", active.ID,
		"gameweek", gw.WeekNumber,
		"reminded", result.RemindedCount,
	)
	return result, nil
}

// nextOpenGameweek returns the earliest gameweek whose deadline is still ahead
// and within the reminder lead.
func (s *ReminderService) nextOpenGameweek(ctx context.Context, seasonID string, now time.Time) (gameweek.Gameweek, bool, error) {
	items, err := s.gameweekRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return gameweek.Gameweek{}, false, fmt.Errorf("list gameweeks: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Deadline.Before(items[j].Deadline) })

	for _, item := range items {
		if item.Deadline.IsZero() || item.DeadlinePassed(now) {
			continue
		}
		if item.Deadline.Sub(now) > s.lead {
			return gameweek.Gameweek{}, false, nil
		}
		return item, true, nil
	}
	return gameweek.Gameweek{}, false, nil
}

func reminderDedupID(seasonID string, week int, userID string) string {
	return fmt.Sprintf("reminder-%s-%d-%s", sanitizeDedupSegment(seasonID), week, sanitizeDedupSegment(userID))
}
