package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
	"github.com/riskibarqy/survivor-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/riskibarqy/survivor-league/internal/platform/metrics"
	"github.com/riskibarqy/survivor-league/internal/platform/resilience"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type SweepConfig struct {
	AutoAssignInterval time.Duration
	ReminderInterval   time.Duration
	// Results sync adapts between these based on fixture state.
	ScheduleInterval time.Duration
	LiveInterval     time.Duration
	PreKickoffLead   time.Duration
	IdleInterval     time.Duration
	Backoff          resilience.Backoff
}

// SweepRunner drives the periodic auto-assignment, reminder and results-sync
// passes. Each loop retries on its own with backoff after a failure.
type SweepRunner struct {
	autoAssign   *AutoAssignmentService
	reminders    *ReminderService
	results      *ResultsService
	dispatchRepo jobscheduler.Repository
	cfg          SweepConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewSweepRunner(
	autoAssign *AutoAssignmentService,
	reminders *ReminderService,
	results *ResultsService,
	dispatchRepo jobscheduler.Repository,
	cfg SweepConfig,
	logger *logging.Logger,
) *SweepRunner {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.AutoAssignInterval <= 0 {
		cfg.AutoAssignInterval = 5 * time.Minute
	}
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = 30 * time.Minute
	}
	if cfg.ScheduleInterval <= 0 {
		cfg.ScheduleInterval = 15 * time.Minute
	}
	if cfg.LiveInterval <= 0 {
		cfg.LiveInterval = 2 * time.Minute
	}
	if cfg.PreKickoffLead <= 0 {
		cfg.PreKickoffLead = 15 * time.Minute
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = 6 * time.Hour
	}

	return &SweepRunner{
		autoAssign:   autoAssign,
		reminders:    reminders,
		results:      results,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

type sweepPass func(ctx context.Context) (time.Duration, map[string]any, error)

// Run blocks until ctx is cancelled.
func (r *SweepRunner) Run(ctx context.Context) {
	var wg conc.WaitGroup
	wg.Go(func() { r.loop(ctx, jobscheduler.JobAutoAssign, r.autoAssignPass) })
	wg.Go(func() { r.loop(ctx, jobscheduler.JobReminders, r.reminderPass) })
	wg.Go(func() { r.loop(ctx, jobscheduler.JobResultsSync, r.resultsPass) })
	wg.Wait()
}

func (r *SweepRunner) RunAutoAssign(ctx context.Context) (AutoAssignResult, error) {
	var out AutoAssignResult
	_, err := r.runOnce(ctx, jobscheduler.JobAutoAssign, "", jobscheduler.TriggerManual, func(ctx context.Context) (time.Duration, map[string]any, error) {
		result, err := r.autoAssign.Run(ctx, AutoAssignInput{})
		out = result
		return 0, map[string]any{"assigned": result.AssignedCount, "failed": result.FailedCount}, err
	})
	return out, err
}

func (r *SweepRunner) RunReminders(ctx context.Context) (ReminderResult, error) {
	var out ReminderResult
	_, err := r.runOnce(ctx, jobscheduler.JobReminders, "", jobscheduler.TriggerManual, func(ctx context.Context) (time.Duration, map[string]any, error) {
		result, err := r.reminders.SendDeadlineReminders(ctx)
		out = result
		return 0, map[string]any{"gameweek": result.GameweekNumber, "reminded": result.RemindedCount}, err
	})
	return out, err
}

func (r *SweepRunner) RunResultsSync(ctx context.Context, seasonID string) (ResultsSyncResult, error) {
	var out ResultsSyncResult
	_, err := r.runOnce(ctx, jobscheduler.JobResultsSync, seasonID, jobscheduler.TriggerManual, func(ctx context.Context) (time.Duration, map[string]any, error) {
		result, err := r.results.Sync(ctx, seasonID)
		out = result
		return 0, resultsPayload(result), err
	})
	return out, err
}

func (r *SweepRunner) loop(ctx context.Context, name string, pass sweepPass) {
	retry := r.cfg.Backoff.NewExponential()
	failures := 0
	for {
		delay, err := r.runOnce(ctx, name, "", jobscheduler.TriggerSchedule, pass)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			failures++
			delay = retry.NextBackOff()
			r.logger.WarnContext(ctx, "sweep pass failed, backing off",
				"sweep", name,
				"failures", failures,
				"retry_in", delay.String(),
				"error", err,
			)
		} else {
			failures = 0
			retry.Reset()
		}
		if !resilience.Wait(ctx, delay) {
			return
		}
	}
}

func (r *SweepRunner) runOnce(ctx context.Context, name, seasonID string, trigger jobscheduler.Trigger, pass sweepPass) (time.Duration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SweepRunner."+name,
		seasonAttr(seasonID), attribute.String("survivor.sweep_trigger", string(trigger)))
	defer span.End()

	startedAt := r.now().UTC()
	dispatchID := dedupKey(name, seasonID, startedAt, time.Second)
	r.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    name,
		Trigger:    trigger,
		SeasonID:   seasonID,
		Status:     jobscheduler.StatusRunning,
		OccurredAt: startedAt,
	})

	delay, payload, err := pass(ctx)
	if err != nil {
		metrics.SweepRuns.WithLabelValues(name, string(jobscheduler.StatusFailed)).Inc()
		r.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID:   dispatchID,
			JobName:      name,
			Trigger:      trigger,
			SeasonID:     seasonID,
			Status:       jobscheduler.StatusFailed,
			Payload:      payload,
			ErrorMessage: err.Error(),
		})
		return 0, fmt.Errorf("%s sweep: %w", name, err)
	}

	metrics.SweepRuns.WithLabelValues(name, string(jobscheduler.StatusCompleted)).Inc()
	r.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    name,
		Trigger:    trigger,
		SeasonID:   seasonID,
		Status:     jobscheduler.StatusCompleted,
		Payload:    payload,
	})
	return delay, nil
}

func (r *SweepRunner) autoAssignPass(ctx context.Context) (time.Duration, map[string]any, error) {
	result, err := r.autoAssign.Run(ctx, AutoAssignInput{})
	if err != nil && isNoActiveSeason(err) {
		return r.cfg.AutoAssignInterval, nil, nil
	}
	return r.cfg.AutoAssignInterval, map[string]any{"assigned": result.AssignedCount, "failed": result.FailedCount}, err
}

func (r *SweepRunner) reminderPass(ctx context.Context) (time.Duration, map[string]any, error) {
	result, err := r.reminders.SendDeadlineReminders(ctx)
	return r.cfg.ReminderInterval, map[string]any{"gameweek": result.GameweekNumber, "reminded": result.RemindedCount}, err
}

func (r *SweepRunner) resultsPass(ctx context.Context) (time.Duration, map[string]any, error) {
	result, err := r.results.Sync(ctx, "")
	if err != nil {
		if isNoActiveSeason(err) {
			return r.nextScheduleDelay(r.now().UTC(), false, nil), nil, nil
		}
		return 0, nil, err
	}
	return r.nextScheduleDelay(r.now().UTC(), result.HasLive, result.NextKickoff), resultsPayload(result), nil
}

func resultsPayload(result ResultsSyncResult) map[string]any {
	return map[string]any{
		"updated_picks":          result.UpdatedPicks,
		"completed_gameweeks":    len(result.CompletedGameweeks),
		"eliminations_triggered": result.EliminationsTriggered,
		"has_live":               result.HasLive,
	}
}

// nextScheduleDelay polls tightly while a fixture is live, wakes just before the
// next kickoff, and otherwise falls back to the idle interval.
func (r *SweepRunner) nextScheduleDelay(now time.Time, hasLive bool, nearestUpcoming *time.Time) time.Duration {
	minDelay := time.Minute
	if hasLive {
		return maxDuration(r.cfg.LiveInterval, minDelay)
	}

	if nearestUpcoming != nil {
		liveAt := nearestUpcoming.Add(-r.cfg.PreKickoffLead)
		delay := liveAt.Sub(now)
		if delay <= 0 {
			return maxDuration(r.cfg.LiveInterval, minDelay)
		}
		return maxDuration(delay, minDelay)
	}

	return maxDuration(r.cfg.ScheduleInterval, r.cfg.IdleInterval)
}

func (r *SweepRunner) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if r.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.now().UTC()
	}
	if err := r.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "record sweep dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func isNoActiveSeason(err error) bool {
	return errors.Is(err, ErrNoActiveSeason)
}

func dedupKey(prefix, scope string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	scope = sanitizeDedupSegment(scope)
	return prefix + "-" + scope + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}

func analyzeFixtures(items []fixture.Fixture, now time.Time) (bool, *time.Time) {
	var nearestUpcoming *time.Time
	hasLive := false
	for _, item := range items {
		status := strings.TrimSpace(item.Status)
		if fixture.IsLiveStatus(status) {
			hasLive = true
		}

		if item.KickoffAt.IsZero() || item.KickoffAt.Before(now) {
			continue
		}
		if fixture.IsTerminalStatus(status) {
			continue
		}
		if nearestUpcoming == nil || item.KickoffAt.Before(*nearestUpcoming) {
			next := item.KickoffAt
			nearestUpcoming = &next
		}
	}

	return hasLive, nearestUpcoming
}

func maxDuration(left, right time.Duration) time.Duration {
	if left > right {
		return left
	}
	return right
}
