package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/survivor-league/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/survivor-league/internal/platform/querybuilder"
)

// sweepRunUpsertSuffix keeps started_at from the first event of a run and
// lets a terminal event close it. A late "running" event never reopens a
// finished run.
const sweepRunUpsertSuffix = `ON CONFLICT (dispatch_id) DO UPDATE SET
    status = CASE
        WHEN sweep_runs.finished_at IS NOT NULL AND EXCLUDED.finished_at IS NULL THEN sweep_runs.status
        ELSE EXCLUDED.status
    END,
    summary = CASE
        WHEN EXCLUDED.summary = '{}'::jsonb THEN sweep_runs.summary
        ELSE EXCLUDED.summary
    END,
    started_at = LEAST(sweep_runs.started_at, EXCLUDED.started_at),
    finished_at = COALESCE(EXCLUDED.finished_at, sweep_runs.finished_at),
    last_error = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error
        WHEN EXCLUDED.status = 'completed' THEN NULL
        ELSE sweep_runs.last_error
    END,
    trace_id = COALESCE(sweep_runs.trace_id, EXCLUDED.trace_id),
    span_id = COALESCE(sweep_runs.span_id, EXCLUDED.span_id),
    updated_at = NOW()`

type SweepRunRepository struct {
	db *sqlx.DB
}

func NewSweepRunRepository(db *sqlx.DB) *SweepRunRepository {
	return &SweepRunRepository{db: db}
}

// UpsertEvent folds the running/completed/failed transitions of one sweep
// pass into a single sweep_runs row keyed by dispatch_id.
func (r *SweepRunRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	model, err := sweepRunFromEvent(event)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("sweep_runs", model, sweepRunUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert sweep run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert sweep run dispatch_id=%s status=%s: %w", model.DispatchID, model.Status, err)
	}
	return nil
}

func sweepRunFromEvent(event jobscheduler.DispatchEvent) (sweepRunInsertModel, error) {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return sweepRunInsertModel{}, fmt.Errorf("dispatch id is required")
	}

	occurredAt := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	summary, err := marshalSummary(event.Payload)
	if err != nil {
		return sweepRunInsertModel{}, fmt.Errorf("marshal sweep run summary: %w", err)
	}

	trigger := event.Trigger
	if trigger == "" {
		trigger = jobscheduler.TriggerSchedule
	}

	model := sweepRunInsertModel{
		DispatchID: dispatchID,
		JobName:    defaultString(event.JobName, "unknown"),
		Trigger:    string(trigger),
		SeasonID:   defaultString(event.SeasonID, "none"),
		Status:     string(event.Status),
		Summary:    summary,
		StartedAt:  occurredAt,
		TraceID:    optionalString(event.TraceID),
		SpanID:     optionalString(event.SpanID),
	}
	if event.Finished() {
		model.FinishedAt = &occurredAt
	}
	if event.Status == jobscheduler.StatusFailed {
		model.LastError = optionalString(event.ErrorMessage)
	}
	return model, nil
}

func marshalSummary(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "{}", nil
	}
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
