package postgres

import "time"

type sweepRunInsertModel struct {
	DispatchID string     `db:"dispatch_id"`
	JobName    string     `db:"job_name"`
	Trigger    string     `db:"triggered_by"`
	SeasonID   string     `db:"season_public_id"`
	Status     string     `db:"status"`
	Summary    string     `db:"summary"`
	StartedAt  time.Time  `db:"started_at"`
	FinishedAt *time.Time `db:"finished_at"`
	LastError  *string    `db:"last_error"`
	TraceID    *string    `db:"trace_id"`
	SpanID     *string    `db:"span_id"`
}
