package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusRunning   DispatchStatus = "running"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

const (
	JobAutoAssign  = "auto-assign"
	JobReminders   = "reminders"
	JobResultsSync = "results-sync"
)

// Trigger tells a scheduled in-process pass apart from one requested through
// the internal job or admin endpoints.
type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
)

// DispatchEvent is one state transition of a sweep pass. Events sharing a
// DispatchID fold into a single run record.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	Trigger      Trigger
	SeasonID     string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

// Finished reports whether the event closes its run.
func (e DispatchEvent) Finished() bool {
	return e.Status == StatusCompleted || e.Status == StatusFailed
}
