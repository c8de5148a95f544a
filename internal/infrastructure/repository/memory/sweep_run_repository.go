package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/survivor-league/internal/domain/jobscheduler"
)

// SweepRunRepository keeps the folded state of each run, mirroring the
// postgres upsert: a finished run is never reopened and the first trace wins.
type SweepRunRepository struct {
	mu     sync.RWMutex
	events map[string]jobscheduler.DispatchEvent
}

func NewSweepRunRepository() *SweepRunRepository {
	return &SweepRunRepository{events: make(map[string]jobscheduler.DispatchEvent)}
}

func (r *SweepRunRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.events[event.DispatchID]
	if !ok {
		r.events[event.DispatchID] = event
		return nil
	}
	if prev.Finished() && !event.Finished() {
		return nil
	}
	if len(event.Payload) == 0 {
		event.Payload = prev.Payload
	}
	if prev.TraceID != "" {
		event.TraceID, event.SpanID = prev.TraceID, prev.SpanID
	}
	r.events[event.DispatchID] = event
	return nil
}

// Get returns the latest state of a run.
func (r *SweepRunRepository) Get(dispatchID string) (jobscheduler.DispatchEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[dispatchID]
	return event, ok
}

func (r *SweepRunRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.events)
}
