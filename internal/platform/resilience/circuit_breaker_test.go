package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/survivor-league/internal/platform/logging"
)

var errTransient = errors.New("transient")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	b := NewCircuitBreaker("test", CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      30 * time.Millisecond,
		HalfOpenMaxReq:   1,
	}, logging.NewNop())

	fail := func() error { return errTransient }
	for i := 0; i < 2; i++ {
		if err := b.Do(fail, isTransient); !errors.Is(err, errTransient) {
			t.Fatalf("expected call error, got %v", err)
		}
	}
	if state := b.State(); state != "open" {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	calls := 0
	err := b.Do(func() error { calls++; return nil }, isTransient)
	if !errors.Is(err, ErrCircuitOpen) || calls != 0 {
		t.Fatalf("expected rejection without call, got err=%v calls=%d", err, calls)
	}

	time.Sleep(50 * time.Millisecond)
	if err := b.Do(func() error { return nil }, isTransient); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != "closed" {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}
}

func TestCircuitBreaker_IgnoresNonFailures(t *testing.T) {
	b := NewCircuitBreaker("test", CircuitBreakerConfig{Enabled: true, FailureThreshold: 1}, logging.NewNop())
	permanent := errors.New("bad request")

	for i := 0; i < 3; i++ {
		if err := b.Do(func() error { return permanent }, isTransient); !errors.Is(err, permanent) {
			t.Fatalf("expected permanent error passthrough, got %v", err)
		}
	}
	if state := b.State(); state != "closed" {
		t.Fatalf("expected closed, got %s", state)
	}
}

func TestCircuitBreaker_DisabledRunsEveryCall(t *testing.T) {
	b := NewCircuitBreaker("test", CircuitBreakerConfig{Enabled: false, FailureThreshold: 1}, logging.NewNop())

	calls := 0
	for i := 0; i < 3; i++ {
		_ = b.Do(func() error { calls++; return errTransient }, isTransient)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}
