package resilience

import (
	"context"
	"testing"
	"time"
)

func TestBackoff_DoublesUpToMaxAndResets(t *testing.T) {
	t.Parallel()

	eb := Backoff{Base: 10 * time.Second, Max: time.Minute}.NewExponential()
	want := []time.Duration{10 * time.Second, 20 * time.Second, 40 * time.Second, time.Minute, time.Minute}
	for i, w := range want {
		if got := eb.NextBackOff(); got != w {
			t.Fatalf("attempt=%d got=%s want=%s", i+1, got, w)
		}
	}

	eb.Reset()
	if got := eb.NextBackOff(); got != 10*time.Second {
		t.Fatalf("expected reset to base, got %s", got)
	}
}

func TestBackoff_JitterStaysWithinSpread(t *testing.T) {
	t.Parallel()

	eb := Backoff{Base: 10 * time.Second, Max: time.Minute, Jitter: 0.2}.NewExponential()
	got := eb.NextBackOff()
	if got < 8*time.Second || got > 12*time.Second {
		t.Fatalf("expected 8s..12s, got %s", got)
	}
}

func TestWait_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if Wait(ctx, time.Hour) {
		t.Fatalf("expected wait to report cancellation")
	}
}
