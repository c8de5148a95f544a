package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Backoff configures the delay between retries after consecutive failures:
// it doubles from Base up to Max, spread by Jitter (0..1).
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

// NewExponential returns a fresh stateful backoff. Call Reset on it after a
// success.
func (b Backoff) NewExponential() *backoff.ExponentialBackOff {
	base := b.Base
	if base <= 0 {
		base = time.Second
	}
	maxDelay := b.Max
	if maxDelay < base {
		maxDelay = max(base, 5*time.Minute)
	}
	jitter := b.Jitter
	if jitter < 0 || jitter > 1 {
		jitter = 0
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = base
	eb.MaxInterval = maxDelay
	eb.Multiplier = 2
	eb.RandomizationFactor = jitter
	eb.Reset()
	return eb
}

// Wait blocks for delay or until ctx is done; it reports false on cancellation.
func Wait(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
