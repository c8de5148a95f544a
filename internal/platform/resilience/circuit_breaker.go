package resilience

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/sony/gobreaker"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

// withDefaults fills unset limits with 5 failures, 15s open and 2 probes.
func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 15 * time.Second
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = 2
	}
	return c
}

// CircuitBreaker guards one outbound dependency. Only errors the caller marks
// as failures count towards tripping; a disabled breaker just runs the call.
type CircuitBreaker struct {
	name    string
	enabled bool
	cb      *gobreaker.TwoStepCircuitBreaker
}

func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, logger *logging.Logger) *CircuitBreaker {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = cfg.withDefaults()
	threshold := uint32(cfg.FailureThreshold)

	return &CircuitBreaker{
		name:    name,
		enabled: cfg.Enabled,
		cb: gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: uint32(cfg.HalfOpenMaxReq),
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		}),
	}
}

// Do runs fn unless the breaker is open. isFailure decides whether a non-nil
// error from fn should count against the dependency.
func (b *CircuitBreaker) Do(fn func() error, isFailure func(error) bool) error {
	if b == nil || !b.enabled {
		return fn()
	}

	done, err := b.cb.Allow()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCircuitOpen, b.name, err)
	}

	callErr := fn()
	done(callErr == nil || isFailure == nil || !isFailure(callErr))
	return callErr
}

// State reports "closed", "half-open" or "open".
func (b *CircuitBreaker) State() string {
	if b == nil {
		return gobreaker.StateClosed.String()
	}
	return b.cb.State().String()
}
