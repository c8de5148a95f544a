// Package observability starts the process-wide tracing and profiling sinks.
package observability

import (
	"context"
	"errors"

	"github.com/riskibarqy/survivor-league/internal/config"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/riskibarqy/survivor-league/internal/platform/metrics"
)

// Telemetry owns every sink Start brought up. The zero value shuts down
// cleanly.
type Telemetry struct {
	logger   *logging.Logger
	closers  []closer
	tracing  bool
	profiler bool
}

type closer struct {
	name  string
	close func(context.Context) error
}

// Start brings up metrics, Uptrace tracing, Pyroscope and the pprof listener
// according to cfg. On error, anything already started is shut down.
func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger}

	if cfg.MetricsEnabled {
		metrics.Register()
	}

	steps := []func(config.Config) error{t.startTracing, t.startProfiler, t.startPprof}
	for _, step := range steps {
		if err := step(cfg); err != nil {
			_ = t.Shutdown(context.Background())
			return nil, err
		}
	}
	return t, nil
}

// Shutdown stops sinks in reverse start order and joins their errors.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		c := t.closers[i]
		if err := c.close(ctx); err != nil {
			t.logger.Warn("telemetry shutdown failed", "sink", c.name, "error", err)
			errs = append(errs, err)
		}
	}
	t.closers = nil
	return errors.Join(errs...)
}

func (t *Telemetry) onShutdown(name string, fn func(context.Context) error) {
	t.closers = append(t.closers, closer{name: name, close: fn})
}
