package observability

import (
	"strings"

	"github.com/riskibarqy/survivor-league/internal/config"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

func (t *Telemetry) startTracing(cfg config.Config) error {
	dsn := strings.TrimSpace(cfg.UptraceDSN)
	if !cfg.UptraceEnabled || dsn == "" {
		t.logger.Info("tracing disabled", "uptrace_enabled", cfg.UptraceEnabled, "dsn_set", dsn != "")
		return nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(dsn),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(
			attribute.String("survivor.storage_backend", cfg.StorageBackend),
			attribute.Int("survivor.season_half_boundary", cfg.SeasonHalfBoundary),
		),
	)
	t.tracing = true
	t.onShutdown("uptrace", uptrace.Shutdown)

	t.logger.Info("tracing enabled", "exporter", "uptrace", "service_name", cfg.ServiceName)
	return nil
}
