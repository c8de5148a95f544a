package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/survivor-league/internal/config"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/notification"
	"github.com/riskibarqy/survivor-league/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/survivor-league/internal/infrastructure/notifier"
	"github.com/riskibarqy/survivor-league/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/survivor-league/internal/platform/id"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/riskibarqy/survivor-league/internal/platform/resilience"
	"github.com/riskibarqy/survivor-league/internal/usecase"
)

// App is the assembled process: the HTTP server, the background sweeps and
// whatever needs closing on shutdown.
type App struct {
	Server *http.Server
	Sweeps *usecase.SweepRunner

	db *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	halves, err := gameweek.NewHalves(cfg.SeasonHalfBoundary)
	if err != nil {
		return nil, fmt.Errorf("season halves: %w", err)
	}

	var db *sqlx.DB
	if cfg.StorageBackend == config.StorageBackendPostgres {
		db, err = openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	repos := buildRepositories(cfg, db)

	notif := buildNotifier(cfg, logger)
	ids := idgen.NewUUIDGenerator()

	seasonSvc := usecase.NewSeasonService(repos.seasons, repos.gameweeks, repos.teams, logger)
	validator := usecase.NewPickRuleValidator(repos.rules, repos.picks, repos.fixtures, halves)
	pickSvc := usecase.NewPickService(
		repos.seasons,
		repos.gameweeks,
		repos.participations,
		repos.picks,
		repos.rules,
		repos.teams,
		repos.eliminations,
		validator,
		halves,
		ids,
		logger,
	)
	ruleSvc := usecase.NewPickRuleService(repos.seasons, repos.rules, logger)
	eliminationSvc := usecase.NewEliminationService(repos.gameweeks, repos.eliminations, repos.picks, notif, ids, logger)
	autoAssignSvc := usecase.NewAutoAssignmentService(
		repos.seasons,
		repos.gameweeks,
		repos.participations,
		repos.eliminations,
		repos.picks,
		repos.teams,
		repos.fixtures,
		notif,
		halves,
		ids,
		cfg.Sweep.AutoAssignWorkers,
		logger,
	)
	standingsSvc := usecase.NewStandingsService(repos.seasons, repos.gameweeks, repos.participations, repos.picks, repos.eliminations)
	reminderSvc := usecase.NewReminderService(
		repos.seasons,
		repos.gameweeks,
		repos.participations,
		repos.eliminations,
		repos.picks,
		notif,
		cfg.Sweep.ReminderLead,
		logger,
	)
	resultsSvc := usecase.NewResultsService(repos.seasons, repos.gameweeks, repos.fixtures, repos.picks, eliminationSvc, logger)

	sweeps := usecase.NewSweepRunner(autoAssignSvc, reminderSvc, resultsSvc, repos.dispatches, usecase.SweepConfig{
		AutoAssignInterval: cfg.Sweep.AutoAssignInterval,
		ReminderInterval:   cfg.Sweep.ReminderInterval,
		ScheduleInterval:   cfg.Sweep.ResultsScheduleInterval,
		LiveInterval:       cfg.Sweep.ResultsLiveInterval,
		PreKickoffLead:     cfg.Sweep.ResultsPreKickoffLead,
		IdleInterval:       cfg.Sweep.ResultsIdleInterval,
		Backoff: resilience.Backoff{
			Base:   cfg.Sweep.BackoffBase,
			Max:    cfg.Sweep.BackoffMax,
			Jitter: 0.2,
		},
	}, logger.Named("sweeps"))

	anubisClient := anubis.NewClient(anubis.ClientConfig{
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectURL,
		AdminKey:       cfg.AnubisAdminKey,
		Timeout:        cfg.AnubisTimeout,
		CacheTTL:       cfg.AnubisCacheTTL,
		CacheMaxSize:   cfg.AnubisCacheMaxSize,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AnubisCircuitEnabled,
			FailureThreshold: cfg.AnubisCircuitFailureCount,
			OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
		},
	}, logger.Named("anubis"))

	handler := httpapi.NewHandler(
		seasonSvc,
		pickSvc,
		ruleSvc,
		eliminationSvc,
		autoAssignSvc,
		standingsSvc,
		sweeps,
		logger,
	)
	router := httpapi.NewRouter(handler, anubisClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken, cfg.MetricsEnabled)

	logger.Info("application assembled",
		"storage_backend", cfg.StorageBackend,
		"cache_enabled", cfg.CacheEnabled,
		"qstash_enabled", cfg.QStashEnabled,
		"season_half_boundary", halves.Boundary,
	)

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Sweeps: sweeps,
		db:     db,
	}, nil
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func buildNotifier(cfg config.Config, logger *logging.Logger) notification.Notifier {
	if !cfg.QStashEnabled {
		return notifier.NewLogNotifier(logger.Named("notifier"))
	}
	return notifier.NewQStashNotifier(notifier.QStashConfig{
		BaseURL:   cfg.QStashBaseURL,
		Token:     cfg.QStashToken,
		TargetURL: cfg.NotificationTargetURL,
		Retries:   cfg.QStashRetries,
		Timeout:   cfg.QStashTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.QStashCircuitEnabled,
			FailureThreshold: cfg.QStashCircuitFailureCount,
			OpenTimeout:      cfg.QStashCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
		},
	}, logger.Named("notifier"))
}
