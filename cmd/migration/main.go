package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/survivor-league/internal/config"
	"github.com/riskibarqy/survivor-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
)

var logger = logging.NewConsole(logging.ParseLevel(os.Getenv("APP_LOG_LEVEL"))).Named("migration")

type command struct {
	usage string
	run   func(m *migrate.Migrate, args []string) error
}

// seed runs against the database directly and never builds a migrator.
var commands = map[string]command{
	"up":      {usage: "up", run: up},
	"down":    {usage: "down [steps=1]", run: down},
	"version": {usage: "version", run: version},
	"force":   {usage: "force <version>", run: force},
	"goto":    {usage: "goto <version>", run: gotoVersion},
	"seed":    {usage: "seed"},
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
	}
	name := strings.ToLower(strings.TrimSpace(os.Args[1]))
	cmd, ok := commands[name]
	if !ok {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config", "error", err)
	}
	if strings.TrimSpace(cfg.DBURL) == "" {
		fatal("DB_URL is required")
	}
	dsn := cfg.PostgresDSN()

	if name == "seed" {
		if err := seed(dsn); err != nil {
			fatal("bootstrap seed failed", "error", err)
		}
		logger.Info("bootstrap seed applied")
		_ = logger.Sync()
		return
	}

	dir, err := migrationsDir()
	if err != nil {
		fatal("resolve migrations dir", "error", err)
	}
	m, err := migrate.New("file://"+filepath.ToSlash(dir), dsn)
	if err != nil {
		fatal("create migrator", "error", err)
	}

	runErr := cmd.run(m, os.Args[2:])
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
	}
	switch {
	case errors.Is(runErr, migrate.ErrNoChange):
		logger.Info("no migration changes")
	case runErr != nil:
		fatal(name+" failed", "error", runErr)
	}
	_ = logger.Sync()
}

func up(m *migrate.Migrate, _ []string) error {
	if err := m.Up(); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func down(m *migrate.Migrate, args []string) error {
	steps := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || n <= 0 {
			return fmt.Errorf("down steps must be a positive integer, got %q", args[0])
		}
		steps = n
	}
	if err := m.Steps(-steps); err != nil {
		return err
	}
	logger.Info("migrations rolled back", "steps", steps)
	return nil
}

func version(m *migrate.Migrate, _ []string) error {
	v, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Println("version: none\ndirty: false")
		return nil
	case err != nil:
		return err
	}
	fmt.Printf("version: %d\ndirty: %t\n", v, dirty)
	return nil
}

func force(m *migrate.Migrate, args []string) error {
	v, err := versionArg(args)
	if err != nil {
		return err
	}
	if err := m.Force(int(v)); err != nil {
		return err
	}
	logger.Info("forced migration version", "version", v)
	return nil
}

func gotoVersion(m *migrate.Migrate, args []string) error {
	v, err := versionArg(args)
	if err != nil {
		return err
	}
	if err := m.Migrate(v); err != nil {
		return err
	}
	logger.Info("migrated", "version", v)
	return nil
}

func versionArg(args []string) (uint, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("a target version argument is required")
	}
	v, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 31)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	return uint(v), nil
}

// seed inserts the demo season, teams, gameweeks and pick rules into an
// empty database.
func seed(dsn string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	return postgres.BootstrapSeed(ctx, db)
}

// migrationsDir picks the first existing directory among MIGRATIONS_DIR and
// the usual checkout and container paths.
func migrationsDir() (string, error) {
	candidates := []string{os.Getenv("MIGRATIONS_DIR"), "./db/migrations", "/app/db/migrations"}
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("no migrations directory found in %v", candidates)
}

func fatal(msg string, args ...any) {
	logger.Error(msg, args...)
	_ = logger.Sync()
	os.Exit(1)
}

func usage() {
	bin := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <command> [args]\ncommands:\n", bin)
	for _, name := range []string{"up", "down", "version", "force", "goto", "seed"} {
		fmt.Fprintf(os.Stderr, "  %s %s\n", bin, commands[name].usage)
	}
	os.Exit(2)
}
