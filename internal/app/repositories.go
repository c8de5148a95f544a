package app

import (
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/survivor-league/internal/config"
	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/domain/team"
	"github.com/riskibarqy/survivor-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/survivor-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/survivor-league/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/survivor-league/internal/platform/cache"
)

type repositories struct {
	seasons        season.Repository
	gameweeks      gameweek.Repository
	teams          team.Repository
	fixtures       fixture.Repository
	participations participation.Repository
	picks          pick.Repository
	rules          pick.RuleRepository
	eliminations   elimination.Repository
	dispatches     jobscheduler.Repository
}

// buildRepositories picks postgres when db is set, otherwise the seeded
// in-memory stores. Read-mostly repositories get the TTL cache on top.
func buildRepositories(cfg config.Config, db *sqlx.DB) repositories {
	var repos repositories
	if db != nil {
		repos = repositories{
			seasons:        postgres.NewSeasonRepository(db),
			gameweeks:      postgres.NewGameweekRepository(db),
			teams:          postgres.NewTeamRepository(db),
			fixtures:       postgres.NewFixtureRepository(db),
			participations: postgres.NewParticipationRepository(db),
			picks:          postgres.NewPickRepository(db),
			rules:          postgres.NewPickRuleRepository(db),
			eliminations:   postgres.NewEliminationRepository(db),
			dispatches:     postgres.NewSweepRunRepository(db),
		}
	} else {
		repos = repositories{
			seasons:        memory.NewSeasonRepository(memory.SeedSeasons()),
			gameweeks:      memory.NewGameweekRepository(memory.SeedGameweeks()),
			teams:          memory.NewTeamRepository(memory.SeedTeams()),
			fixtures:       memory.NewFixtureRepository(memory.SeedFixtures()),
			participations: memory.NewParticipationRepository(memory.SeedParticipations()),
			picks:          memory.NewPickRepository(),
			rules:          memory.NewPickRuleRepository(memory.SeedPickRules()),
			eliminations:   memory.NewEliminationRepository(),
			dispatches:     memory.NewSweepRunRepository(),
		}
	}

	if !cfg.CacheEnabled {
		return repos
	}

	store := basecache.NewStore(cfg.CacheTTL)
	repos.seasons = cache.NewSeasonRepository(repos.seasons, store)
	repos.gameweeks = cache.NewGameweekRepository(repos.gameweeks, store)
	repos.teams = cache.NewTeamRepository(repos.teams, store)
	repos.rules = cache.NewPickRuleRepository(repos.rules, store)
	return repos
}
