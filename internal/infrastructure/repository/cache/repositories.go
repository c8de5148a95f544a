package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/domain/team"
	basecache "github.com/riskibarqy/survivor-league/internal/platform/cache"
)

type SeasonRepository struct {
	next  season.Repository
	cache *basecache.Store
}

func NewSeasonRepository(next season.Repository, cache *basecache.Store) *SeasonRepository {
	return &SeasonRepository{next: next, cache: cache}
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	v, err := r.cache.GetOrLoad(ctx, "season:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]season.Season(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]season.Season)
	return append([]season.Season(nil), items...), nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "season:id:"+seasonID, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, seasonID)
		if err != nil {
			return nil, err
		}
		return cachedSeason{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeason)
	return cached.value, cached.exists, nil
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "season:active", func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetActive(ctx)
		if err != nil {
			return nil, err
		}
		return cachedSeason{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeason)
	return cached.value, cached.exists, nil
}

func (r *SeasonRepository) Create(ctx context.Context, item season.Season) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "season:")
	return nil
}

func (r *SeasonRepository) Activate(ctx context.Context, seasonID string) (season.Season, error) {
	item, err := r.next.Activate(ctx, seasonID)
	if err != nil {
		return season.Season{}, err
	}
	r.cache.DeletePrefix(ctx, "season:")
	return item, nil
}

type cachedSeason struct {
	value  season.Season
	exists bool
}

type GameweekRepository struct {
	next  gameweek.Repository
	cache *basecache.Store
}

func NewGameweekRepository(next gameweek.Repository, cache *basecache.Store) *GameweekRepository {
	return &GameweekRepository{next: next, cache: cache}
}

func (r *GameweekRepository) ListBySeason(ctx context.Context, seasonID string) ([]gameweek.Gameweek, error) {
	v, err := r.cache.GetOrLoad(ctx, gameweekSeasonPrefix(seasonID)+"list", func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySeason(ctx, seasonID)
		if err != nil {
			return nil, err
		}
		return append([]gameweek.Gameweek(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]gameweek.Gameweek)
	return append([]gameweek.Gameweek(nil), items...), nil
}

func (r *GameweekRepository) Get(ctx context.Context, seasonID string, weekNumber int) (gameweek.Gameweek, bool, error) {
	key := gameweekSeasonPrefix(seasonID) + "week:" + strconv.Itoa(weekNumber)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.Get(ctx, seasonID, weekNumber)
		if err != nil {
			return nil, err
		}
		return cachedGameweek{value: item, exists: exists}, nil
	})
	if err != nil {
		return gameweek.Gameweek{}, false, err
	}

	cached, _ := v.(cachedGameweek)
	return cached.value, cached.exists, nil
}

// ListDeadlinePassed depends on the clock, so it always reads through.
func (r *GameweekRepository) ListDeadlinePassed(ctx context.Context, seasonID string, now time.Time) ([]gameweek.Gameweek, error) {
	return r.next.ListDeadlinePassed(ctx, seasonID, now)
}

func (r *GameweekRepository) UpdateEliminationCount(ctx context.Context, seasonID string, weekNumber, count int) error {
	if err := r.next.UpdateEliminationCount(ctx, seasonID, weekNumber, count); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, gameweekSeasonPrefix(seasonID))
	return nil
}

func gameweekSeasonPrefix(seasonID string) string {
	return "gameweek:season:" + seasonID + ":"
}

type cachedGameweek struct {
	value  gameweek.Gameweek
	exists bool
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, "team:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "team:id:"+teamID, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByID)
	return cached.value, cached.exists, nil
}

type cachedTeamByID struct {
	value  team.Team
	exists bool
}

type PickRuleRepository struct {
	next  pick.RuleRepository
	cache *basecache.Store
}

func NewPickRuleRepository(next pick.RuleRepository, cache *basecache.Store) *PickRuleRepository {
	return &PickRuleRepository{next: next, cache: cache}
}

func (r *PickRuleRepository) Get(ctx context.Context, seasonID string, half int) (pick.Rule, bool, error) {
	key := pickRuleSeasonPrefix(seasonID) + "half:" + strconv.Itoa(half)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.Get(ctx, seasonID, half)
		if err != nil {
			return nil, err
		}
		return cachedPickRule{value: item, exists: exists}, nil
	})
	if err != nil {
		return pick.Rule{}, false, err
	}

	cached, _ := v.(cachedPickRule)
	return cached.value, cached.exists, nil
}

func (r *PickRuleRepository) ListBySeason(ctx context.Context, seasonID string) ([]pick.Rule, error) {
	v, err := r.cache.GetOrLoad(ctx, pickRuleSeasonPrefix(seasonID)+"list", func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySeason(ctx, seasonID)
		if err != nil {
			return nil, err
		}
		return append([]pick.Rule(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]pick.Rule)
	return append([]pick.Rule(nil), items...), nil
}

func (r *PickRuleRepository) Upsert(ctx context.Context, rule pick.Rule) error {
	if err := r.next.Upsert(ctx, rule); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, pickRuleSeasonPrefix(rule.SeasonID))
	return nil
}

func pickRuleSeasonPrefix(seasonID string) string {
	return "pick-rule:season:" + seasonID + ":"
}

type cachedPickRule struct {
	value  pick.Rule
	exists bool
}
