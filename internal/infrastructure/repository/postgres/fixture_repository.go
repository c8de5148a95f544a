package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
	qb "github.com/riskibarqy/survivor-league/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) ListBySeason(ctx context.Context, seasonID string) ([]fixture.Fixture, error) {
	return r.list(ctx, "select fixtures by season",
		qb.Eq("season_public_id", seasonID),
		qb.IsNull("deleted_at"),
	)
}

func (r *FixtureRepository) ListByGameweek(ctx context.Context, seasonID string, week int) ([]fixture.Fixture, error) {
	return r.list(ctx, "select fixtures by gameweek",
		qb.Eq("season_public_id", seasonID),
		qb.Eq("gameweek", week),
		qb.IsNull("deleted_at"),
	)
}

func (r *FixtureRepository) list(ctx context.Context, op string, conds ...qb.Condition) ([]fixture.Fixture, error) {
	query, args, err := qb.Select("*").From("fixtures").
		Where(conds...).
		OrderBy("gameweek", "kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixture.Fixture{
			ID:         row.PublicID,
			SeasonID:   row.SeasonID,
			Gameweek:   row.Gameweek,
			HomeTeamID: row.HomeTeamID,
			AwayTeamID: row.AwayTeamID,
			KickoffAt:  row.KickoffAt.UTC(),
			HomeScore:  nullInt64ToIntPtr(row.HomeScore),
			AwayScore:  nullInt64ToIntPtr(row.AwayScore),
			Status:     fixture.NormalizeStatus(row.Status),
			FinishedAt: nullTimeToTimePtr(row.FinishedAt),
		})
	}
	return out, nil
}
