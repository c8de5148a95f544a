package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	qb "github.com/riskibarqy/survivor-league/internal/platform/querybuilder"
)

type GameweekRepository struct {
	db *sqlx.DB
}

func NewGameweekRepository(db *sqlx.DB) *GameweekRepository {
	return &GameweekRepository{db: db}
}

func (r *GameweekRepository) ListBySeason(ctx context.Context, seasonID string) ([]gameweek.Gameweek, error) {
	return r.list(ctx, "list gameweeks by season",
		qb.Eq("season_public_id", seasonID),
		qb.IsNull("deleted_at"),
	)
}

func (r *GameweekRepository) ListDeadlinePassed(ctx context.Context, seasonID string, now time.Time) ([]gameweek.Gameweek, error) {
	return r.list(ctx, "list deadline passed gameweeks",
		qb.Eq("season_public_id", seasonID),
		qb.Lte("deadline_at", now.UTC()),
		qb.IsNull("deleted_at"),
	)
}

func (r *GameweekRepository) list(ctx context.Context, op string, conds ...qb.Condition) ([]gameweek.Gameweek, error) {
	query, args, err := qb.Select("*").From("gameweeks").
		Where(conds...).
		OrderBy("week_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []gameweekTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]gameweek.Gameweek, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameweekFromRow(row))
	}
	return out, nil
}

func (r *GameweekRepository) Get(ctx context.Context, seasonID string, weekNumber int) (gameweek.Gameweek, bool, error) {
	query, args, err := qb.Select("*").From("gameweeks").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.Eq("week_number", weekNumber),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return gameweek.Gameweek{}, false, fmt.Errorf("build get gameweek query: %w", err)
	}

	var row gameweekTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gameweek.Gameweek{}, false, nil
		}
		return gameweek.Gameweek{}, false, fmt.Errorf("get gameweek season=%s week=%d: %w", seasonID, weekNumber, err)
	}
	return gameweekFromRow(row), true, nil
}

func (r *GameweekRepository) UpdateEliminationCount(ctx context.Context, seasonID string, weekNumber, count int) error {
	query, args, err := qb.Update("gameweeks").
		Set("elimination_count", count).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.Eq("week_number", weekNumber),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update elimination count query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update elimination count season=%s week=%d: %w", seasonID, weekNumber, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("gameweek season=%s week=%d not found", seasonID, weekNumber)
	}
	return nil
}

func gameweekFromRow(row gameweekTableModel) gameweek.Gameweek {
	return gameweek.Gameweek{
		SeasonID:         row.SeasonID,
		WeekNumber:       row.WeekNumber,
		Deadline:         row.DeadlineAt.UTC(),
		IsLocked:         row.IsLocked,
		EliminationCount: row.EliminationCount,
	}
}
