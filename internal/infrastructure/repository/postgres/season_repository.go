package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	qb "github.com/riskibarqy/survivor-league/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.IsNull("deleted_at")).
		OrderBy("start_date DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list seasons query: %w", err)
	}

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonFromRow(row))
	}
	return out, nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	return r.getOne(ctx, "get season by id", qb.Eq("public_id", seasonID))
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	return r.getOne(ctx, "get active season", qb.Eq("is_active", true))
}

func (r *SeasonRepository) getOne(ctx context.Context, op string, cond qb.Condition) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(cond, qb.IsNull("deleted_at")).
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return seasonFromRow(row), true, nil
}

// Create always inserts inactive; activation goes through Activate.
func (r *SeasonRepository) Create(ctx context.Context, item season.Season) error {
	now := time.Now().UTC()
	model := seasonInsertModel{
		PublicID:   item.ID,
		Name:       item.Name,
		StartDate:  item.StartDate,
		EndDate:    item.EndDate,
		IsActive:   false,
		IsArchived: item.IsArchived,
		CreatedAt:  nonZeroTime(item.CreatedAt, now),
		UpdatedAt:  nonZeroTime(item.UpdatedAt, now),
	}

	query, args, err := qb.InsertModel("seasons", model, "")
	if err != nil {
		return fmt.Errorf("build insert season query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("insert season id=%s: %w", item.ID, season.ErrDuplicate)
		}
		return fmt.Errorf("insert season id=%s: %w", item.ID, err)
	}
	return nil
}

// Activate clears the active flag before setting it so the single-active
// partial index never sees two rows at once.
func (r *SeasonRepository) Activate(ctx context.Context, seasonID string) (season.Season, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return season.Season{}, fmt.Errorf("begin tx activate season: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	selectQuery, selectArgs, err := qb.Select("*").From("seasons").
		Where(qb.Eq("public_id", seasonID), qb.IsNull("deleted_at")).
		Suffix("FOR UPDATE").
		ToSQL()
	if err != nil {
		return season.Season{}, fmt.Errorf("build lock season query: %w", err)
	}

	var row seasonTableModel
	if err := tx.GetContext(ctx, &row, selectQuery, selectArgs...); err != nil {
		if isNotFound(err) {
			return season.Season{}, season.ErrNotFound
		}
		return season.Season{}, fmt.Errorf("lock season id=%s: %w", seasonID, err)
	}
	if row.IsArchived {
		return season.Season{}, season.ErrArchived
	}

	clearQuery, clearArgs, err := qb.Update("seasons").
		Set("is_active", false).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("is_active", true), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return season.Season{}, fmt.Errorf("build clear active season query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return season.Season{}, fmt.Errorf("clear active season: %w", err)
	}

	setQuery, setArgs, err := qb.Update("seasons").
		Set("is_active", true).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", row.ID)).
		ToSQL()
	if err != nil {
		return season.Season{}, fmt.Errorf("build activate season query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, setQuery, setArgs...); err != nil {
		return season.Season{}, fmt.Errorf("activate season id=%s: %w", seasonID, err)
	}

	if err := tx.Commit(); err != nil {
		return season.Season{}, fmt.Errorf("commit activate season tx: %w", err)
	}

	out := seasonFromRow(row)
	out.IsActive = true
	return out, nil
}

func seasonFromRow(row seasonTableModel) season.Season {
	return season.Season{
		ID:         row.PublicID,
		Name:       row.Name,
		StartDate:  row.StartDate.UTC(),
		EndDate:    row.EndDate.UTC(),
		IsActive:   row.IsActive,
		IsArchived: row.IsArchived,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func nonZeroTime(value, fallback time.Time) time.Time {
	if value.IsZero() {
		return fallback
	}
	return value.UTC()
}
