package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	qb "github.com/riskibarqy/survivor-league/internal/platform/querybuilder"
)

const eliminationBatchConstraint = "elimination_batches_pkey"

type EliminationRepository struct {
	db *sqlx.DB
}

func NewEliminationRepository(db *sqlx.DB) *EliminationRepository {
	return &EliminationRepository{db: db}
}

func (r *EliminationRepository) ListBySeason(ctx context.Context, seasonID string) ([]elimination.Elimination, error) {
	return r.list(ctx, "list eliminations by season", qb.Eq("season_public_id", seasonID))
}

func (r *EliminationRepository) ListByGameweek(ctx context.Context, seasonID string, week int) ([]elimination.Elimination, error) {
	return r.list(ctx, "list eliminations by gameweek",
		qb.Eq("season_public_id", seasonID),
		qb.Eq("gameweek_number", week),
	)
}

func (r *EliminationRepository) list(ctx context.Context, op string, conds ...qb.Condition) ([]elimination.Elimination, error) {
	query, args, err := qb.Select("*").From("eliminations").
		Where(conds...).
		OrderBy("gameweek_number", "position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []eliminationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]elimination.Elimination, 0, len(rows))
	for _, row := range rows {
		out = append(out, elimination.Elimination{
			ID:             row.PublicID,
			UserID:         row.UserID,
			SeasonID:       row.SeasonID,
			GameweekNumber: row.GameweekNumber,
			Position:       row.Position,
			TotalPoints:    row.TotalPoints,
			EliminatedAt:   row.EliminatedAt.UTC(),
			ActorID:        row.ActorID,
		})
	}
	return out, nil
}

func (r *EliminationRepository) IsProcessed(ctx context.Context, seasonID string, week int) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("elimination_batches").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.Eq("gameweek_number", week),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build elimination batch exists query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check elimination batch season=%s week=%d: %w", seasonID, week, err)
	}
	return count > 0, nil
}

// SaveBatch inserts the batch marker first; its primary key makes a second
// run for the same gameweek fail before any elimination row is written.
func (r *EliminationRepository) SaveBatch(ctx context.Context, batch elimination.Batch) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save elimination batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	marker := eliminationBatchInsertModel{
		SeasonID:        batch.SeasonID,
		GameweekNumber:  batch.GameweekNumber,
		ActorID:         batch.ActorID,
		EliminatedCount: len(batch.Items),
		ProcessedAt:     batch.ProcessedAt.UTC(),
	}
	markerQuery, markerArgs, err := qb.InsertModel("elimination_batches", marker, "")
	if err != nil {
		return fmt.Errorf("build insert elimination batch query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, markerQuery, markerArgs...); err != nil {
		if isUniqueViolation(err, eliminationBatchConstraint) {
			return elimination.ErrAlreadyProcessed
		}
		return fmt.Errorf("insert elimination batch season=%s week=%d: %w", batch.SeasonID, batch.GameweekNumber, err)
	}

	for _, item := range batch.Items {
		model := eliminationInsertModel{
			PublicID:       item.ID,
			UserID:         item.UserID,
			SeasonID:       item.SeasonID,
			GameweekNumber: item.GameweekNumber,
			Position:       item.Position,
			TotalPoints:    item.TotalPoints,
			ActorID:        item.ActorID,
			EliminatedAt:   item.EliminatedAt.UTC(),
		}
		query, args, err := qb.InsertModel("eliminations", model, "")
		if err != nil {
			return fmt.Errorf("build insert elimination query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert elimination user=%s season=%s: %w", item.UserID, item.SeasonID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save elimination batch tx: %w", err)
	}
	return nil
}
