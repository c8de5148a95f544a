package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	qb "github.com/riskibarqy/survivor-league/internal/platform/querybuilder"
)

type ParticipationRepository struct {
	db *sqlx.DB
}

func NewParticipationRepository(db *sqlx.DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

func (r *ParticipationRepository) Get(ctx context.Context, userID, seasonID string) (participation.Participation, bool, error) {
	query, args, err := qb.Select("*").From("season_participants").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("season_public_id", seasonID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return participation.Participation{}, false, fmt.Errorf("build get participation query: %w", err)
	}

	var row participationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participation.Participation{}, false, nil
		}
		return participation.Participation{}, false, fmt.Errorf("get participation user=%s season=%s: %w", userID, seasonID, err)
	}
	return participationFromRow(row), true, nil
}

func (r *ParticipationRepository) ListApproved(ctx context.Context, seasonID string) ([]participation.Participation, error) {
	query, args, err := qb.Select("*").From("season_participants").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.Eq("is_approved", true),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list approved participants query: %w", err)
	}

	var rows []participationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list approved participants season=%s: %w", seasonID, err)
	}

	out := make([]participation.Participation, 0, len(rows))
	for _, row := range rows {
		out = append(out, participationFromRow(row))
	}
	return out, nil
}

func (r *ParticipationRepository) Upsert(ctx context.Context, item participation.Participation) error {
	createdAt := item.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	model := participationInsertModel{
		UserID:     item.UserID,
		SeasonID:   item.SeasonID,
		IsApproved: item.IsApproved,
		ApprovedAt: item.ApprovedAt,
		CreatedAt:  createdAt,
	}

	query, args, err := qb.InsertModel("season_participants", model, `ON CONFLICT (user_id, season_public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    is_approved = EXCLUDED.is_approved,
    approved_at = EXCLUDED.approved_at,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert participation query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert participation user=%s season=%s: %w", item.UserID, item.SeasonID, err)
	}
	return nil
}

func participationFromRow(row participationTableModel) participation.Participation {
	return participation.Participation{
		UserID:     row.UserID,
		SeasonID:   row.SeasonID,
		IsApproved: row.IsApproved,
		ApprovedAt: nullTimeToTimePtr(row.ApprovedAt),
		CreatedAt:  row.CreatedAt.UTC(),
	}
}
