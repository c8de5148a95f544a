package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	qb "github.com/riskibarqy/survivor-league/internal/platform/querybuilder"
)

const pickSlotConstraint = "picks_user_season_gameweek_key"

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) GetByID(ctx context.Context, pickID string) (pick.Pick, bool, error) {
	return r.getOne(ctx, "get pick by id", qb.Eq("public_id", pickID))
}

func (r *PickRepository) GetByUserGameweek(ctx context.Context, userID, seasonID string, week int) (pick.Pick, bool, error) {
	return r.getOne(ctx, "get pick by user gameweek",
		qb.Eq("user_id", userID),
		qb.Eq("season_public_id", seasonID),
		qb.Eq("gameweek_number", week),
	)
}

func (r *PickRepository) getOne(ctx context.Context, op string, conds ...qb.Condition) (pick.Pick, bool, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(conds...).
		Limit(1).
		ToSQL()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return pickFromRow(row), true, nil
}

func (r *PickRepository) ListBySeason(ctx context.Context, seasonID string) ([]pick.Pick, error) {
	return r.list(ctx, "list picks by season", qb.Eq("season_public_id", seasonID))
}

func (r *PickRepository) ListByUser(ctx context.Context, userID, seasonID string) ([]pick.Pick, error) {
	return r.list(ctx, "list picks by user",
		qb.Eq("user_id", userID),
		qb.Eq("season_public_id", seasonID),
	)
}

func (r *PickRepository) ListByGameweek(ctx context.Context, seasonID string, week int) ([]pick.Pick, error) {
	return r.list(ctx, "list picks by gameweek",
		qb.Eq("season_public_id", seasonID),
		qb.Eq("gameweek_number", week),
	)
}

func (r *PickRepository) list(ctx context.Context, op string, conds ...qb.Condition) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(conds...).
		OrderBy("gameweek_number", "created_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}
	return out, nil
}

// Create relies on picks_user_season_gameweek_key so concurrent submissions
// for the same slot resolve to exactly one row.
func (r *PickRepository) Create(ctx context.Context, item pick.Pick) error {
	model := pickInsertModel{
		PublicID:       item.ID,
		UserID:         item.UserID,
		SeasonID:       item.SeasonID,
		GameweekNumber: item.GameweekNumber,
		TeamID:         item.TeamID,
		Points:         item.Points,
		GoalsFor:       item.GoalsFor,
		GoalsAgainst:   item.GoalsAgainst,
		IsAutoAssigned: item.IsAutoAssigned,
		CreatedAt:      item.CreatedAt.UTC(),
		UpdatedAt:      item.UpdatedAt.UTC(),
	}

	query, args, err := qb.InsertModel("picks", model, "")
	if err != nil {
		return fmt.Errorf("build insert pick query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, pickSlotConstraint) {
			return pick.ErrDuplicatePick
		}
		return fmt.Errorf("insert pick user=%s season=%s week=%d: %w", item.UserID, item.SeasonID, item.GameweekNumber, err)
	}
	return nil
}

func (r *PickRepository) UpdateTeam(ctx context.Context, pickID, teamID string, updatedAt time.Time) error {
	query, args, err := qb.Update("picks").
		Set("team_public_id", teamID).
		Set("updated_at", updatedAt.UTC()).
		Where(qb.Eq("public_id", pickID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update pick team query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update pick team id=%s: %w", pickID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return pick.ErrNotFound
	}
	return nil
}

func (r *PickRepository) Delete(ctx context.Context, pickID string) error {
	query, args, err := qb.DeleteFrom("picks").
		Where(qb.Eq("public_id", pickID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete pick query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete pick id=%s: %w", pickID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return pick.ErrNotFound
	}
	return nil
}

// UpdateScores writes only picks whose stored score differs and returns how
// many rows changed.
func (r *PickRepository) UpdateScores(ctx context.Context, updates []pick.ScoreUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx update pick scores: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	updated := 0
	for _, update := range updates {
		query, args, err := qb.Update("picks").
			Set("points", update.Score.Points).
			Set("goals_for", update.Score.GoalsFor).
			Set("goals_against", update.Score.GoalsAgainst).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("public_id", update.PickID),
				qb.Expr("(points, goals_for, goals_against) IS DISTINCT FROM (?, ?, ?)",
					update.Score.Points, update.Score.GoalsFor, update.Score.GoalsAgainst),
			).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build update pick score query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("update pick score id=%s: %w", update.PickID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("read affected rows pick=%s: %w", update.PickID, err)
		}
		updated += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit update pick scores tx: %w", err)
	}
	return updated, nil
}

func pickFromRow(row pickTableModel) pick.Pick {
	return pick.Pick{
		ID:             row.PublicID,
		UserID:         row.UserID,
		SeasonID:       row.SeasonID,
		GameweekNumber: row.GameweekNumber,
		TeamID:         row.TeamID,
		Points:         row.Points,
		GoalsFor:       row.GoalsFor,
		GoalsAgainst:   row.GoalsAgainst,
		IsAutoAssigned: row.IsAutoAssigned,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

type PickRuleRepository struct {
	db *sqlx.DB
}

func NewPickRuleRepository(db *sqlx.DB) *PickRuleRepository {
	return &PickRuleRepository{db: db}
}

func (r *PickRuleRepository) Get(ctx context.Context, seasonID string, half int) (pick.Rule, bool, error) {
	query, args, err := qb.Select("*").From("pick_rules").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.Eq("half", half),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return pick.Rule{}, false, fmt.Errorf("build get pick rule query: %w", err)
	}

	var row pickRuleTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pick.Rule{}, false, nil
		}
		return pick.Rule{}, false, fmt.Errorf("get pick rule season=%s half=%d: %w", seasonID, half, err)
	}
	return pickRuleFromRow(row), true, nil
}

func (r *PickRuleRepository) ListBySeason(ctx context.Context, seasonID string) ([]pick.Rule, error) {
	query, args, err := qb.Select("*").From("pick_rules").
		Where(qb.Eq("season_public_id", seasonID)).
		OrderBy("half").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pick rules query: %w", err)
	}

	var rows []pickRuleTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pick rules season=%s: %w", seasonID, err)
	}

	out := make([]pick.Rule, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickRuleFromRow(row))
	}
	return out, nil
}

func (r *PickRuleRepository) Upsert(ctx context.Context, rule pick.Rule) error {
	model := pickRuleInsertModel{
		SeasonID:                        rule.SeasonID,
		Half:                            rule.Half,
		MaxTimesTeamCanBePicked:         rule.MaxTimesTeamCanBePicked,
		MaxTimesOppositionCanBeTargeted: rule.MaxTimesOppositionCanBeTargeted,
	}
	query, args, err := qb.InsertModel("pick_rules", model, `ON CONFLICT (season_public_id, half)
DO UPDATE SET
    max_times_team_can_be_picked = EXCLUDED.max_times_team_can_be_picked,
    max_times_opposition_can_be_targeted = EXCLUDED.max_times_opposition_can_be_targeted,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert pick rule query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert pick rule season=%s half=%d: %w", rule.SeasonID, rule.Half, err)
	}
	return nil
}

func pickRuleFromRow(row pickRuleTableModel) pick.Rule {
	return pick.Rule{
		SeasonID:                        row.SeasonID,
		Half:                            row.Half,
		MaxTimesTeamCanBePicked:         row.MaxTimesTeamCanBePicked,
		MaxTimesOppositionCanBeTargeted: row.MaxTimesOppositionCanBeTargeted,
	}
}
