package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/survivor-league/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/survivor-league/internal/platform/querybuilder"
)

// BootstrapSeed loads the demo season into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM seasons WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count seasons for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, s := range memory.SeedSeasons() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO seasons (public_id, name, start_date, end_date, is_active)
VALUES (:public_id, :name, :start_date, :end_date, :is_active)
ON CONFLICT DO NOTHING`, map[string]any{
			"public_id":  s.ID,
			"name":       s.Name,
			"start_date": s.StartDate.UTC(),
			"end_date":   s.EndDate.UTC(),
			"is_active":  s.IsActive,
		})
		if err != nil {
			return fmt.Errorf("bind seed season %s query: %w", s.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed season %s: %w", s.ID, err)
		}
	}

	for _, t := range memory.SeedTeams() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO teams (public_id, name, short, is_active)
VALUES (:public_id, :name, :short, :is_active)
ON CONFLICT DO NOTHING`, map[string]any{
			"public_id": t.ID,
			"name":      t.Name,
			"short":     t.Short,
			"is_active": t.IsActive,
		})
		if err != nil {
			return fmt.Errorf("bind seed team %s query: %w", t.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed team %s: %w", t.ID, err)
		}
	}

	for _, gw := range memory.SeedGameweeks() {
		query, args, err := qb.InsertModel("gameweeks", gameweekInsertModel{
			SeasonID:         gw.SeasonID,
			WeekNumber:       gw.WeekNumber,
			DeadlineAt:       gw.Deadline.UTC(),
			IsLocked:         gw.IsLocked,
			EliminationCount: gw.EliminationCount,
		}, "ON CONFLICT DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed gameweek %d query: %w", gw.WeekNumber, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed gameweek %d: %w", gw.WeekNumber, err)
		}
	}

	for _, f := range memory.SeedFixtures() {
		query, args, err := qb.InsertModel("fixtures", fixtureInsertModel{
			PublicID:   f.ID,
			SeasonID:   f.SeasonID,
			Gameweek:   f.Gameweek,
			HomeTeamID: f.HomeTeamID,
			AwayTeamID: f.AwayTeamID,
			KickoffAt:  f.KickoffAt.UTC(),
			HomeScore:  intPtrToNullInt64(f.HomeScore),
			AwayScore:  intPtrToNullInt64(f.AwayScore),
			Status:     f.Status,
			FinishedAt: f.FinishedAt,
		}, "ON CONFLICT DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed fixture %s query: %w", f.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed fixture %s: %w", f.ID, err)
		}
	}

	for _, rule := range memory.SeedPickRules() {
		query, args, err := qb.InsertModel("pick_rules", pickRuleInsertModel{
			SeasonID:                        rule.SeasonID,
			Half:                            rule.Half,
			MaxTimesTeamCanBePicked:         rule.MaxTimesTeamCanBePicked,
			MaxTimesOppositionCanBeTargeted: rule.MaxTimesOppositionCanBeTargeted,
		}, "ON CONFLICT DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed pick rule half=%d query: %w", rule.Half, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed pick rule half=%d: %w", rule.Half, err)
		}
	}

	for _, item := range memory.SeedParticipations() {
		query, args, err := qb.InsertModel("season_participants", participationInsertModel{
			UserID:     item.UserID,
			SeasonID:   item.SeasonID,
			IsApproved: item.IsApproved,
			ApprovedAt: item.ApprovedAt,
			CreatedAt:  item.CreatedAt,
		}, "ON CONFLICT DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed participant user=%s query: %w", item.UserID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed participant user=%s: %w", item.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
