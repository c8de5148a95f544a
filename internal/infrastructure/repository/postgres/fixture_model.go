package postgres

import (
	"database/sql"
	"time"
)

type fixtureTableModel struct {
	ID         int64         `db:"id"`
	PublicID   string        `db:"public_id"`
	SeasonID   string        `db:"season_public_id"`
	Gameweek   int           `db:"gameweek"`
	HomeTeamID string        `db:"home_team_public_id"`
	AwayTeamID string        `db:"away_team_public_id"`
	KickoffAt  time.Time     `db:"kickoff_at"`
	HomeScore  sql.NullInt64 `db:"home_score"`
	AwayScore  sql.NullInt64 `db:"away_score"`
	Status     string        `db:"status"`
	FinishedAt sql.NullTime  `db:"finished_at"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
	DeletedAt  *time.Time    `db:"deleted_at"`
}

type fixtureInsertModel struct {
	PublicID   string        `db:"public_id"`
	SeasonID   string        `db:"season_public_id"`
	Gameweek   int           `db:"gameweek"`
	HomeTeamID string        `db:"home_team_public_id"`
	AwayTeamID string        `db:"away_team_public_id"`
	KickoffAt  time.Time     `db:"kickoff_at"`
	HomeScore  sql.NullInt64 `db:"home_score"`
	AwayScore  sql.NullInt64 `db:"away_score"`
	Status     string        `db:"status"`
	FinishedAt *time.Time    `db:"finished_at"`
}
