package postgres

import "time"

type gameweekTableModel struct {
	ID               int64      `db:"id"`
	SeasonID         string     `db:"season_public_id"`
	WeekNumber       int        `db:"week_number"`
	DeadlineAt       time.Time  `db:"deadline_at"`
	IsLocked         bool       `db:"is_locked"`
	EliminationCount int        `db:"elimination_count"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	DeletedAt        *time.Time `db:"deleted_at"`
}

type gameweekInsertModel struct {
	SeasonID         string    `db:"season_public_id"`
	WeekNumber       int       `db:"week_number"`
	DeadlineAt       time.Time `db:"deadline_at"`
	IsLocked         bool      `db:"is_locked"`
	EliminationCount int       `db:"elimination_count"`
}
