package postgres

import (
	"database/sql"
	"time"
)

type participationTableModel struct {
	ID         int64        `db:"id"`
	UserID     string       `db:"user_id"`
	SeasonID   string       `db:"season_public_id"`
	IsApproved bool         `db:"is_approved"`
	ApprovedAt sql.NullTime `db:"approved_at"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
	DeletedAt  *time.Time   `db:"deleted_at"`
}

type participationInsertModel struct {
	UserID     string     `db:"user_id"`
	SeasonID   string     `db:"season_public_id"`
	IsApproved bool       `db:"is_approved"`
	ApprovedAt *time.Time `db:"approved_at"`
	CreatedAt  time.Time  `db:"created_at"`
}
