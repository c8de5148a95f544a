package postgres

import "time"

type eliminationTableModel struct {
	ID             int64     `db:"id"`
	PublicID       string    `db:"public_id"`
	UserID         string    `db:"user_id"`
	SeasonID       string    `db:"season_public_id"`
	GameweekNumber int       `db:"gameweek_number"`
	Position       int       `db:"position"`
	TotalPoints    int       `db:"total_points"`
	ActorID        string    `db:"actor_id"`
	EliminatedAt   time.Time `db:"eliminated_at"`
}

type eliminationInsertModel struct {
	PublicID       string    `db:"public_id"`
	UserID         string    `db:"user_id"`
	SeasonID       string    `db:"season_public_id"`
	GameweekNumber int       `db:"gameweek_number"`
	Position       int       `db:"position"`
	TotalPoints    int       `db:"total_points"`
	ActorID        string    `db:"actor_id"`
	EliminatedAt   time.Time `db:"eliminated_at"`
}

type eliminationBatchInsertModel struct {
	SeasonID        string    `db:"season_public_id"`
	GameweekNumber  int       `db:"gameweek_number"`
	ActorID         string    `db:"actor_id"`
	EliminatedCount int       `db:"eliminated_count"`
	ProcessedAt     time.Time `db:"processed_at"`
}
