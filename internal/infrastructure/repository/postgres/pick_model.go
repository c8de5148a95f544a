package postgres

import "time"

type pickTableModel struct {
	ID             int64     `db:"id"`
	PublicID       string    `db:"public_id"`
	UserID         string    `db:"user_id"`
	SeasonID       string    `db:"season_public_id"`
	GameweekNumber int       `db:"gameweek_number"`
	TeamID         string    `db:"team_public_id"`
	Points         int       `db:"points"`
	GoalsFor       int       `db:"goals_for"`
	GoalsAgainst   int       `db:"goals_against"`
	IsAutoAssigned bool      `db:"is_auto_assigned"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type pickInsertModel struct {
	PublicID       string    `db:"public_id"`
	UserID         string    `db:"user_id"`
	SeasonID       string    `db:"season_public_id"`
	GameweekNumber int       `db:"gameweek_number"`
	TeamID         string    `db:"team_public_id"`
	Points         int       `db:"points"`
	GoalsFor       int       `db:"goals_for"`
	GoalsAgainst   int       `db:"goals_against"`
	IsAutoAssigned bool      `db:"is_auto_assigned"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type pickRuleTableModel struct {
	ID                              int64     `db:"id"`
	SeasonID                        string    `db:"season_public_id"`
	Half                            int       `db:"half"`
	MaxTimesTeamCanBePicked         int       `db:"max_times_team_can_be_picked"`
	MaxTimesOppositionCanBeTargeted int       `db:"max_times_opposition_can_be_targeted"`
	CreatedAt                       time.Time `db:"created_at"`
	UpdatedAt                       time.Time `db:"updated_at"`
}

type pickRuleInsertModel struct {
	SeasonID                        string `db:"season_public_id"`
	Half                            int    `db:"half"`
	MaxTimesTeamCanBePicked         int    `db:"max_times_team_can_be_picked"`
	MaxTimesOppositionCanBeTargeted int    `db:"max_times_opposition_can_be_targeted"`
}
