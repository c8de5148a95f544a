package pick

import (
	"errors"
	"time"
)

var (
	ErrDuplicatePick           = errors.New("pick already exists for gameweek")
	ErrNotFound                = errors.New("pick not found")
	ErrTeamLimitExceeded       = errors.New("team pick limit exceeded")
	ErrOppositionLimitExceeded = errors.New("opposition target limit exceeded")
)

// Pick is one user's team selection for one gameweek. Score fields stay zero
// until the team's fixture is finished.
type Pick struct {
	ID             string
	UserID         string
	SeasonID       string
	GameweekNumber int
	TeamID         string
	Points         int
	GoalsFor       int
	GoalsAgainst   int
	IsAutoAssigned bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Rule caps how often a user may reuse a team, or target the same opposition,
// within one half of a season.
type Rule struct {
	SeasonID                        string
	Half                            int
	MaxTimesTeamCanBePicked         int
	MaxTimesOppositionCanBeTargeted int
}

// Score is the scoring projection of a pick.
type Score struct {
	Points       int
	GoalsFor     int
	GoalsAgainst int
}

func (p Pick) Score() Score {
	return Score{Points: p.Points, GoalsFor: p.GoalsFor, GoalsAgainst: p.GoalsAgainst}
}

type ScoreUpdate struct {
	PickID string
	Score  Score
}
