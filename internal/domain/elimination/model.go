package elimination

import (
	"errors"
	"sort"
	"time"
)

// SystemActorID marks eliminations triggered without an administrator.
const SystemActorID = "system"

var (
	ErrAlreadyProcessed = errors.New("gameweek eliminations already processed")
	ErrNoEliminations   = errors.New("gameweek has no elimination count configured")
)

// Elimination records that a user was knocked out after a gameweek.
type Elimination struct {
	ID             string
	UserID         string
	SeasonID       string
	GameweekNumber int
	Position       int
	TotalPoints    int
	EliminatedAt   time.Time
	ActorID        string
}

// Batch is the set of eliminations written for one (season, gameweek).
type Batch struct {
	SeasonID       string
	GameweekNumber int
	ActorID        string
	ProcessedAt    time.Time
	Items          []Elimination
}

// Total is a user's cumulative points up to a gameweek.
type Total struct {
	UserID string
	Points int
}

// SelectBottom orders totals by points ascending, ties by user id ascending, and
// returns the first count entries. The caller numbers positions from the slice
// order.
func SelectBottom(totals []Total, count int) []Total {
	if count <= 0 || len(totals) == 0 {
		return nil
	}
	ordered := append([]Total(nil), totals...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Points != ordered[j].Points {
			return ordered[i].Points < ordered[j].Points
		}
		return ordered[i].UserID < ordered[j].UserID
	})
	if count > len(ordered) {
		count = len(ordered)
	}
	return ordered[:count]
}

// EliminatedUsers indexes eliminations by user id.
func EliminatedUsers(items []Elimination) map[string]Elimination {
	out := make(map[string]Elimination, len(items))
	for _, item := range items {
		out[item.UserID] = item
	}
	return out
}
