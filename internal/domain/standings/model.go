package standings

import (
	"sort"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
)

// Entry is one user's leaderboard row. Position and Rank carry the same value.
type Entry struct {
	UserID              string
	Position            int
	Rank                int
	TotalPoints         int
	PicksMade           int
	Wins                int
	Draws               int
	Losses              int
	GoalsFor            int
	GoalsAgainst        int
	GoalDifference      int
	IsEliminated        bool
	EliminatedGameweek  int
	EliminationPosition int
}

// Calculate aggregates picks into a leaderboard. Every approved participant gets
// a row; those without picks carry zeros and sit after the pick makers they tie
// with. TotalPoints covers every pick; the remaining counters only cover picks
// whose gameweek deadline has passed.
//
// An empty seasonID includes every season. Eliminations are then applied as
// given, so callers pass only the season the annotation belongs to.
func Calculate(
	seasonID string,
	participants []participation.Participation,
	picks []pick.Pick,
	gameweeks []gameweek.Gameweek,
	eliminations []elimination.Elimination,
	now time.Time,
) []Entry {
	type key struct {
		seasonID string
		week     int
	}
	completed := make(map[key]bool, len(gameweeks))
	for _, gw := range gameweeks {
		completed[key{seasonID: gw.SeasonID, week: gw.WeekNumber}] = gw.DeadlinePassed(now)
	}

	index := make(map[string]int)
	out := make([]Entry, 0, len(participants))
	row := func(userID string) *Entry {
		pos, ok := index[userID]
		if !ok {
			pos = len(out)
			index[userID] = pos
			out = append(out, Entry{UserID: userID})
		}
		return &out[pos]
	}
	for _, item := range picks {
		if seasonID != "" && item.SeasonID != seasonID {
			continue
		}
		entry := row(item.UserID)
		entry.TotalPoints += item.Points

		if !completed[key{seasonID: item.SeasonID, week: item.GameweekNumber}] {
			continue
		}
		entry.PicksMade++
		entry.GoalsFor += item.GoalsFor
		entry.GoalsAgainst += item.GoalsAgainst
		switch item.Points {
		case pick.PointsWin:
			entry.Wins++
		case pick.PointsDraw:
			entry.Draws++
		default:
			entry.Losses++
		}
	}

	// approved participants without picks trail in the order given
	for _, item := range participants {
		if !item.IsApproved || (seasonID != "" && item.SeasonID != seasonID) {
			continue
		}
		row(item.UserID)
	}

	eliminated := elimination.EliminatedUsers(filterEliminations(seasonID, eliminations))
	for i := range out {
		out[i].GoalDifference = out[i].GoalsFor - out[i].GoalsAgainst
		if item, ok := eliminated[out[i].UserID]; ok {
			out[i].IsEliminated = true
			out[i].EliminatedGameweek = item.GameweekNumber
			out[i].EliminationPosition = item.Position
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if out[i].GoalDifference != out[j].GoalDifference {
			return out[i].GoalDifference > out[j].GoalDifference
		}
		return out[i].GoalsFor > out[j].GoalsFor
	})
	for i := range out {
		out[i].Position = i + 1
		out[i].Rank = i + 1
	}
	return out
}

func filterEliminations(seasonID string, items []elimination.Elimination) []elimination.Elimination {
	if seasonID == "" {
		return items
	}
	out := make([]elimination.Elimination, 0, len(items))
	for _, item := range items {
		if item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	return out
}
