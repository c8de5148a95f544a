package leaguestanding

import (
	"sort"

	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/team"
)

// Standing represents a real-world league table row for one team.
type Standing struct {
	TeamID         string
	Position       int
	Played         int
	Won            int
	Draw           int
	Lost           int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
	IsActive       bool
}

// BuildBefore computes the league table from finished fixtures of seasonID in
// gameweeks strictly before week. Every active team appears, even without a
// fixture. Rows are sorted by points, goal difference then goals scored.
func BuildBefore(seasonID string, week int, teams []team.Team, fixtures []fixture.Fixture) []Standing {
	index := make(map[string]int, len(teams))
	out := make([]Standing, 0, len(teams))
	for _, item := range teams {
		if !item.IsActive {
			continue
		}
		index[item.ID] = len(out)
		out = append(out, Standing{TeamID: item.ID, IsActive: true})
	}

	apply := func(teamID string, gf, ga int) {
		pos, ok := index[teamID]
		if !ok {
			return
		}
		row := &out[pos]
		row.Played++
		row.GoalsFor += gf
		row.GoalsAgainst += ga
		points := pick.ResultPoints(gf, ga)
		row.Points += points
		switch points {
		case pick.PointsWin:
			row.Won++
		case pick.PointsDraw:
			row.Draw++
		default:
			row.Lost++
		}
	}

	for _, item := range fixtures {
		if item.SeasonID != seasonID || item.Gameweek >= week || !item.Scored() {
			continue
		}
		apply(item.HomeTeamID, *item.HomeScore, *item.AwayScore)
		apply(item.AwayTeamID, *item.AwayScore, *item.HomeScore)
	}

	for i := range out {
		out[i].GoalDifference = out[i].GoalsFor - out[i].GoalsAgainst
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].GoalDifference != out[j].GoalDifference {
			return out[i].GoalDifference > out[j].GoalDifference
		}
		return out[i].GoalsFor > out[j].GoalsFor
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// LowestUnused walks the table from the bottom and returns the first team not in
// used.
func LowestUnused(table []Standing, used map[string]int) (string, bool) {
	for i := len(table) - 1; i >= 0; i-- {
		row := table[i]
		if !row.IsActive {
			continue
		}
		if used[row.TeamID] > 0 {
			continue
		}
		return row.TeamID, true
	}
	return "", false
}
