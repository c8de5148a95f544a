package pick

import (
	"fmt"

	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
)

const (
	PointsWin  = 3
	PointsDraw = 1
	PointsLoss = 0
)

// Candidate is a proposed selection. ExcludePickID removes the pick being
// updated from the rule counts.
type Candidate struct {
	UserID         string
	SeasonID       string
	GameweekNumber int
	TeamID         string
	ExcludePickID  string
}

// CheckSelection applies rule to candidate given the user's season history and
// the season fixtures. The opposition check is skipped when the candidate team
// has no fixture in that gameweek.
func CheckSelection(rule Rule, candidate Candidate, history []Pick, fixtures []fixture.Fixture, halves gameweek.Halves) error {
	half := halves.Of(candidate.GameweekNumber)
	others := make([]Pick, 0, len(history))
	for _, item := range history {
		if item.ID != "" && item.ID == candidate.ExcludePickID {
			continue
		}
		if item.UserID != candidate.UserID || item.SeasonID != candidate.SeasonID {
			continue
		}
		if item.GameweekNumber == candidate.GameweekNumber {
			continue
		}
		if halves.Of(item.GameweekNumber) != half {
			continue
		}
		others = append(others, item)
	}

	teamCount := 0
	for _, item := range others {
		if item.TeamID == candidate.TeamID {
			teamCount++
		}
	}
	if teamCount >= rule.MaxTimesTeamCanBePicked {
		return fmt.Errorf("%w: team=%s already picked %d times in half %d (max %d)",
			ErrTeamLimitExceeded, candidate.TeamID, teamCount, half, rule.MaxTimesTeamCanBePicked)
	}

	current, ok := fixture.FindForTeam(fixtures, candidate.GameweekNumber, candidate.TeamID)
	if !ok {
		return nil
	}
	opposition, ok := current.Opponent(candidate.TeamID)
	if !ok || opposition == "" {
		return nil
	}

	oppositionCount := 0
	for _, item := range others {
		past, ok := fixture.FindForTeam(fixtures, item.GameweekNumber, item.TeamID)
		if !ok {
			continue
		}
		if opp, ok := past.Opponent(item.TeamID); ok && opp == opposition {
			oppositionCount++
		}
	}
	if oppositionCount >= rule.MaxTimesOppositionCanBeTargeted {
		return fmt.Errorf("%w: opposition=%s already targeted %d times in half %d (max %d)",
			ErrOppositionLimitExceeded, opposition, oppositionCount, half, rule.MaxTimesOppositionCanBeTargeted)
	}

	return nil
}

// ResultPoints converts a scoreline into league points for the side scoring gf.
func ResultPoints(gf, ga int) int {
	switch {
	case gf > ga:
		return PointsWin
	case gf == ga:
		return PointsDraw
	default:
		return PointsLoss
	}
}

// ScoreFromFixture scores teamID's pick from its fixture; ok is false while the
// fixture has no final result.
func ScoreFromFixture(item fixture.Fixture, teamID string) (Score, bool) {
	gf, ga, ok := item.GoalsFor(teamID)
	if !ok {
		return Score{}, false
	}
	return Score{Points: ResultPoints(gf, ga), GoalsFor: gf, GoalsAgainst: ga}, true
}

// TeamsUsedInHalf returns the teams the user picked in the half containing week.
func TeamsUsedInHalf(history []Pick, week int, halves gameweek.Halves) map[string]int {
	used := make(map[string]int)
	for _, item := range history {
		if item.GameweekNumber == week || !halves.SameHalf(item.GameweekNumber, week) {
			continue
		}
		used[item.TeamID]++
	}
	return used
}
