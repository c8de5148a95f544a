package fixture

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Fixture represents one scheduled match, keyed by season and gameweek number.
type Fixture struct {
	ID         string
	SeasonID   string
	Gameweek   int
	HomeTeamID string
	AwayTeamID string
	KickoffAt  time.Time
	HomeScore  *int
	AwayScore  *int
	Status     string
	FinishedAt *time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "IN_PLAY", "HT", "1H", "2H", "ET":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

func IsCancelledLikeStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusCancelled, StatusPostponed, "ABANDONED":
		return true
	default:
		return false
	}
}

// IsTerminalStatus reports whether no further score change is expected.
func IsTerminalStatus(status string) bool {
	return IsFinishedStatus(status) || IsCancelledLikeStatus(status)
}

func (f Fixture) Involves(teamID string) bool {
	return teamID != "" && (f.HomeTeamID == teamID || f.AwayTeamID == teamID)
}

// Opponent returns the other side of the fixture for teamID.
func (f Fixture) Opponent(teamID string) (string, bool) {
	switch teamID {
	case "":
		return "", false
	case f.HomeTeamID:
		return f.AwayTeamID, true
	case f.AwayTeamID:
		return f.HomeTeamID, true
	default:
		return "", false
	}
}

// Scored reports a finished fixture with both scores present.
func (f Fixture) Scored() bool {
	return IsFinishedStatus(f.Status) && f.HomeScore != nil && f.AwayScore != nil
}

// GoalsFor returns (for, against) from teamID's perspective; ok is false when
// the team is not in the fixture or the fixture is not scored.
func (f Fixture) GoalsFor(teamID string) (int, int, bool) {
	if !f.Scored() {
		return 0, 0, false
	}
	switch teamID {
	case f.HomeTeamID:
		return *f.HomeScore, *f.AwayScore, true
	case f.AwayTeamID:
		return *f.AwayScore, *f.HomeScore, true
	default:
		return 0, 0, false
	}
}

// FindForTeam returns the fixture of teamID in gameweek week.
func FindForTeam(items []Fixture, week int, teamID string) (Fixture, bool) {
	for _, item := range items {
		if item.Gameweek == week && item.Involves(teamID) {
			return item, true
		}
	}
	return Fixture{}, false
}

// AllTerminal reports whether a non-empty fixture set is fully terminal.
func AllTerminal(items []Fixture) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !IsTerminalStatus(item.Status) {
			return false
		}
	}
	return true
}
