package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/fixture"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/domain/team"
)

const (
	SeasonIDDemo = "2025-2026"
	UserIDDemo   = "demo-user"
)

var demoSeasonStart = time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

func SeedSeasons() []season.Season {
	return []season.Season{
		{
			ID:        SeasonIDDemo,
			Name:      "2025/2026",
			StartDate: demoSeasonStart,
			EndDate:   time.Date(2026, 5, 24, 0, 0, 0, 0, time.UTC),
			IsActive:  true,
			CreatedAt: demoSeasonStart,
			UpdatedAt: demoSeasonStart,
		},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "eng-ars", Name: "Arsenal", Short: "ARS", IsActive: true},
		{ID: "eng-che", Name: "Chelsea", Short: "CHE", IsActive: true},
		{ID: "eng-liv", Name: "Liverpool", Short: "LIV", IsActive: true},
		{ID: "eng-mci", Name: "Manchester City", Short: "MCI", IsActive: true},
		{ID: "eng-mun", Name: "Manchester United", Short: "MUN", IsActive: true},
		{ID: "eng-tot", Name: "Tottenham Hotspur", Short: "TOT", IsActive: true},
		{ID: "eng-lei", Name: "Leicester City", Short: "LEI", IsActive: false},
	}
}

// SeedGameweeks returns 38 weekly rounds whose deadlines fall on Friday evenings.
func SeedGameweeks() []gameweek.Gameweek {
	out := make([]gameweek.Gameweek, 0, gameweek.MaxWeekNumber)
	firstDeadline := demoSeasonStart.Add(18*time.Hour + 30*time.Minute)
	for week := gameweek.MinWeekNumber; week <= gameweek.MaxWeekNumber; week++ {
		out = append(out, gameweek.Gameweek{
			SeasonID:   SeasonIDDemo,
			WeekNumber: week,
			Deadline:   firstDeadline.AddDate(0, 0, 7*(week-1)),
		})
	}
	return out
}

// SeedFixtures pairs the active teams in a fixed rotation for every gameweek.
func SeedFixtures() []fixture.Fixture {
	teams := team.ActiveOnly(SeedTeams())
	out := make([]fixture.Fixture, 0, gameweek.MaxWeekNumber*len(teams)/2)
	for week := gameweek.MinWeekNumber; week <= gameweek.MaxWeekNumber; week++ {
		kickoff := demoSeasonStart.AddDate(0, 0, 7*(week-1)+1).Add(14 * time.Hour)
		rotated := rotate(teams, week-1)
		for i := 0; i+1 < len(rotated); i += 2 {
			out = append(out, fixture.Fixture{
				ID:         fmt.Sprintf("%s-gw%02d-%d", SeasonIDDemo, week, i/2+1),
				SeasonID:   SeasonIDDemo,
				Gameweek:   week,
				HomeTeamID: rotated[i].ID,
				AwayTeamID: rotated[i+1].ID,
				KickoffAt:  kickoff,
				Status:     fixture.StatusScheduled,
			})
		}
	}
	return out
}

func SeedPickRules() []pick.Rule {
	return []pick.Rule{
		{SeasonID: SeasonIDDemo, Half: 1, MaxTimesTeamCanBePicked: 4, MaxTimesOppositionCanBeTargeted: 4},
		{SeasonID: SeasonIDDemo, Half: 2, MaxTimesTeamCanBePicked: 4, MaxTimesOppositionCanBeTargeted: 4},
	}
}

// SeedParticipations approves a single local user so the memory backend is
// playable without an approval feed.
func SeedParticipations() []participation.Participation {
	approvedAt := demoSeasonStart
	return []participation.Participation{
		{UserID: UserIDDemo, SeasonID: SeasonIDDemo, IsApproved: true, ApprovedAt: &approvedAt, CreatedAt: demoSeasonStart},
	}
}

// rotate keeps the first team fixed and turns the rest, circle-method style.
func rotate(items []team.Team, steps int) []team.Team {
	if len(items) < 3 {
		return items
	}
	rest := items[1:]
	shift := steps % len(rest)
	out := make([]team.Team, 0, len(items))
	out = append(out, items[0])
	out = append(out, rest[len(rest)-shift:]...)
	out = append(out, rest[:len(rest)-shift]...)
	return out
}
