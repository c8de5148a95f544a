package httpapi

import (
	"time"

	"github.com/riskibarqy/survivor-league/internal/domain/elimination"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/pick"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/domain/standings"
	"github.com/riskibarqy/survivor-league/internal/domain/team"
	"github.com/riskibarqy/survivor-league/internal/usecase"
)

type createPickRequest struct {
	SeasonID       string `json:"season_id" validate:"required"`
	GameweekNumber int    `json:"gameweek_number" validate:"required,min=1,max=38"`
	TeamID         string `json:"team_id" validate:"required"`
}

type updatePickRequest struct {
	TeamID string `json:"team_id" validate:"required"`
}

type createSeasonRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Activate  *bool  `json:"activate,omitempty"`
}

type updateEliminationCountsRequest struct {
	Items []usecase.EliminationCountItem `json:"items" validate:"required,min=1,dive"`
}

type upsertPickRuleRequest struct {
	Half                            int `json:"half" validate:"required,oneof=1 2"`
	MaxTimesTeamCanBePicked         int `json:"max_times_team_can_be_picked" validate:"required,min=1"`
	MaxTimesOppositionCanBeTargeted int `json:"max_times_opposition_can_be_targeted" validate:"required,min=1"`
}

type autoAssignRequest struct {
	SeasonID       string `json:"season_id"`
	GameweekNumber int    `json:"gameweek_number" validate:"omitempty,min=1,max=38"`
}

type internalJobRequest struct {
	SeasonID string `json:"season_id"`
}

type seasonDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	IsActive   bool   `json:"isActive"`
	IsArchived bool   `json:"isArchived"`
}

type gameweekDTO struct {
	SeasonID         string `json:"seasonId"`
	WeekNumber       int    `json:"weekNumber"`
	DeadlineAt       string `json:"deadlineAt,omitempty"`
	IsLocked         bool   `json:"isLocked"`
	EliminationCount int    `json:"eliminationCount"`
}

type teamDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Short    string `json:"short"`
	IsActive bool   `json:"isActive"`
}

type availableTeamDTO struct {
	teamDTO
	TimesUsed     int  `json:"timesUsed"`
	MaxTimes      int  `json:"maxTimes"`
	CanBePicked   bool `json:"canBePicked"`
	HasRuleLimits bool `json:"hasRuleLimits"`
}

type pickDTO struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	SeasonID       string `json:"seasonId"`
	GameweekNumber int    `json:"gameweekNumber"`
	TeamID         string `json:"teamId"`
	Points         int    `json:"points"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	IsAutoAssigned bool   `json:"isAutoAssigned"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

type pickRuleDTO struct {
	SeasonID                        string `json:"seasonId"`
	Half                            int    `json:"half"`
	MaxTimesTeamCanBePicked         int    `json:"maxTimesTeamCanBePicked"`
	MaxTimesOppositionCanBeTargeted int    `json:"maxTimesOppositionCanBeTargeted"`
}

type standingDTO struct {
	UserID              string `json:"userId"`
	Position            int    `json:"position"`
	Rank                int    `json:"rank"`
	TotalPoints         int    `json:"totalPoints"`
	PicksMade           int    `json:"picksMade"`
	Wins                int    `json:"wins"`
	Draws               int    `json:"draws"`
	Losses              int    `json:"losses"`
	GoalsFor            int    `json:"goalsFor"`
	GoalsAgainst        int    `json:"goalsAgainst"`
	GoalDifference      int    `json:"goalDifference"`
	IsEliminated        bool   `json:"isEliminated"`
	EliminatedGameweek  int    `json:"eliminatedGameweek,omitempty"`
	EliminationPosition int    `json:"eliminationPosition,omitempty"`
}

type eliminationDTO struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	GameweekNumber int    `json:"gameweekNumber"`
	Position       int    `json:"position"`
	TotalPoints    int    `json:"totalPoints"`
	EliminatedAt   string `json:"eliminatedAt"`
	ActorID        string `json:"actorId"`
}

type eliminationResultDTO struct {
	SeasonID         string           `json:"seasonId"`
	GameweekNumber   int              `json:"gameweekNumber"`
	EliminatedCount  int              `json:"eliminatedCount"`
	Eliminated       []eliminationDTO `json:"eliminated"`
	AlreadyProcessed bool             `json:"alreadyProcessed"`
	Message          string           `json:"message,omitempty"`
}

const dateLayout = "2006-01-02"

func seasonToDTO(v season.Season) seasonDTO {
	return seasonDTO{
		ID:         v.ID,
		Name:       v.Name,
		StartDate:  v.StartDate.UTC().Format(dateLayout),
		EndDate:    v.EndDate.UTC().Format(dateLayout),
		IsActive:   v.IsActive,
		IsArchived: v.IsArchived,
	}
}

func gameweekToDTO(v gameweek.Gameweek, now time.Time) gameweekDTO {
	return gameweekDTO{
		SeasonID:         v.SeasonID,
		WeekNumber:       v.WeekNumber,
		DeadlineAt:       formatTime(v.Deadline),
		IsLocked:         v.IsLocked || v.DeadlinePassed(now),
		EliminationCount: v.EliminationCount,
	}
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{ID: v.ID, Name: v.Name, Short: v.Short, IsActive: v.IsActive}
}

func availableTeamToDTO(v usecase.AvailableTeam) availableTeamDTO {
	return availableTeamDTO{
		teamDTO:       teamToDTO(v.Team),
		TimesUsed:     v.TimesUsed,
		MaxTimes:      v.MaxTimes,
		CanBePicked:   v.CanBePicked,
		HasRuleLimits: v.HasRuleLimits,
	}
}

func pickToDTO(v pick.Pick) pickDTO {
	return pickDTO{
		ID:             v.ID,
		UserID:         v.UserID,
		SeasonID:       v.SeasonID,
		GameweekNumber: v.GameweekNumber,
		TeamID:         v.TeamID,
		Points:         v.Points,
		GoalsFor:       v.GoalsFor,
		GoalsAgainst:   v.GoalsAgainst,
		IsAutoAssigned: v.IsAutoAssigned,
		CreatedAt:      formatTime(v.CreatedAt),
		UpdatedAt:      formatTime(v.UpdatedAt),
	}
}

func pickRuleToDTO(v pick.Rule) pickRuleDTO {
	return pickRuleDTO{
		SeasonID:                        v.SeasonID,
		Half:                            v.Half,
		MaxTimesTeamCanBePicked:         v.MaxTimesTeamCanBePicked,
		MaxTimesOppositionCanBeTargeted: v.MaxTimesOppositionCanBeTargeted,
	}
}

func standingToDTO(v standings.Entry) standingDTO {
	return standingDTO{
		UserID:              v.UserID,
		Position:            v.Position,
		Rank:                v.Rank,
		TotalPoints:         v.TotalPoints,
		PicksMade:           v.PicksMade,
		Wins:                v.Wins,
		Draws:               v.Draws,
		Losses:              v.Losses,
		GoalsFor:            v.GoalsFor,
		GoalsAgainst:        v.GoalsAgainst,
		GoalDifference:      v.GoalDifference,
		IsEliminated:        v.IsEliminated,
		EliminatedGameweek:  v.EliminatedGameweek,
		EliminationPosition: v.EliminationPosition,
	}
}

func eliminationResultToDTO(v usecase.EliminationResult) eliminationResultDTO {
	items := make([]eliminationDTO, 0, len(v.Eliminated))
	for _, item := range v.Eliminated {
		items = append(items, eliminationToDTO(item))
	}
	return eliminationResultDTO{
		SeasonID:         v.SeasonID,
		GameweekNumber:   v.GameweekNumber,
		EliminatedCount:  v.EliminatedCount,
		Eliminated:       items,
		AlreadyProcessed: v.AlreadyProcessed,
		Message:          v.Message,
	}
}

func eliminationToDTO(v elimination.Elimination) eliminationDTO {
	return eliminationDTO{
		ID:             v.ID,
		UserID:         v.UserID,
		GameweekNumber: v.GameweekNumber,
		Position:       v.Position,
		TotalPoints:    v.TotalPoints,
		EliminatedAt:   formatTime(v.EliminatedAt),
		ActorID:        v.ActorID,
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
