package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/survivor-league/internal/usecase"
)

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	items, err := h.seasonService.ListSeasons(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list seasons failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]seasonDTO, 0, len(items))
	for _, item := range items {
		out = append(out, seasonToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetActiveSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActiveSeason")
	defer span.End()

	item, err := h.seasonService.GetActiveSeason(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}

func (h *Handler) ListGameweeks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGameweeks")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	items, err := h.seasonService.ListGameweeks(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "list gameweeks failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	out := make([]gameweekDTO, 0, len(items))
	for _, item := range items {
		out = append(out, gameweekToDTO(item, now))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	activeOnly := false
	if raw := strings.TrimSpace(r.URL.Query().Get("active_only")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: active_only must be a boolean", usecase.ErrInvalidInput))
			return
		}
		activeOnly = parsed
	}

	items, err := h.seasonService.ListTeams(ctx, activeOnly)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]teamDTO, 0, len(items))
	for _, item := range items {
		out = append(out, teamToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	seasonID := strings.TrimSpace(r.URL.Query().Get("season_id"))
	items, err := h.standingsService.GetStandings(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]standingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, standingToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListPickRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPickRules")
	defer span.End()

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	items, err := h.pickRuleService.ListPickRules(ctx, seasonID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]pickRuleDTO, 0, len(items))
	for _, item := range items {
		out = append(out, pickRuleToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSeason")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createSeasonRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: start_date: %v", usecase.ErrInvalidInput, err))
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: end_date: %v", usecase.ErrInvalidInput, err))
		return
	}

	item, err := h.seasonService.CreateSeason(ctx, usecase.CreateSeasonInput{
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		Activate:  req.Activate,
		ActorID:   principal.UserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create season failed", "actor_id", principal.UserID, "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, seasonToDTO(item))
}

func (h *Handler) ActivateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ActivateSeason")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	item, err := h.seasonService.ActivateSeason(ctx, seasonID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "activate season failed", "actor_id", principal.UserID, "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}

func (h *Handler) UpdateEliminationCounts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateEliminationCounts")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateEliminationCountsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	result, err := h.eliminationService.UpdateEliminationCounts(ctx, seasonID, req.Items, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "update elimination counts failed", "actor_id", principal.UserID, "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) UpsertPickRule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertPickRule")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req upsertPickRuleRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	item, err := h.pickRuleService.UpsertPickRule(ctx, usecase.UpsertPickRuleInput{
		SeasonID:                        seasonID,
		Half:                            req.Half,
		MaxTimesTeamCanBePicked:         req.MaxTimesTeamCanBePicked,
		MaxTimesOppositionCanBeTargeted: req.MaxTimesOppositionCanBeTargeted,
		ActorID:                         principal.UserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upsert pick rule failed", "actor_id", principal.UserID, "season_id", seasonID, "half", req.Half, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pickRuleToDTO(item))
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", raw)
	}
	return t.UTC(), nil
}
