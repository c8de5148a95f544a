package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/survivor-league/internal/usecase"
)

func (h *Handler) CreatePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePick")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createPickRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.pickService.CreatePick(ctx, usecase.CreatePickInput{
		UserID:         principal.UserID,
		SeasonID:       req.SeasonID,
		GameweekNumber: req.GameweekNumber,
		TeamID:         req.TeamID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create pick failed",
			"user_id", principal.UserID,
			"season_id", req.SeasonID,
			"gameweek", req.GameweekNumber,
			"team_id", req.TeamID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, pickToDTO(item))
}

func (h *Handler) UpdatePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePick")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updatePickRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	pickID := strings.TrimSpace(r.PathValue("pickID"))
	item, err := h.pickService.UpdatePick(ctx, usecase.UpdatePickInput{
		PickID: pickID,
		UserID: principal.UserID,
		TeamID: req.TeamID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update pick failed", "user_id", principal.UserID, "pick_id", pickID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pickToDTO(item))
}

func (h *Handler) DeletePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePick")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	pickID := strings.TrimSpace(r.PathValue("pickID"))
	if err := h.pickService.DeletePick(ctx, pickID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete pick failed", "user_id", principal.UserID, "pick_id", pickID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": pickID})
}

func (h *Handler) ListMyPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPicks")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	seasonID := strings.TrimSpace(r.URL.Query().Get("season_id"))
	items, err := h.pickService.ListMyPicks(ctx, principal.UserID, seasonID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]pickDTO, 0, len(items))
	for _, item := range items {
		out = append(out, pickToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListAvailableTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAvailableTeams")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	week, err := parseGameweekParam(r.PathValue("gameweek"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	items, err := h.pickService.ListAvailableTeams(ctx, principal.UserID, seasonID, week)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]availableTeamDTO, 0, len(items))
	for _, item := range items {
		out = append(out, availableTeamToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
