package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/survivor-league/internal/usecase"
)

func (h *Handler) ProcessEliminations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProcessEliminations")
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
	result, err := h.eliminationService.Process(ctx, usecase.ProcessEliminationInput{
		SeasonID:       seasonID,
		GameweekNumber: week,
		ActorID:        principal.UserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "process eliminations failed",
			"actor_id", principal.UserID,
			"season_id", seasonID,
			"gameweek", week,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eliminationResultToDTO(result))
}

func (h *Handler) RunAutoAssignment(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAutoAssignment")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req autoAssignRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.autoAssignService.Run(ctx, usecase.AutoAssignInput{
		SeasonID:       req.SeasonID,
		GameweekNumber: req.GameweekNumber,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "auto assignment failed", "actor_id", principal.UserID, "season_id", req.SeasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "auto assignment triggered",
		"actor_id", principal.UserID,
		"season_id", result.SeasonID,
		"assigned", result.AssignedCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}
