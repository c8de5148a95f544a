package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/survivor-league/internal/usecase"
)

// Internal job endpoints let an external scheduler drive the same passes the
// in-process sweeps run. Dispatch events are recorded by the sweep runner.

func (h *Handler) RunAutoAssignJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAutoAssignJob")
	defer span.End()

	if h.sweepRunner == nil {
		writeError(ctx, w, fmt.Errorf("%w: sweep runner is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.sweepRunner.RunAutoAssign(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run auto-assign job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunRemindersJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRemindersJob")
	defer span.End()

	if h.sweepRunner == nil {
		writeError(ctx, w, fmt.Errorf("%w: sweep runner is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.sweepRunner.RunReminders(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run reminders job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunResultsSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResultsSyncJob")
	defer span.End()

	if h.sweepRunner == nil {
		writeError(ctx, w, fmt.Errorf("%w: sweep runner is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req internalJobRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.sweepRunner.RunResultsSync(ctx, req.SeasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "run results-sync job failed", "season_id", req.SeasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
