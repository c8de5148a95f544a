package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/riskibarqy/survivor-league/internal/usecase"
)

type Handler struct {
	seasonService      *usecase.SeasonService
	pickService        *usecase.PickService
	pickRuleService    *usecase.PickRuleService
	eliminationService *usecase.EliminationService
	autoAssignService  *usecase.AutoAssignmentService
	standingsService   *usecase.StandingsService
	sweepRunner        *usecase.SweepRunner
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	seasonService *usecase.SeasonService,
	pickService *usecase.PickService,
	pickRuleService *usecase.PickRuleService,
	eliminationService *usecase.EliminationService,
	autoAssignService *usecase.AutoAssignmentService,
	standingsService *usecase.StandingsService,
	sweepRunner *usecase.SweepRunner,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		seasonService:      seasonService,
		pickService:        pickService,
		pickRuleService:    pickRuleService,
		eliminationService: eliminationService,
		autoAssignService:  autoAssignService,
		standingsService:   standingsService,
		sweepRunner:        sweepRunner,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON rejects unknown fields. An empty body is an error unless allowEmpty.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	if r.Body == nil || r.Body == http.NoBody {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}

	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func parseGameweekParam(raw string) (int, error) {
	week, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: gameweek must be a number, got %q", usecase.ErrInvalidInput, raw)
	}
	return week, nil
}
