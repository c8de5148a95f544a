package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/survivor-league/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Responses follow the Google JSON style guide envelope.
const (
	apiVersion  = "2.0"
	errorDomain = "survivor-league"
)

type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorClass struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var internalErrorClass = errorClass{http.StatusInternalServerError, "internalError", "INTERNAL"}

// First match wins, so the specific conflicts precede ErrConflict.
var errorClasses = []struct {
	target error
	class  errorClass
}{
	{usecase.ErrInvalidInput, errorClass{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, errorClass{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, errorClass{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrForbidden, errorClass{http.StatusForbidden, "forbidden", "PERMISSION_DENIED"}},
	{usecase.ErrDeadlinePassed, errorClass{http.StatusBadRequest, "deadlinePassed", "FAILED_PRECONDITION"}},
	{usecase.ErrRuleViolation, errorClass{http.StatusBadRequest, "pickRuleViolation", "FAILED_PRECONDITION"}},
	{usecase.ErrDuplicatePick, errorClass{http.StatusConflict, "duplicatePick", "ALREADY_EXISTS"}},
	{usecase.ErrAlreadyProcessed, errorClass{http.StatusConflict, "alreadyProcessed", "ABORTED"}},
	{usecase.ErrConflict, errorClass{http.StatusConflict, "conflict", "ABORTED"}},
	{usecase.ErrDependencyUnavailable, errorClass{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

func classifyError(err error) errorClass {
	for _, candidate := range errorClasses {
		if errors.Is(err, candidate.target) {
			return candidate.class
		}
	}
	return internalErrorClass
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: apiVersion, Data: data})
}

// writeError hides the detail of unclassified errors from the client.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	class := classifyError(err)
	message := "internal server error"
	if class != internalErrorClass {
		message = err.Error()
	}
	writeErrorBody(ctx, w, class, message)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeErrorBody(ctx, w, internalErrorClass, "internal server error")
}

func writeErrorBody(ctx context.Context, w http.ResponseWriter, class errorClass, message string) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("survivor.error_reason", class.Reason))

	writeJSON(w, class.HTTPStatus, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    class.HTTPStatus,
			Message: message,
			Status:  class.Status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: class.Reason, Message: message}},
		},
	})
}
