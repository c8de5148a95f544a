package httpapi

import (
	"net/http"

	"github.com/riskibarqy/survivor-league/internal/platform/metrics"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !metricsEnabled {
		return
	}

	mux.Handle("GET /metrics", metrics.Handler())
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/seasons", handler.ListSeasons)
	mux.HandleFunc("GET /v1/seasons/active", handler.GetActiveSeason)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/gameweeks", handler.ListGameweeks)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/pick-rules", handler.ListPickRules)
	mux.HandleFunc("GET /v1/standings", handler.GetStandings)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/picks", RequireAuth(verifier, http.HandlerFunc(handler.CreatePick)))
	mux.Handle("PUT /v1/picks/{pickID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdatePick)))
	mux.Handle("DELETE /v1/picks/{pickID}", RequireAuth(verifier, http.HandlerFunc(handler.DeletePick)))
	mux.Handle("GET /v1/picks/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPicks)))
	mux.Handle("GET /v1/seasons/{seasonID}/gameweeks/{gameweek}/available-teams", RequireAuth(verifier, http.HandlerFunc(handler.ListAvailableTeams)))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, RequireAdmin(h))
	}

	mux.Handle("POST /v1/admin/seasons", admin(handler.CreateSeason))
	mux.Handle("POST /v1/admin/seasons/{seasonID}/activate", admin(handler.ActivateSeason))
	mux.Handle("PUT /v1/admin/seasons/{seasonID}/elimination-counts", admin(handler.UpdateEliminationCounts))
	mux.Handle("PUT /v1/admin/seasons/{seasonID}/pick-rules", admin(handler.UpsertPickRule))
	mux.Handle("POST /v1/admin/seasons/{seasonID}/gameweeks/{gameweek}/eliminations", admin(handler.ProcessEliminations))
	mux.Handle("POST /v1/admin/auto-assignments", admin(handler.RunAutoAssignment))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/auto-assign", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunAutoAssignJob)))
	mux.Handle("POST /v1/internal/jobs/reminders", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRemindersJob)))
	mux.Handle("POST /v1/internal/jobs/results-sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResultsSyncJob)))
}
