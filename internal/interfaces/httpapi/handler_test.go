package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/survivor-league/internal/domain/gameweek"
	"github.com/riskibarqy/survivor-league/internal/domain/participation"
	"github.com/riskibarqy/survivor-league/internal/domain/season"
	"github.com/riskibarqy/survivor-league/internal/domain/team"
	"github.com/riskibarqy/survivor-league/internal/domain/user"
	"github.com/riskibarqy/survivor-league/internal/infrastructure/notifier"
	"github.com/riskibarqy/survivor-league/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/survivor-league/internal/platform/id"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/riskibarqy/survivor-league/internal/platform/metrics"
	"github.com/riskibarqy/survivor-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSeasonID = "2025-2026"
	testJobToken = "job-secret"
)

type staticVerifier map[string]user.Principal

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := v[token]
	if !ok {
		return user.Principal{}, usecase.ErrUnauthorized
	}
	return principal, nil
}

type testServer struct {
	router http.Handler
	picks  *memory.PickRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	now := time.Now().UTC()
	seasons := memory.NewSeasonRepository([]season.Season{{
		ID:        testSeasonID,
		Name:      "2025/2026",
		StartDate: now.AddDate(0, -2, 0),
		EndDate:   now.AddDate(0, 8, 0),
		IsActive:  true,
	}})
	gameweeks := memory.NewGameweekRepository([]gameweek.Gameweek{
		{SeasonID: testSeasonID, WeekNumber: 1, Deadline: now.Add(-14 * 24 * time.Hour)},
		{SeasonID: testSeasonID, WeekNumber: 2, Deadline: now.Add(7 * 24 * time.Hour)},
		{SeasonID: testSeasonID, WeekNumber: 3, Deadline: now.Add(14 * 24 * time.Hour)},
	})
	teams := memory.NewTeamRepository([]team.Team{
		{ID: "team-a", Name: "Team A", Short: "TA", IsActive: true},
		{ID: "team-b", Name: "Team B", Short: "TB", IsActive: true},
		{ID: "team-c", Name: "Team C", Short: "TC", IsActive: false},
	})
	fixtures := memory.NewFixtureRepository(nil)
	participations := memory.NewParticipationRepository([]participation.Participation{
		{UserID: "u1", SeasonID: testSeasonID, IsApproved: true},
	})
	picks := memory.NewPickRepository()
	rules := memory.NewPickRuleRepository(nil)
	eliminations := memory.NewEliminationRepository()
	dispatches := memory.NewSweepRunRepository()

	logger := logging.NewNop()
	halves := gameweek.DefaultHalves()
	sink := notifier.NewLogNotifier(logger)

	validator := usecase.NewPickRuleValidator(rules, picks, fixtures, halves)
	seasonSvc := usecase.NewSeasonService(seasons, gameweeks, teams, logger)
	pickSvc := usecase.NewPickService(seasons, gameweeks, participations, picks, rules, teams, eliminations, validator, halves, idgen.NewSequenceGenerator("pick"), logger)
	ruleSvc := usecase.NewPickRuleService(seasons, rules, logger)
	eliminationSvc := usecase.NewEliminationService(gameweeks, eliminations, picks, sink, idgen.NewSequenceGenerator("elim"), logger)
	autoAssignSvc := usecase.NewAutoAssignmentService(seasons, gameweeks, participations, eliminations, picks, teams, fixtures, sink, halves, idgen.NewSequenceGenerator("auto"), 2, logger)
	standingsSvc := usecase.NewStandingsService(seasons, gameweeks, participations, picks, eliminations)
	reminderSvc := usecase.NewReminderService(seasons, gameweeks, participations, eliminations, picks, sink, 24*time.Hour, logger)
	resultsSvc := usecase.NewResultsService(seasons, gameweeks, fixtures, picks, eliminationSvc, logger)
	sweeps := usecase.NewSweepRunner(autoAssignSvc, reminderSvc, resultsSvc, dispatches, usecase.SweepConfig{}, logger)

	handler := NewHandler(seasonSvc, pickSvc, ruleSvc, eliminationSvc, autoAssignSvc, standingsSvc, sweeps, logger)
	verifier := staticVerifier{
		"user-token":   {UserID: "u1"},
		"admin-token":  {UserID: "admin-1", Roles: []string{user.RoleAdmin}},
		"system-token": {UserID: "system"},
	}

	return &testServer{
		router: NewRouter(handler, verifier, logger, []string{"*"}, testJobToken, true),
		picks:  picks,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var payload *bytes.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func errorStatus(t *testing.T, envelope map[string]any) string {
	t.Helper()
	errObj, ok := envelope["error"].(map[string]any)
	require.True(t, ok, "expected error object, got %v", envelope)
	status, _ := errObj["status"].(string)
	return status
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.Register()
	srv := newTestServer(t)
	rec, _ := srv.do(t, http.MethodPost, "/v1/picks", "user-token", map[string]any{
		"season_id": testSeasonID, "gameweek_number": 3, "team_id": "team-b",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body=%s", rec.Body.String())

	rec, _ = srv.do(t, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "survivor_pick_operations_total")
}

func TestListTeams_ActiveOnly(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodGet, "/v1/teams?active_only=true", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := envelope["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)
}

func TestGetActiveSeason(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodGet, "/v1/seasons/active", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, testSeasonID, data["id"])
	assert.Equal(t, true, data["isActive"])
}

func TestCreatePick_RequiresBearerToken(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodPost, "/v1/picks", "", map[string]any{
		"season_id": testSeasonID, "gameweek_number": 2, "team_id": "team-a",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorStatus(t, envelope))
}

func TestCreatePick_ThenDuplicateConflicts(t *testing.T) {
	srv := newTestServer(t)
	body := map[string]any{"season_id": testSeasonID, "gameweek_number": 2, "team_id": "team-a"}

	rec, envelope := srv.do(t, http.MethodPost, "/v1/picks", "user-token", body)
	require.Equal(t, http.StatusCreated, rec.Code, "body=%s", rec.Body.String())
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "u1", data["userId"])
	assert.Equal(t, "team-a", data["teamId"])

	rec, envelope = srv.do(t, http.MethodPost, "/v1/picks", "user-token", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorStatus(t, envelope))
}

func TestCreatePick_AfterDeadlineIsFailedPrecondition(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodPost, "/v1/picks", "user-token", map[string]any{
		"season_id": testSeasonID, "gameweek_number": 1, "team_id": "team-a",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FAILED_PRECONDITION", errorStatus(t, envelope))
}

func TestCreatePick_RejectsUnknownFields(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodPost, "/v1/picks", "user-token", map[string]any{
		"season_id": testSeasonID, "gameweek_number": 2, "team_id": "team-a", "user_id": "someone-else",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", errorStatus(t, envelope))
}

func TestSystemActorTokenIsForbidden(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodGet, "/v1/picks/me", "system-token", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "PERMISSION_DENIED", errorStatus(t, envelope))
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	srv := newTestServer(t)
	body := map[string]any{"half": 1, "max_times_team_can_be_picked": 2, "max_times_opposition_can_be_targeted": 3}

	rec, envelope := srv.do(t, http.MethodPut, "/v1/admin/seasons/"+testSeasonID+"/pick-rules", "user-token", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "PERMISSION_DENIED", errorStatus(t, envelope))

	rec, envelope = srv.do(t, http.MethodPut, "/v1/admin/seasons/"+testSeasonID+"/pick-rules", "admin-token", body)
	require.Equal(t, http.StatusOK, rec.Code, "body=%s", rec.Body.String())
	data := envelope["data"].(map[string]any)
	assert.EqualValues(t, 2, data["maxTimesTeamCanBePicked"])

	rec, envelope = srv.do(t, http.MethodGet, "/v1/seasons/"+testSeasonID+"/pick-rules", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, envelope["data"], 1)
}

func TestAvailableTeams_RejectsNonNumericGameweek(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodGet, "/v1/seasons/"+testSeasonID+"/gameweeks/abc/available-teams", "user-token", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", errorStatus(t, envelope))
}

func TestInternalJobs_RequireToken(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodPost, "/v1/internal/jobs/auto-assign", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorStatus(t, envelope))
}

func TestInternalAutoAssignJob_AssignsMissedGameweek(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/auto-assign", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "body=%s", rec.Body.String())

	items, err := srv.picks.ListByUser(context.Background(), "u1", testSeasonID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].GameweekNumber)
	assert.True(t, items[0].IsAutoAssigned)
}
