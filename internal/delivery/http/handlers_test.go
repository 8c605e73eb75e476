package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epidash/backend/internal/domain"
	"github.com/epidash/backend/internal/repository/postgres"
	"github.com/epidash/backend/internal/service"
)

type stubAPI struct {
	mapErr    error
	healthErr error
}

func (s *stubAPI) GetTrend(ctx context.Context, state, disease string) (domain.TrendSeries, error) {
	return domain.TrendSeries{State: state, Disease: disease, Points: []domain.TrendPoint{
		{Week: "2024-01-01", Cases: 10},
		{Week: "2024-01-08", Cases: 20},
	}}, nil
}

func (s *stubAPI) GetTopDiseases(ctx context.Context, state, week string) (domain.TopDiseases, error) {
	return domain.TopDiseases{State: state, Week: week, Rankings: []domain.DiseaseRanking{
		{Disease: "Dengue", TotalCases: 30},
	}}, nil
}

func (s *stubAPI) GetClimateImpact(ctx context.Context, disease string) (domain.ClimateSeries, error) {
	return domain.ClimateSeries{Disease: disease, Points: []domain.ClimatePoint{{Week: "2024-01-01", Cases: 7}}}, nil
}

func (s *stubAPI) GetMap(ctx context.Context, week, disease string) (domain.MapSnapshot, error) {
	if s.mapErr != nil {
		return domain.MapSnapshot{}, s.mapErr
	}
	return domain.MapSnapshot{Week: week, Disease: disease, Points: []domain.GeoPoint{
		{District: "Pune", State: "Maharashtra", Latitude: 18.52, Longitude: 73.85, TotalCases: 12},
		{District: "Thane", State: "Maharashtra", Latitude: 19.21, Longitude: 72.97, TotalCases: 8},
	}}, nil
}

func (s *stubAPI) GetDiseases(ctx context.Context) ([]string, error) {
	return []string{"Dengue", "Malaria"}, nil
}

func (s *stubAPI) GetStates(ctx context.Context) ([]string, error) {
	return []string{"Kerala"}, nil
}

func (s *stubAPI) GetDateRange(ctx context.Context) (domain.DateRange, error) {
	return domain.DateRange{MinDate: "2024-01-01", MaxDate: "2024-01-08"}, nil
}

func (s *stubAPI) Health(ctx context.Context) error {
	return s.healthErr
}

type testServer struct {
	app      *fiber.App
	api      *stubAPI
	sessions *service.SessionStore
	repo     *postgres.MockRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := &stubAPI{}
	repo := postgres.NewMockRepository()
	sessions := service.NewSessionStore(api, repo, logger)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, NewHandler(sessions, api, api, repo))
	return &testServer{app: app, api: api, sessions: sessions, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) createSession(t *testing.T) string {
	t.Helper()
	status, body := s.do(t, nethttp.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, fiber.StatusCreated, status)
	s.sessions.WaitBackground()
	return body["data"].(map[string]any)["id"].(string)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	s.api.healthErr = &service.TransportError{Op: "health", Err: errors.New("connection refused")}
	_, body = s.do(t, nethttp.MethodGet, "/health", "")
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "connection refused", body["upstream"])
}

func TestCreateSessionBootstrapsViews(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, fiber.StatusCreated, status)

	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["id"])
	dashboard := data["dashboard"].(map[string]any)
	assert.Equal(t, "ready", dashboard["phase"])
	assert.Equal(t, "2024-01-08", dashboard["selection"].(map[string]any)["week"])
	climate := data["climate"].(map[string]any)
	assert.Equal(t, "Dengue", climate["disease"])
}

func TestDashboardSelectionFlow(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession(t)

	status, _ := s.do(t, nethttp.MethodPut, "/api/v1/sessions/"+id+"/dashboard/selection",
		`{"state":"Kerala","disease":"Dengue"}`)
	require.Equal(t, fiber.StatusAccepted, status)
	s.sessions.WaitBackground()

	status, body := s.do(t, nethttp.MethodGet, "/api/v1/sessions/"+id+"/dashboard", "")
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(30), data["total_cases"])
	assert.Equal(t, float64(15), data["weekly_average"])
	assert.NotNil(t, data["trend"])
	assert.NotNil(t, data["top_diseases"])

	status, body = s.do(t, nethttp.MethodPost, "/api/v1/sessions/"+id+"/dashboard/reset", "")
	require.Equal(t, fiber.StatusOK, status)
	data = body["data"].(map[string]any)
	assert.Nil(t, data["trend"])
	assert.Equal(t, "", data["selection"].(map[string]any)["state"])
}

func TestGetFilters(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession(t)

	status, body := s.do(t, nethttp.MethodGet, "/api/v1/sessions/"+id+"/filters", "")
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "ready", data["status"])
	assert.Equal(t, []any{"2024-01-01", "2024-01-08"}, data["weeks"])
}

func TestClimateDiseaseSelection(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession(t)

	status, _ := s.do(t, nethttp.MethodPut, "/api/v1/sessions/"+id+"/climate/disease", `{"disease":""}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, nethttp.MethodPut, "/api/v1/sessions/"+id+"/climate/disease", `{"disease":"Malaria"}`)
	require.Equal(t, fiber.StatusAccepted, status)
	s.sessions.WaitBackground()

	_, body := s.do(t, nethttp.MethodGet, "/api/v1/sessions/"+id+"/climate", "")
	data := body["data"].(map[string]any)
	assert.Equal(t, "Malaria", data["disease"])
	assert.Equal(t, float64(7), data["total_cases"])
}

func TestUnknownSession(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/api/v1/sessions/nope/dashboard", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Session not found", body["message"])

	status, _ = s.do(t, nethttp.MethodDelete, "/api/v1/sessions/nope", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession(t)

	status, _ := s.do(t, nethttp.MethodDelete, "/api/v1/sessions/"+id, "")
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.Equal(t, 0, s.sessions.Len())
}

func TestGetMap(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, nethttp.MethodGet, "/api/v1/map?disease=Dengue", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := s.do(t, nethttp.MethodGet, "/api/v1/map?week=2024-01-08&disease=Dengue", "")
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(20), data["total_cases"])
	assert.Equal(t, float64(2), data["district_count"])
	assert.Len(t, data["locations"], 2)
}

func TestGetMapUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"timeout", &service.TimeoutError{Op: "map", Timeout: 10 * time.Second}, fiber.StatusGatewayTimeout, "timeout of 10s exceeded"},
		{"validation", &service.HTTPError{Op: "map", StatusCode: 422, Message: "week: invalid date"}, 422, "week: invalid date"},
		{"server error", &service.HTTPError{Op: "map", StatusCode: 500, Message: "Database query failed"}, fiber.StatusBadGateway, "Database query failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.api.mapErr = tt.err

			status, body := s.do(t, nethttp.MethodGet, "/api/v1/map?week=2024-01-08&disease=Dengue", "")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestGetFetchLog(t *testing.T) {
	s := newTestServer(t)
	s.createSession(t)

	status, body := s.do(t, nethttp.MethodGet, "/api/v1/fetch-log?limit=1", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	_, body = s.do(t, nethttp.MethodGet, "/api/v1/fetch-log", "")
	// filters, diseases and the climate series
	assert.Equal(t, float64(3), body["count"])
}
