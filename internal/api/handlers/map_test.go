package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"floodaura/internal/core"
	"floodaura/internal/types"
)

// --- Mock Repository ---

type mockEventRepo struct {
	recent     []types.FloodEvent
	recentErr  error
	nearby     []types.FloodEvent
	nearbyErr  error
	search     []types.FloodEvent
	searchErr  error
	stats      *types.EventStats
	statsErr   error
	inserted   []*types.FloodEvent
	insertErr  error
	deletedCnt int64
}

func (m *mockEventRepo) Insert(_ context.Context, ev *types.FloodEvent) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, ev)
	return nil
}

func (m *mockEventRepo) ListRecent(_ context.Context, _ time.Time, _ types.Severity, _ int) ([]types.FloodEvent, error) {
	return m.recent, m.recentErr
}

func (m *mockEventRepo) ListNearby(_ context.Context, _ types.Location, _ float64, _ time.Time) ([]types.FloodEvent, error) {
	return m.nearby, m.nearbyErr
}

func (m *mockEventRepo) SearchByName(_ context.Context, _ string, _ int) ([]types.FloodEvent, error) {
	return m.search, m.searchErr
}

func (m *mockEventRepo) Stats(_ context.Context, _ time.Time) (*types.EventStats, error) {
	return m.stats, m.statsErr
}

func (m *mockEventRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return m.deletedCnt, nil
}

// --- Mock Weather ---

type mockWeather struct {
	signal *types.WeatherSignal
	err    error
}

func (m *mockWeather) Signal(_ context.Context, _ types.Location) (*types.WeatherSignal, error) {
	return m.signal, m.err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2025, time.July, 20, 18, 0, 0, 0, time.UTC)

func sampleEvent(id string, score float64, severity types.Severity, age time.Duration) types.FloodEvent {
	return types.FloodEvent{
		ID:           id,
		LocationName: "Minto Bridge Underpass",
		Latitude:     28.632,
		Longitude:    77.232,
		RiskScore:    score,
		Severity:     severity,
		RainfallMM:   48.2,
		ElevationM:   208,
		Timestamp:    testNow.Add(-age),
	}
}

func makeMapRouter(repo types.FloodEventRepository, weather types.WeatherProvider) http.Handler {
	handler := NewMapHandler(repo, weather, fixedClock{testNow}, slog.Default())
	r := chi.NewRouter()
	r.Route("/v1/map", handler.RegisterRoutes)
	return r
}

// --- HandleSearch Tests ---

func TestHandleSearch_Found(t *testing.T) {
	repo := &mockEventRepo{search: []types.FloodEvent{
		sampleEvent("evt_1", 85, types.SeverityCritical, time.Hour),
		sampleEvent("evt_2", 60, types.SeverityHigh, 3*time.Hour),
	}}
	router := makeMapRouter(repo, &mockWeather{})

	req := httptest.NewRequest(http.MethodGet, "/v1/map/search?location=minto", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data searchResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Data.Found {
		t.Error("expected found=true")
	}
	if resp.Data.LocationName != "Minto Bridge Underpass" {
		t.Errorf("unexpected location name %q", resp.Data.LocationName)
	}
	if resp.Data.MatchingEvents != 2 {
		t.Errorf("expected 2 matching events, got %d", resp.Data.MatchingEvents)
	}
}

func TestHandleSearch_NotFound(t *testing.T) {
	router := makeMapRouter(&mockEventRepo{}, &mockWeather{})

	req := httptest.NewRequest(http.MethodGet, "/v1/map/search?location=atlantis", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data searchResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Found {
		t.Error("expected found=false")
	}
	if resp.Data.Query != "atlantis" {
		t.Errorf("expected query echoed back, got %q", resp.Data.Query)
	}
}

func TestHandleSearch_MissingQuery(t *testing.T) {
	router := makeMapRouter(&mockEventRepo{}, &mockWeather{})

	req := httptest.NewRequest(http.MethodGet, "/v1/map/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

// --- HandleLocate Tests ---

func TestHandleLocate_Success(t *testing.T) {
	repo := &mockEventRepo{nearby: []types.FloodEvent{
		sampleEvent("evt_1", 85, types.SeverityCritical, time.Hour),
	}}
	weather := &mockWeather{signal: &types.WeatherSignal{
		RainfallMmPerHour:  22,
		ElevationMeters:    210,
		AggregateRiskScore: 68,
	}}
	router := makeMapRouter(repo, weather)

	rec := postJSON(t, router, "/v1/map/locate", map[string]float64{"lat": 28.63, "lng": 77.22})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data locateResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Severity != types.SeverityHigh {
		t.Errorf("expected severity High for score 68, got %s", resp.Data.Severity)
	}
	if resp.Data.NearbyEvents != 1 {
		t.Errorf("expected 1 nearby event, got %d", resp.Data.NearbyEvents)
	}
	if len(resp.Data.Nearest) != 1 {
		t.Fatalf("expected 1 nearest entry, got %d", len(resp.Data.Nearest))
	}
	if resp.Data.Nearest[0].DistanceKm <= 0 {
		t.Error("expected a positive distance")
	}
}

func TestHandleLocate_WeatherOutageDegrades(t *testing.T) {
	weather := &mockWeather{err: types.NewAppError(types.ErrCodeUpstreamWeather, "weather down", nil)}
	router := makeMapRouter(&mockEventRepo{}, weather)

	rec := postJSON(t, router, "/v1/map/locate", map[string]float64{"lat": 28.63, "lng": 77.22})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 despite weather outage, got %d", rec.Code)
	}

	var resp struct {
		Data locateResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Severity != types.SeverityLow {
		t.Errorf("expected default Low severity, got %s", resp.Data.Severity)
	}
}

func TestHandleLocate_InvalidCoordinates(t *testing.T) {
	router := makeMapRouter(&mockEventRepo{}, &mockWeather{})

	rec := postJSON(t, router, "/v1/map/locate", map[string]float64{"lat": 91, "lng": 77.22})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != string(types.ErrCodeValidationInvalidLat) {
		t.Errorf("expected error code %s, got %s", types.ErrCodeValidationInvalidLat, code)
	}
}

// --- HandleHeatmap Tests ---

func TestHandleHeatmap_NormalizesIntensity(t *testing.T) {
	repo := &mockEventRepo{recent: []types.FloodEvent{
		sampleEvent("evt_1", 85, types.SeverityCritical, time.Hour),
		sampleEvent("evt_2", 40, types.SeverityMedium, 2*time.Hour),
	}}
	router := makeMapRouter(repo, &mockWeather{})

	req := httptest.NewRequest(http.MethodGet, "/v1/map/heatmap", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data heatmapResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.TotalPoints != 2 {
		t.Fatalf("expected 2 points, got %d", resp.Data.TotalPoints)
	}
	if resp.Data.Points[0].Intensity != 0.85 {
		t.Errorf("expected intensity 0.85, got %v", resp.Data.Points[0].Intensity)
	}
	if !resp.Data.LastUpdated.Equal(testNow) {
		t.Errorf("expected last_updated %v, got %v", testNow, resp.Data.LastUpdated)
	}
}

func TestHandleHeatmap_RepoError(t *testing.T) {
	repo := &mockEventRepo{recentErr: types.NewAppError(types.ErrCodeInternalDB, "db down", nil)}
	router := makeMapRouter(repo, &mockWeather{})

	req := httptest.NewRequest(http.MethodGet, "/v1/map/heatmap", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

// --- SeverityForScore Tests ---

func TestSeverityForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  types.Severity
	}{
		{95, types.SeverityCritical},
		{80, types.SeverityCritical},
		{79.9, types.SeverityHigh},
		{60, types.SeverityHigh},
		{45, types.SeverityMedium},
		{12, types.SeverityLow},
		{0, types.SeverityLow},
	}
	for _, tc := range cases {
		if got := SeverityForScore(tc.score); got != tc.want {
			t.Errorf("SeverityForScore(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

// Guard against the core wrapper being bypassed; search must produce the
// standard envelope.
func TestHandleSearch_EnvelopeShape(t *testing.T) {
	router := makeMapRouter(&mockEventRepo{}, &mockWeather{})

	req := httptest.NewRequest(http.MethodGet, "/v1/map/search?location=x", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp core.APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if resp.Data == nil {
		t.Error("expected data field in envelope")
	}
}
