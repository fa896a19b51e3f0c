package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"floodaura/internal/core"
	"floodaura/internal/types"
	"floodaura/internal/verdicts"
)

// --- Mock Service ---

type mockVerdictService struct {
	verdict     *types.Verdict
	evaluateErr error
	batchResult *verdicts.BatchResult
	batchErr    error
}

func (m *mockVerdictService) Evaluate(_ context.Context, _ types.RouteQuery) (*types.Verdict, error) {
	return m.verdict, m.evaluateErr
}

func (m *mockVerdictService) EvaluateBatch(_ context.Context, _ []verdicts.BatchRoute) (*verdicts.BatchResult, error) {
	return m.batchResult, m.batchErr
}

// --- Mock Metrics ---

type recordingMetrics struct {
	mu        sync.Mutex
	verdicts  []string
	ingested  int
	assistant []string
}

func (m *recordingMetrics) RecordVerdict(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts = append(m.verdicts, status)
}

func (m *recordingMetrics) RecordEventIngested() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested++
}

func (m *recordingMetrics) RecordAssistantRequest(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assistant = append(m.assistant, outcome)
}

// --- Helpers ---

func safeVerdict() *types.Verdict {
	return &types.Verdict{
		RouteStatus:        types.RouteSafe,
		OverallScore:       92,
		Recommendation:     "Safe to travel (normal conditions)",
		Factors:            map[types.FactorKey]types.FactorBreakdown{},
		EstimatedTime:      "25-30 min",
		NextUpdateInterval: "60 minutes",
	}
}

func makeVerdictRouter(svc VerdictServiceInterface, metrics VerdictMetrics) http.Handler {
	logger := slog.Default()
	handler := NewVerdictHandler(svc, core.NewValidator(logger), metrics, logger)
	r := chi.NewRouter()
	r.Route("/v1/routes", handler.RegisterRoutes)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp core.APIErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error.Code
}

// --- HandleEvaluate Tests ---

func TestHandleEvaluate_Success(t *testing.T) {
	metrics := &recordingMetrics{}
	router := makeVerdictRouter(&mockVerdictService{verdict: safeVerdict()}, metrics)

	rec := postJSON(t, router, "/v1/routes/verdict", map[string]string{
		"point_a":      "Connaught Place",
		"point_b":      "Noida Sector 18",
		"vehicle_type": "car",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data types.Verdict `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.RouteStatus != types.RouteSafe {
		t.Errorf("expected route_status safe, got %s", resp.Data.RouteStatus)
	}
	if resp.Data.OverallScore != 92 {
		t.Errorf("expected overall_score 92, got %d", resp.Data.OverallScore)
	}

	if cc := rec.Header().Get("Cache-Control"); cc != "private, max-age=300" {
		t.Errorf("expected Cache-Control 'private, max-age=300', got %q", cc)
	}

	if len(metrics.verdicts) != 1 || metrics.verdicts[0] != "safe" {
		t.Errorf("expected one recorded safe verdict, got %v", metrics.verdicts)
	}
}

func TestHandleEvaluate_MissingFields(t *testing.T) {
	router := makeVerdictRouter(&mockVerdictService{verdict: safeVerdict()}, nil)

	rec := postJSON(t, router, "/v1/routes/verdict", map[string]string{
		"point_a": "Connaught Place",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != string(types.ErrCodeValidationMissingField) {
		t.Errorf("expected error code %s, got %s", types.ErrCodeValidationMissingField, code)
	}
}

func TestHandleEvaluate_InvalidJSON(t *testing.T) {
	router := makeVerdictRouter(&mockVerdictService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/routes/verdict", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleEvaluate_ServiceError(t *testing.T) {
	svc := &mockVerdictService{
		evaluateErr: types.NewAppError(types.ErrCodeValidationMissingField, "point_a and point_b are required", nil),
	}
	router := makeVerdictRouter(svc, nil)

	rec := postJSON(t, router, "/v1/routes/verdict", map[string]string{
		"point_a":      "   ",
		"point_b":      "Noida Sector 18",
		"vehicle_type": "car",
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

// --- HandleEvaluateBatch Tests ---

func TestHandleEvaluateBatch_Success(t *testing.T) {
	metrics := &recordingMetrics{}
	svc := &mockVerdictService{
		batchResult: &verdicts.BatchResult{
			Verdicts: map[string]*types.Verdict{"commute": safeVerdict()},
			Errors: map[string]verdicts.ErrorDetail{
				"broken": {Code: string(types.ErrCodeValidationMissingField), Message: "point_a and point_b are required"},
			},
		},
	}
	router := makeVerdictRouter(svc, metrics)

	rec := postJSON(t, router, "/v1/routes/verdicts", map[string]any{
		"routes": []map[string]any{
			{"id": "commute", "query": map[string]string{"point_a": "A", "point_b": "B", "vehicle_type": "car"}},
			{"id": "broken", "query": map[string]string{"point_a": "", "point_b": "B", "vehicle_type": "car"}},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data verdicts.BatchResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data.Verdicts) != 1 {
		t.Errorf("expected 1 verdict, got %d", len(resp.Data.Verdicts))
	}
	if len(resp.Data.Errors) != 1 {
		t.Errorf("expected 1 error entry, got %d", len(resp.Data.Errors))
	}
	if len(metrics.verdicts) != 1 {
		t.Errorf("expected 1 recorded verdict, got %d", len(metrics.verdicts))
	}
}

func TestHandleEvaluateBatch_EmptyRoutes(t *testing.T) {
	router := makeVerdictRouter(&mockVerdictService{}, nil)

	rec := postJSON(t, router, "/v1/routes/verdicts", map[string]any{"routes": []any{}})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleEvaluateBatch_SizeExceeded(t *testing.T) {
	svc := &mockVerdictService{
		batchErr: types.NewAppError(types.ErrCodeValidationBatchSize, "batch size 21 exceeds maximum of 20 routes", nil),
	}
	router := makeVerdictRouter(svc, nil)

	routes := make([]map[string]any, types.MaxBatchRoutes+1)
	for i := range routes {
		routes[i] = map[string]any{"id": "r", "query": map[string]string{"point_a": "A", "point_b": "B", "vehicle_type": "car"}}
	}
	rec := postJSON(t, router, "/v1/routes/verdicts", map[string]any{"routes": routes})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != string(types.ErrCodeValidationBatchSize) {
		t.Errorf("expected error code %s, got %s", types.ErrCodeValidationBatchSize, code)
	}
}
