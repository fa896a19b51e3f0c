package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"floodaura/internal/types"
)

func TestJSONWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	JSON(rec, req, http.StatusCreated, APIResponse{Data: map[string]string{"k": "v"}})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
}

func TestErrorWithAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(types.WithRequestID(req.Context(), "req-123"))

	appErr := types.NewAppError(types.ErrCodeNotFoundLocation, "location not found", nil)
	Error(rec, req, appErr)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	var body APIErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body.Error.Code != string(types.ErrCodeNotFoundLocation) {
		t.Errorf("code = %q", body.Error.Code)
	}
	if body.Error.RequestID != "req-123" {
		t.Errorf("request_id = %q, want req-123", body.Error.RequestID)
	}
}

func TestErrorWithWrappedAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	appErr := types.NewAppError(types.ErrCodeUpstreamWeather, "weather source down", nil)
	Error(rec, req, errors.Join(errors.New("outer"), appErr))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestErrorWithGenericError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	Error(rec, req, errors.New("sensitive internal detail"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "sensitive") {
		t.Error("internal error detail leaked to client")
	}
}

func TestDecodeJSONValid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"point_a":"A","point_b":"B","vehicle_type":"car"}`))

	var q types.RouteQuery
	if err := DecodeJSON(rec, req, &q); err != nil {
		t.Fatalf("DecodeJSON returned error: %v", err)
	}
	if q.Origin != "A" || q.Destination != "B" {
		t.Errorf("decoded %+v", q)
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed", `{"point_a":`},
		{"unknown field", `{"point_a":"A","bogus":1}`},
		{"type mismatch", `{"point_a":5}`},
		{"multiple values", `{"point_a":"A"}{"point_a":"B"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tc.body))

			var q types.RouteQuery
			err := DecodeJSON(rec, req, &q)
			if err == nil {
				t.Fatal("DecodeJSON should fail")
			}

			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("error is %T, want *types.AppError", err)
			}
			if appErr.Code != errCodeValidationInvalidJSON {
				t.Errorf("code = %q, want %q", appErr.Code, errCodeValidationInvalidJSON)
			}
			if appErr.HTTPStatus() != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", appErr.HTTPStatus())
			}
		})
	}
}
