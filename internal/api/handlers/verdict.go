// Package handlers contains the HTTP handler implementations for the
// FloodAura API.
//
// This file implements the route verdict handler:
//   - Single route evaluation (POST /v1/routes/verdict)
//   - Batch route evaluation (POST /v1/routes/verdicts)
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"floodaura/internal/core"
	"floodaura/internal/types"
	"floodaura/internal/verdicts"
)

// VerdictServiceInterface defines the service contract for the verdict
// handler. Matches the verdicts.Service methods but is defined locally to
// avoid tight coupling per the handler injection pattern.
type VerdictServiceInterface interface {
	Evaluate(ctx context.Context, q types.RouteQuery) (*types.Verdict, error)
	EvaluateBatch(ctx context.Context, routes []verdicts.BatchRoute) (*verdicts.BatchResult, error)
}

// VerdictMetrics counts issued verdicts by route status. Nil disables
// recording.
type VerdictMetrics interface {
	RecordVerdict(routeStatus string)
}

// VerdictHandler maps HTTP requests to the verdict service.
type VerdictHandler struct {
	service   VerdictServiceInterface
	validator *core.Validator
	metrics   VerdictMetrics
	logger    *slog.Logger
}

// NewVerdictHandler creates a new VerdictHandler with the provided
// dependencies.
func NewVerdictHandler(
	svc VerdictServiceInterface,
	val *core.Validator,
	metrics VerdictMetrics,
	logger *slog.Logger,
) *VerdictHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerdictHandler{
		service:   svc,
		validator: val,
		metrics:   metrics,
		logger:    logger,
	}
}

// RegisterRoutes mounts the verdict endpoints onto the mux.
func (h *VerdictHandler) RegisterRoutes(r chi.Router) {
	r.Post("/verdict", h.HandleEvaluate)
	r.Post("/verdicts", h.HandleEvaluateBatch)
}

// batchVerdictRequest is the body of POST /v1/routes/verdicts.
type batchVerdictRequest struct {
	Routes []verdicts.BatchRoute `json:"routes" validate:"required,min=1"`
}

// HandleEvaluate handles POST /v1/routes/verdict.
func (h *VerdictHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var q types.RouteQuery
	if err := core.DecodeJSON(w, r, &q); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		core.Error(w, r, err)
		return
	}

	verdict, err := h.service.Evaluate(r.Context(), q)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordVerdict(string(verdict.RouteStatus))
	}

	// Verdicts are stable within their 10-minute bucket; let clients reuse
	// them for half of it.
	w.Header().Set("Cache-Control", "private, max-age=300")

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: verdict})
}

// HandleEvaluateBatch handles POST /v1/routes/verdicts.
func (h *VerdictHandler) HandleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchVerdictRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.service.EvaluateBatch(r.Context(), req.Routes)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if h.metrics != nil {
		for _, v := range result.Verdicts {
			h.metrics.RecordVerdict(string(v.RouteStatus))
		}
	}

	w.Header().Set("Cache-Control", "private, max-age=300")

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: result})
}
