// This file implements the flood event ingest handler
// (POST /v1/events), guarded by the admin API key.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"floodaura/internal/config"
	"floodaura/internal/core"
	"floodaura/internal/types"
)

// AdminKeyHeader carries the admin API key on ingest requests.
const AdminKeyHeader = "X-Admin-Api-Key"

// IngestMetrics counts accepted flood events. Nil disables recording.
type IngestMetrics interface {
	RecordEventIngested()
}

// EventsHandler accepts externally observed flood events into storage.
type EventsHandler struct {
	events    types.FloodEventRepository
	validator *core.Validator
	security  config.SecurityConfig
	clock     types.Clock
	metrics   IngestMetrics
	logger    *slog.Logger
}

func NewEventsHandler(
	events types.FloodEventRepository,
	val *core.Validator,
	security config.SecurityConfig,
	clock types.Clock,
	metrics IngestMetrics,
	logger *slog.Logger,
) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		events:    events,
		validator: val,
		security:  security,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// RegisterRoutes mounts the ingest endpoint onto the mux.
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.With(h.RequireAdminKey).Post("/", h.HandleIngest)
}

// RequireAdminKey rejects requests that do not carry the admin API key
// matching the configured bcrypt hash.
func (h *EventsHandler) RequireAdminKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(AdminKeyHeader)
		if key == "" {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeAuthKeyMissing,
				"admin API key is required",
				nil,
			))
			return
		}
		hash := h.security.AdminAPIKeyHash.Unmask()
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
			h.logger.Warn("rejected event ingest with invalid admin key")
			core.Error(w, r, types.NewAppError(
				types.ErrCodeAuthKeyInvalid,
				"admin API key is not valid",
				nil,
			))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ingestRequest is the body of POST /v1/events. Timestamp is optional and
// defaults to the current time.
type ingestRequest struct {
	LocationName string     `json:"location_name" validate:"required"`
	Latitude     float64    `json:"latitude" validate:"min=-90,max=90"`
	Longitude    float64    `json:"longitude" validate:"min=-180,max=180"`
	RiskScore    float64    `json:"risk_score" validate:"min=0,max=100"`
	Severity     string     `json:"severity" validate:"required"`
	RainfallMM   float64    `json:"rainfall_mm" validate:"min=0"`
	ElevationM   float64    `json:"elevation_m"`
	Description  string     `json:"description"`
	Timestamp    *time.Time `json:"timestamp"`
}

// HandleIngest handles POST /v1/events.
func (h *EventsHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	severity := types.Severity(req.Severity)
	if !severity.Valid() {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidSeverity,
			"severity must be one of Low, Medium, High, Critical",
			nil,
		))
		return
	}

	timestamp := h.clock.Now()
	if req.Timestamp != nil {
		timestamp = req.Timestamp.UTC()
	}

	ev := &types.FloodEvent{
		ID:           "evt_" + uuid.NewString(),
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RiskScore:    req.RiskScore,
		Severity:     severity,
		RainfallMM:   req.RainfallMM,
		ElevationM:   req.ElevationM,
		Description:  req.Description,
		Timestamp:    timestamp,
	}

	if err := h.events.Insert(r.Context(), ev); err != nil {
		core.Error(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordEventIngested()
	}
	h.logger.Info("flood event ingested",
		"event_id", ev.ID,
		"location", ev.LocationName,
		"severity", ev.Severity,
	)

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: ev})
}
