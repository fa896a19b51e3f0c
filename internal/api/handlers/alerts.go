// This file implements the alerts handler:
//   - Active alerts (GET /v1/alerts/active)
//   - Alert history with statistics (GET /v1/alerts/history)
//   - System-wide statistics (GET /v1/alerts/statistics)
//   - Location-scoped alerts (GET /v1/alerts/nearby)
package handlers

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"floodaura/internal/core"
	"floodaura/internal/types"
)

const (
	// activeAlertWindow is how far back an event still counts as active.
	activeAlertWindow = 48 * time.Hour

	defaultAlertLimit = 50
	maxAlertLimit     = 100

	defaultHistoryDays = 7
	maxHistoryDays     = 30
	historyScanLimit   = 1000
	historyListLimit   = 50

	defaultNearbyRadiusKm = 10.0
)

// AlertsHandler serves alert listings and statistics from recorded flood
// events.
type AlertsHandler struct {
	events types.FloodEventRepository
	clock  types.Clock
	logger *slog.Logger
}

func NewAlertsHandler(events types.FloodEventRepository, clock types.Clock, logger *slog.Logger) *AlertsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertsHandler{
		events: events,
		clock:  clock,
		logger: logger,
	}
}

// RegisterRoutes mounts the alert endpoints onto the mux.
func (h *AlertsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/active", h.HandleActive)
	r.Get("/history", h.HandleHistory)
	r.Get("/statistics", h.HandleStatistics)
	r.Get("/nearby", h.HandleNearby)
}

// alert is one active alert entry for client display.
type alert struct {
	ID          string         `json:"id"`
	Location    string         `json:"location"`
	Risk        types.Severity `json:"risk"`
	RiskScore   float64        `json:"risk_score"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Window      string         `json:"time"`
	RainfallMM  float64        `json:"rainfall_mm"`
	ElevationM  float64        `json:"elevation_m"`
	Description string         `json:"description"`
	Timestamp   time.Time      `json:"timestamp"`
}

// HandleActive handles GET /v1/alerts/active. Events from the last 48 hours
// are returned most severe first.
func (h *AlertsHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	severity := types.Severity(q.Get("severity"))
	if severity != "" && !severity.Valid() {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidSeverity,
			"severity must be one of Low, Medium, High, Critical",
			nil,
		))
		return
	}

	limit := defaultAlertLimit
	if limitStr := q.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > maxAlertLimit {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationMissingField,
				fmt.Sprintf("limit must be an integer between 1 and %d", maxAlertLimit),
				nil,
			))
			return
		}
		limit = parsed
	}

	now := h.clock.Now()
	events, err := h.events.ListRecent(r.Context(), now.Add(-activeAlertWindow), severity, limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	alerts := make([]alert, 0, len(events))
	for _, ev := range events {
		alerts = append(alerts, toAlert(ev, now))
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: alerts})
}

// historyEntry is a trimmed event record for the history listing.
type historyEntry struct {
	ID        string         `json:"id"`
	Location  string         `json:"location"`
	Severity  types.Severity `json:"severity"`
	RiskScore float64        `json:"risk_score"`
	Timestamp time.Time      `json:"timestamp"`
}

type historyResponse struct {
	PeriodDays        int                    `json:"period_days"`
	TotalAlerts       int                    `json:"total_alerts"`
	SeverityBreakdown map[types.Severity]int `json:"severity_breakdown"`
	AverageRiskScore  float64                `json:"average_risk_score"`
	Alerts            []historyEntry         `json:"alerts"`
}

// HandleHistory handles GET /v1/alerts/history.
func (h *AlertsHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	days := defaultHistoryDays
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 1 || parsed > maxHistoryDays {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationMissingField,
				fmt.Sprintf("days must be an integer between 1 and %d", maxHistoryDays),
				nil,
			))
			return
		}
		days = parsed
	}

	now := h.clock.Now()
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	events, err := h.events.ListRecent(r.Context(), cutoff, "", historyScanLimit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	resp := historyResponse{
		PeriodDays:  days,
		TotalAlerts: len(events),
		SeverityBreakdown: map[types.Severity]int{
			types.SeverityCritical: 0,
			types.SeverityHigh:     0,
			types.SeverityMedium:   0,
			types.SeverityLow:      0,
		},
		Alerts: []historyEntry{},
	}

	var scoreSum float64
	for i, ev := range events {
		resp.SeverityBreakdown[ev.Severity]++
		scoreSum += ev.RiskScore
		if i < historyListLimit {
			resp.Alerts = append(resp.Alerts, historyEntry{
				ID:        ev.ID,
				Location:  ev.LocationName,
				Severity:  ev.Severity,
				RiskScore: ev.RiskScore,
				Timestamp: ev.Timestamp,
			})
		}
	}
	if len(events) > 0 {
		resp.AverageRiskScore = math.Round(scoreSum/float64(len(events))*100) / 100
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// HandleStatistics handles GET /v1/alerts/statistics.
func (h *AlertsHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.events.Stats(r.Context(), h.clock.Now())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: stats})
}

// nearbyAlert extends an alert with its distance from the query point.
type nearbyAlert struct {
	alert
	DistanceKm float64 `json:"distance_km"`
}

// HandleNearby handles GET /v1/alerts/nearby. Only high and critical grade
// events are returned; lower grades are not worth a push notification.
func (h *AlertsHandler) HandleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := parseCoordParam(q.Get("latitude"), "latitude")
	if err != nil {
		core.Error(w, r, err)
		return
	}
	lon, err := parseCoordParam(q.Get("longitude"), "longitude")
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if err := types.ValidateCoordinates(lat, lon); err != nil {
		core.Error(w, r, err)
		return
	}

	radiusKm := defaultNearbyRadiusKm
	if radiusStr := q.Get("radius_km"); radiusStr != "" {
		parsed, perr := strconv.ParseFloat(radiusStr, 64)
		if perr != nil {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationInvalidRadius,
				"radius_km must be a valid number",
				nil,
			))
			return
		}
		radiusKm = parsed
	}
	if err := types.ValidateSearchRadius(radiusKm); err != nil {
		core.Error(w, r, err)
		return
	}

	now := h.clock.Now()
	center := types.Location{Lat: lat, Lon: lon}
	events, err := h.events.ListNearby(r.Context(), center, radiusKm, now.Add(-activeAlertWindow))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	alerts := make([]nearbyAlert, 0, len(events))
	for _, ev := range events {
		if ev.Severity != types.SeverityHigh && ev.Severity != types.SeverityCritical {
			continue
		}
		at := types.Location{Lat: ev.Latitude, Lon: ev.Longitude}
		alerts = append(alerts, nearbyAlert{
			alert:      toAlert(ev, now),
			DistanceKm: types.DistanceKm(center, at),
		})
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: alerts})
}

// toAlert converts a stored event into its display form. The window string
// estimates time until peak flooding: fresher events get longer windows.
func toAlert(ev types.FloodEvent, now time.Time) alert {
	hoursAgo := int(now.Sub(ev.Timestamp).Hours())
	forecastHours := 8 - hoursAgo
	if forecastHours < 1 {
		forecastHours = 1
	}
	window := fmt.Sprintf("%d hours", forecastHours)
	if forecastHours == 1 {
		window = "60 minutes"
	}

	description := ev.Description
	if description == "" {
		description = fmt.Sprintf("%s risk flooding expected", ev.Severity)
	}

	return alert{
		ID:          ev.ID,
		Location:    ev.LocationName,
		Risk:        ev.Severity,
		RiskScore:   ev.RiskScore,
		Latitude:    ev.Latitude,
		Longitude:   ev.Longitude,
		Window:      window,
		RainfallMM:  ev.RainfallMM,
		ElevationM:  ev.ElevationM,
		Description: description,
		Timestamp:   ev.Timestamp,
	}
}

func parseCoordParam(raw, name string) (float64, error) {
	if raw == "" {
		return 0, types.NewAppError(
			types.ErrCodeValidationMissingField,
			name+" query parameter is required",
			nil,
		)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		code := types.ErrCodeValidationInvalidLat
		if name == "longitude" {
			code = types.ErrCodeValidationInvalidLon
		}
		return 0, types.NewAppError(code, name+" must be a valid number", nil)
	}
	return v, nil
}
