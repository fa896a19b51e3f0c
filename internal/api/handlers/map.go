// This file implements the live map handler:
//   - Location search against recorded events (GET /v1/map/search)
//   - Current-position risk summary (POST /v1/map/locate)
//   - Heatmap overlay points (GET /v1/map/heatmap)
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"floodaura/internal/core"
	"floodaura/internal/types"
)

const (
	// searchResultLimit caps name matches returned per search.
	searchResultLimit = 25

	// locateRadiusKm is the fixed radius for nearby events around a
	// located user.
	locateRadiusKm = 5.0

	// heatmapWindow is how far back the overlay reaches.
	heatmapWindow = 30 * 24 * time.Hour

	heatmapPointLimit = 1000
)

// MapHandler serves the live map endpoints from recorded flood events and
// live weather.
type MapHandler struct {
	events  types.FloodEventRepository
	weather types.WeatherProvider
	clock   types.Clock
	logger  *slog.Logger
}

func NewMapHandler(
	events types.FloodEventRepository,
	weather types.WeatherProvider,
	clock types.Clock,
	logger *slog.Logger,
) *MapHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MapHandler{
		events:  events,
		weather: weather,
		clock:   clock,
		logger:  logger,
	}
}

// RegisterRoutes mounts the map endpoints onto the mux.
func (h *MapHandler) RegisterRoutes(r chi.Router) {
	r.Get("/search", h.HandleSearch)
	r.Post("/locate", h.HandleLocate)
	r.Get("/heatmap", h.HandleHeatmap)
}

// searchResponse describes the best match for a location search.
type searchResponse struct {
	Found          bool           `json:"found"`
	Query          string         `json:"query,omitempty"`
	Message        string         `json:"message,omitempty"`
	LocationName   string         `json:"location_name,omitempty"`
	Latitude       float64        `json:"latitude,omitempty"`
	Longitude      float64        `json:"longitude,omitempty"`
	RiskScore      float64        `json:"risk_score,omitempty"`
	Severity       types.Severity `json:"severity,omitempty"`
	MatchingEvents int            `json:"matching_events,omitempty"`
}

// HandleSearch handles GET /v1/map/search. The best match is the most
// recently recorded event whose location name contains the query.
func (h *MapHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("location")
	if query == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"location query parameter is required",
			nil,
		))
		return
	}

	matches, err := h.events.SearchByName(r.Context(), query, searchResultLimit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if len(matches) == 0 {
		core.JSON(w, r, http.StatusOK, core.APIResponse{Data: searchResponse{
			Found:   false,
			Query:   query,
			Message: "Location not found. Try searching for a nearby area.",
		}})
		return
	}

	best := matches[0]
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: searchResponse{
		Found:          true,
		LocationName:   best.LocationName,
		Latitude:       best.Latitude,
		Longitude:      best.Longitude,
		RiskScore:      best.RiskScore,
		Severity:       best.Severity,
		MatchingEvents: len(matches),
	}})
}

// locateRequest is the body of POST /v1/map/locate.
type locateRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// nearbyEvent is one recorded event close to the located position.
type nearbyEvent struct {
	ID           string         `json:"id"`
	LocationName string         `json:"location_name"`
	Severity     types.Severity `json:"severity"`
	RiskScore    float64        `json:"risk_score"`
	DistanceKm   float64        `json:"distance_km"`
}

// locateResponse summarizes flood risk at the located position.
type locateResponse struct {
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	RiskScore    float64        `json:"risk_score"`
	Severity     types.Severity `json:"severity"`
	RainfallMM   float64        `json:"rainfall_mm"`
	ElevationM   float64        `json:"elevation_m"`
	NearbyEvents int            `json:"nearby_events"`
	Nearest      []nearbyEvent  `json:"nearest_events"`
}

// HandleLocate handles POST /v1/map/locate. Live weather drives the risk
// summary; a weather outage degrades to the recorded events alone rather
// than failing the request.
func (h *MapHandler) HandleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := types.ValidateCoordinates(req.Lat, req.Lng); err != nil {
		core.Error(w, r, err)
		return
	}

	loc := types.Location{Lat: req.Lat, Lon: req.Lng}
	resp := locateResponse{
		Latitude:  req.Lat,
		Longitude: req.Lng,
		Severity:  types.SeverityLow,
		Nearest:   []nearbyEvent{},
	}

	sig, err := h.weather.Signal(r.Context(), loc)
	if err != nil {
		h.logger.Warn("weather lookup failed for locate", "lat", req.Lat, "lng", req.Lng, "error", err)
	} else if sig != nil {
		resp.RiskScore = sig.AggregateRiskScore
		resp.Severity = SeverityForScore(sig.AggregateRiskScore)
		resp.RainfallMM = sig.RainfallMmPerHour
		resp.ElevationM = sig.ElevationMeters
	}

	cutoff := h.clock.Now().Add(-48 * time.Hour)
	events, err := h.events.ListNearby(r.Context(), loc, locateRadiusKm, cutoff)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	resp.NearbyEvents = len(events)
	for i, ev := range events {
		if i == 5 {
			break
		}
		at := types.Location{Lat: ev.Latitude, Lon: ev.Longitude}
		resp.Nearest = append(resp.Nearest, nearbyEvent{
			ID:           ev.ID,
			LocationName: ev.LocationName,
			Severity:     ev.Severity,
			RiskScore:    ev.RiskScore,
			DistanceKm:   types.DistanceKm(loc, at),
		})
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// heatmapPoint is one overlay sample; intensity is the risk score
// normalized to [0, 1].
type heatmapPoint struct {
	Lat       float64        `json:"lat"`
	Lng       float64        `json:"lng"`
	Intensity float64        `json:"intensity"`
	Severity  types.Severity `json:"severity"`
	Location  string         `json:"location"`
}

type heatmapResponse struct {
	Points      []heatmapPoint `json:"points"`
	TotalPoints int            `json:"total_points"`
	LastUpdated time.Time      `json:"last_updated"`
}

// HandleHeatmap handles GET /v1/map/heatmap.
func (h *MapHandler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	events, err := h.events.ListRecent(r.Context(), now.Add(-heatmapWindow), "", heatmapPointLimit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	points := make([]heatmapPoint, 0, len(events))
	for _, ev := range events {
		points = append(points, heatmapPoint{
			Lat:       ev.Latitude,
			Lng:       ev.Longitude,
			Intensity: ev.RiskScore / 100,
			Severity:  ev.Severity,
			Location:  ev.LocationName,
		})
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: heatmapResponse{
		Points:      points,
		TotalPoints: len(points),
		LastUpdated: now,
	}})
}

// SeverityForScore grades an aggregate risk score the same way ingested
// events are graded.
func SeverityForScore(score float64) types.Severity {
	switch {
	case score >= 80:
		return types.SeverityCritical
	case score >= 60:
		return types.SeverityHigh
	case score >= 40:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}
