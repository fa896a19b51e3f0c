package types

import (
	"strings"
	"time"
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RouteQuery is the immutable input of one route evaluation.
// Origin and destination are free-text place names; the engine never
// interprets them beyond keyword scanning and length heuristics.
type RouteQuery struct {
	Origin       string       `json:"point_a" validate:"required"`
	Destination  string       `json:"point_b" validate:"required"`
	VehicleClass VehicleClass `json:"vehicle_type" validate:"required"`
}

// RouteText returns the lower-cased concatenation of origin and destination,
// the form every keyword table and seed derivation operates on.
func (q RouteQuery) RouteText() string {
	return strings.ToLower(q.Origin + " " + q.Destination)
}

// VehicleProfile holds the physical capability figures for one vehicle class.
// Profiles are loaded once at process start and never mutated.
type VehicleProfile struct {
	BaseScore             int     `json:"base_score"`
	GroundClearanceInches float64 `json:"ground_clearance_in"`
	SafeWadingInches      float64 `json:"safe_wading_in"`
}

// WeatherSignal carries live readings for a resolved route location.
// A nil *WeatherSignal (or zero rainfall) routes the engine to its
// calendar-based seasonal fallback.
type WeatherSignal struct {
	RainfallMmPerHour  float64 `json:"rainfall_mm_per_hour"`
	ElevationMeters    float64 `json:"elevation_m"`
	AggregateRiskScore float64 `json:"aggregate_risk_score"`
}

// FactorBreakdown describes one scored factor of a verdict.
type FactorBreakdown struct {
	Status        FactorStatus `json:"status"`
	Description   string       `json:"description"`
	ImpactPercent int          `json:"impact"`
}

// Verdict is the full result of one route evaluation. It is a pure output
// value: re-evaluating identical inputs within the same 10-minute bucket
// must reproduce an identical Verdict.
type Verdict struct {
	RouteStatus        RouteStatus                   `json:"route_status"`
	OverallScore       int                           `json:"overall_score"`
	Recommendation     string                        `json:"recommendation"`
	Factors            map[FactorKey]FactorBreakdown `json:"factors"`
	EstimatedTime      string                        `json:"estimated_time"`
	AlternativeRoute   string                        `json:"alternative_route,omitempty"`
	NextUpdateInterval string                        `json:"next_update"`
}

// FloodEvent is a historically recorded flood observation used by the map
// and alert endpoints. Events are ingested externally; the scoring engine
// never reads them.
type FloodEvent struct {
	ID           string    `json:"id"`
	LocationName string    `json:"location_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RiskScore    float64   `json:"risk_score"`
	Severity     Severity  `json:"severity"`
	RainfallMM   float64   `json:"rainfall_mm"`
	ElevationM   float64   `json:"elevation_m"`
	Description  string    `json:"description,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// EventStats aggregates the stored flood events for dashboard display.
type EventStats struct {
	TotalEvents      int              `json:"total_events"`
	EventsLast24h    int              `json:"events_last_24h"`
	AverageRiskScore float64          `json:"average_risk_score"`
	SeverityCounts   map[Severity]int `json:"severity_distribution"`
	TopLocations     []LocationCount  `json:"most_affected_locations"`
}

// LocationCount pairs a location name with its event count.
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}
