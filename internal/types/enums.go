package types

// VehicleClass identifies the vehicle category a route is evaluated for.
type VehicleClass string

const (
	VehicleBike    VehicleClass = "bike"
	VehicleScooter VehicleClass = "scooter"
	VehicleCar     VehicleClass = "car"
	VehicleSedan   VehicleClass = "sedan"
	VehicleSUV     VehicleClass = "suv"
	VehicleTruck   VehicleClass = "truck"
)

// AllVehicleClasses lists the recognized vehicle classes.
var AllVehicleClasses = []VehicleClass{
	VehicleBike, VehicleScooter, VehicleCar, VehicleSedan, VehicleSUV, VehicleTruck,
}

// RouteStatus classifies the overall travel verdict for a route.
type RouteStatus string

const (
	RouteSafe         RouteStatus = "safe"
	RouteModerateRisk RouteStatus = "moderate_risk"
	RouteHighRisk     RouteStatus = "high_risk"
	RouteUnsafe       RouteStatus = "unsafe"
)

// Valid reports whether s is one of the recognized route statuses.
func (s RouteStatus) Valid() bool {
	switch s {
	case RouteSafe, RouteModerateRisk, RouteHighRisk, RouteUnsafe:
		return true
	}
	return false
}

// FactorStatus grades a single risk factor within a verdict.
// The rainfall/waterlogging/traffic factors use low/moderate/high;
// the vehicle-suitability factor uses suitable/moderate/unsuitable.
type FactorStatus string

const (
	FactorLow      FactorStatus = "low"
	FactorModerate FactorStatus = "moderate"
	FactorHigh     FactorStatus = "high"

	FactorSuitable   FactorStatus = "suitable"
	FactorUnsuitable FactorStatus = "unsuitable"
)

// FactorKey names the four factor entries of a verdict.
type FactorKey string

const (
	FactorRainfall           FactorKey = "rainfall"
	FactorWaterlogging       FactorKey = "waterlogging"
	FactorTraffic            FactorKey = "traffic"
	FactorVehicleSuitability FactorKey = "vehicle_suitability"
)

// Severity grades a recorded flood event.
// These values MUST match the CHECK constraint on the flood_events table.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Valid reports whether s is one of the recognized severity grades.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// AllSeverities lists the recognized severity grades from least to most severe.
var AllSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
