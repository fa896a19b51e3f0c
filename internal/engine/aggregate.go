package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"floodaura/internal/types"
)

// Aggregate is the combined risk picture for one evaluation, prior to
// classification.
type Aggregate struct {
	WaterlogImpact      int
	WaterlogStatus      types.FactorStatus
	WaterlogDescription string

	TrafficImpact      int
	TrafficStatus      types.FactorStatus
	TrafficDescription string

	VehicleImpact      int
	VehicleStatus      types.FactorStatus
	VehicleDescription string

	// ComprehensiveRisk is the drainage-scaled weighted risk in [0, 100].
	ComprehensiveRisk float64
	// FinalScore is the inverse safety score, truncated to an integer.
	FinalScore int
}

// suitabilityEntry is one cell of the vehicle-suitability matrix.
type suitabilityEntry struct {
	status types.FactorStatus
	impact float64
}

// suitabilityBand maps the three vehicle groups to their suitability for one
// waterlogging band. Impacts decrease monotonically with clearance so that a
// high-clearance vehicle never scores worse than a two-wheeler.
type suitabilityBand struct {
	minWaterlog float64 // exclusive lower bound
	byGroup     map[vehicleGroup]suitabilityEntry
}

var suitabilityBands = []suitabilityBand{
	{minWaterlog: 75, byGroup: map[vehicleGroup]suitabilityEntry{
		groupHighClearance: {types.FactorModerate, 30},
		groupPassenger:     {types.FactorUnsuitable, 65},
		groupTwoWheeler:    {types.FactorUnsuitable, 85},
	}},
	{minWaterlog: 50, byGroup: map[vehicleGroup]suitabilityEntry{
		groupHighClearance: {types.FactorSuitable, 18},
		groupPassenger:     {types.FactorModerate, 40},
		groupTwoWheeler:    {types.FactorUnsuitable, 60},
	}},
	{minWaterlog: 25, byGroup: map[vehicleGroup]suitabilityEntry{
		groupHighClearance: {types.FactorSuitable, 10},
		groupPassenger:     {types.FactorSuitable, 16},
		groupTwoWheeler:    {types.FactorModerate, 30},
	}},
	{minWaterlog: -1, byGroup: map[vehicleGroup]suitabilityEntry{
		groupHighClearance: {types.FactorSuitable, 6},
		groupPassenger:     {types.FactorSuitable, 12},
		groupTwoWheeler:    {types.FactorModerate, 20},
	}},
}

// CombineRisks runs the weighted aggregation pipeline. The ordering of
// effects is fixed: waterlogging base, waterlogging contributions with
// saturation, traffic, vehicle suitability, comprehensive risk, final score.
func CombineRisks(
	loc LocationRisk,
	vehicle types.VehicleClass,
	profile types.VehicleProfile,
	sig Signals,
	now time.Time,
	tun Tunables,
) Aggregate {
	// Step 1: waterlogging base. Live aggregate risk wins over the keyword
	// heuristic when available.
	var waterlogBase float64
	if sig.LiveRisk != nil {
		waterlogBase = *sig.LiveRisk * tun.WaterlogLiveFactor * sig.DrainageMultiplier
	} else {
		waterlogBase = float64(loc.Score) * tun.WaterlogLocationFactor
	}

	// Step 2: waterlogging impact. Rain grows super-linearly; the saturation
	// curve compresses values approaching 100.
	rainContrib := sig.RainfallImpact * tun.RainContribFactor *
		(1 + math.Pow(sig.RainfallImpact/100, tun.RainContribExponent))
	elevContrib := sig.ElevationRisk * tun.ElevationContribFactor
	vehiclePenalty := (100 - float64(profile.BaseScore)) * tun.VehiclePenaltyFactor

	raw := waterlogBase + rainContrib + elevContrib + vehiclePenalty
	waterlog := clamp(raw*(1-tun.SaturationFactor*(raw/100)), 0, 100)

	// Step 3: traffic impact.
	trafficBase, trafficDesc := trafficBaseline(now)
	mult := weatherCongestionMultiplier(sig.RainfallImpact)
	traffic := clamp(trafficBase*mult, 0, 100)
	if mult > 1 {
		trafficDesc += "; rain will slow traffic further"
	}

	// Step 4: vehicle suitability.
	suit, suitDesc := suitabilityFor(vehicle, profile, waterlog)

	// Step 5: comprehensive risk, scaled by drainage. Favorable drainage
	// applies in full; unfavorable drainage is capped.
	comp := waterlog*tun.WeightWaterlog +
		suit.impact*tun.WeightVehicle +
		sig.RainfallImpact*tun.WeightRainfall +
		traffic*tun.WeightTraffic
	if sig.DrainageMultiplier < 1 {
		comp *= sig.DrainageMultiplier
	} else {
		comp *= math.Min(sig.DrainageMultiplier, tun.DrainagePenaltyCap)
	}
	comp = clamp(comp, 0, 100)

	// Step 6: final safety score. Risk above 70 collapses the score sharply;
	// risk below 40 barely moves an already-safe score.
	var score float64
	switch {
	case comp > 70:
		score = math.Max(0, 30-(comp-70)*1.5)
	case comp > 40:
		score = math.Max(30, 70-(comp-40))
	default:
		score = math.Max(70, 100-comp*0.75)
	}
	score = clamp(score, 0, 100)

	return Aggregate{
		WaterlogImpact:      int(waterlog),
		WaterlogStatus:      waterlogStatus(waterlog),
		WaterlogDescription: waterlogDescription(waterlog, vehicle, profile),

		TrafficImpact:      int(traffic),
		TrafficStatus:      trafficStatus(traffic),
		TrafficDescription: trafficDesc,

		VehicleImpact:      int(suit.impact),
		VehicleStatus:      suit.status,
		VehicleDescription: suitDesc,

		ComprehensiveRisk: comp,
		FinalScore:        int(score),
	}
}

// trafficBaseline returns the congestion base value for the day and hour.
// Weekday peaks dominate, then weekday midday, then weekend daytime, then
// night and off-peak hours.
func trafficBaseline(now time.Time) (float64, string) {
	h := now.Hour()
	weekday := now.Weekday() != time.Saturday && now.Weekday() != time.Sunday

	switch {
	case weekday && ((h >= 7 && h <= 10) || (h >= 17 && h <= 20)):
		return 45, "Heavy traffic during peak hours"
	case weekday && h > 10 && h < 17:
		return 25, "Moderate weekday traffic expected"
	case !weekday && h >= 9 && h <= 21:
		return 18, "Light weekend traffic expected"
	default:
		return 10, "Light traffic during off-peak hours"
	}
}

// weatherCongestionMultiplier escalates traffic step-wise with rainfall.
func weatherCongestionMultiplier(rainfallImpact float64) float64 {
	switch {
	case rainfallImpact >= 70:
		return 2.1
	case rainfallImpact >= 50:
		return 1.7
	case rainfallImpact >= 30:
		return 1.35
	case rainfallImpact >= 15:
		return 1.15
	default:
		return 1.0
	}
}

func suitabilityFor(vehicle types.VehicleClass, profile types.VehicleProfile, waterlog float64) (suitabilityEntry, string) {
	group := groupFor(vehicle)
	for _, band := range suitabilityBands {
		if waterlog > band.minWaterlog {
			entry := band.byGroup[group]
			return entry, suitabilityDescription(entry.status, vehicle, profile)
		}
	}
	// Unreachable: the last band's bound is below any clamped waterlog value.
	entry := suitabilityBands[len(suitabilityBands)-1].byGroup[group]
	return entry, suitabilityDescription(entry.status, vehicle, profile)
}

func suitabilityDescription(status types.FactorStatus, vehicle types.VehicleClass, profile types.VehicleProfile) string {
	name := strings.ToUpper(string(NormalizeVehicleClass(string(vehicle))))
	switch status {
	case types.FactorSuitable:
		return fmt.Sprintf("%s is well suited; %.0f in of safe wading depth covers expected conditions", name, profile.SafeWadingInches)
	case types.FactorModerate:
		return fmt.Sprintf("%s can proceed with care; avoid water deeper than %.0f in", name, profile.SafeWadingInches)
	default:
		return fmt.Sprintf("%s is not suited to these conditions; water may exceed the %.0f in safe wading depth", name, profile.SafeWadingInches)
	}
}

func waterlogStatus(waterlog float64) types.FactorStatus {
	switch {
	case waterlog > 70:
		return types.FactorHigh
	case waterlog > 40:
		return types.FactorModerate
	default:
		return types.FactorLow
	}
}

func waterlogDescription(waterlog float64, vehicle types.VehicleClass, profile types.VehicleProfile) string {
	name := strings.ToUpper(string(NormalizeVehicleClass(string(vehicle))))
	switch {
	case waterlog > 70:
		return fmt.Sprintf("Severe waterlogging likely along the route; water depth may exceed %.0f in (unsafe for %s)", profile.SafeWadingInches, name)
	case waterlog > 40:
		return fmt.Sprintf("Moderate waterlogging possible in low-lying sections; depths up to %.0f in expected", profile.SafeWadingInches)
	default:
		return fmt.Sprintf("Well-drained route with minimal waterlogging risk; safe for %s", name)
	}
}

func trafficStatus(traffic float64) types.FactorStatus {
	switch {
	case traffic >= 50:
		return types.FactorHigh
	case traffic >= 25:
		return types.FactorModerate
	default:
		return types.FactorLow
	}
}
