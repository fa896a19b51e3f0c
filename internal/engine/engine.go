// Package engine scores flood risk for a route. Evaluation is a pure
// function of its inputs: the same query, weather signal and 10-minute time
// bucket always produce the same verdict. All I/O (geocoding, weather,
// storage) lives outside this package.
package engine

import (
	"strings"

	"floodaura/internal/types"
)

// Engine computes route verdicts. It is stateless aside from its injected
// clock and safe for concurrent use; Tunables are fixed at construction.
type Engine struct {
	clock types.Clock
	tun   Tunables
}

func New(clock types.Clock, tun Tunables) *Engine {
	return &Engine{clock: clock, tun: tun}
}

// Evaluate scores a route for a vehicle at the current time. The weather
// signal is optional; nil (or a signal without rainfall) selects the
// calendar-based seasonal estimate. The clock reading is truncated to its
// 10-minute bucket before any time-dependent computation, so repeated calls
// within a bucket are reproducible.
func (e *Engine) Evaluate(q types.RouteQuery, sig *types.WeatherSignal) (*types.Verdict, error) {
	origin := strings.TrimSpace(q.Origin)
	destination := strings.TrimSpace(q.Destination)
	if origin == "" || destination == "" {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField,
			"point_a and point_b are required", nil)
	}

	t := BucketStart(e.clock.Now())
	vehicle := NormalizeVehicleClass(string(q.VehicleClass))
	profile := ProfileFor(vehicle)

	routeText := strings.ToLower(origin + " " + destination)
	loc := AnalyzeLocation(routeText)
	seeds := NewSeeds(origin, destination, t)
	signals := Normalize(sig, seeds, t, e.tun)

	agg := CombineRisks(loc, vehicle, profile, signals, t, e.tun)
	cls := Classify(agg.FinalScore, len(origin)+len(destination), agg, signals)

	return &types.Verdict{
		RouteStatus:    cls.Status,
		OverallScore:   agg.FinalScore,
		Recommendation: cls.Recommendation,
		Factors: map[types.FactorKey]types.FactorBreakdown{
			types.FactorRainfall: {
				Status:        signals.RainfallStatus,
				Description:   signals.RainfallDescription,
				ImpactPercent: int(signals.RainfallImpact),
			},
			types.FactorWaterlogging: {
				Status:        agg.WaterlogStatus,
				Description:   agg.WaterlogDescription,
				ImpactPercent: agg.WaterlogImpact,
			},
			types.FactorTraffic: {
				Status:        agg.TrafficStatus,
				Description:   agg.TrafficDescription,
				ImpactPercent: agg.TrafficImpact,
			},
			types.FactorVehicleSuitability: {
				Status:        agg.VehicleStatus,
				Description:   agg.VehicleDescription,
				ImpactPercent: agg.VehicleImpact,
			},
		},
		EstimatedTime:      cls.EstimatedTime,
		AlternativeRoute:   SuggestAlternative(routeText, agg.FinalScore, loc),
		NextUpdateInterval: cls.NextUpdateInterval,
	}, nil
}
