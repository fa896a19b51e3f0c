package engine

import (
	"fmt"

	"floodaura/internal/types"
)

// Classification is the human-facing outcome for a score: status,
// recommendation text, travel-time estimate and refresh cadence.
type Classification struct {
	Status             types.RouteStatus
	Recommendation     string
	EstimatedTime      string
	NextUpdateInterval string
}

// Classify maps a final score onto a route status and recommendation, and
// derives the travel-time range from route length, traffic and weather.
func Classify(score int, routeTextLen int, agg Aggregate, sig Signals) Classification {
	base := baseTravelMinutes(routeTextLen)

	trafficDelay := base * trafficDelayFraction(float64(agg.TrafficImpact))
	weatherDelay := base * weatherDelayFraction((sig.RainfallImpact+float64(agg.WaterlogImpact))/2)
	total := int(base + trafficDelay + weatherDelay)

	var (
		status types.RouteStatus
		rec    string
		lo, hi int
		suffix string
	)
	switch {
	case score >= 85:
		status = types.RouteSafe
		rec = "Route is clear. Safe to travel."
		lo, hi = total, total+5
		suffix = " (normal conditions)"
	case score >= 70:
		status = types.RouteSafe
		rec = "Route is safe with minor caution advised."
		lo, hi = total, total+10
		suffix = " (minor delays possible)"
	case score >= 55:
		status = types.RouteModerateRisk
		rec = "Proceed with caution. Watch for waterlogged stretches and allow extra time."
		lo, hi = total+5, total+20
		suffix = " (delays likely)"
	case score >= 35:
		status = types.RouteHighRisk
		rec = "Travel is risky. Postpone if possible, or use the suggested alternative."
		lo, hi = total+10, total+30
		suffix = " (significant delays expected)"
	default:
		status = types.RouteUnsafe
		rec = "Do not travel this route now. Conditions are dangerous."
		lo, hi = total+20, total+45
		suffix = " (severe conditions)"
	}

	return Classification{
		Status:             status,
		Recommendation:     rec,
		EstimatedTime:      fmt.Sprintf("%d-%d min%s", lo, hi, suffix),
		NextUpdateInterval: nextUpdateInterval(score),
	}
}

// baseTravelMinutes estimates trip length from the combined length of the
// origin and destination text. Crude, but stable and monotonic.
func baseTravelMinutes(routeTextLen int) float64 {
	switch {
	case routeTextLen <= 20:
		return 15
	case routeTextLen <= 35:
		return 25
	case routeTextLen <= 50:
		return 40
	case routeTextLen <= 70:
		return 55
	default:
		return 70
	}
}

func trafficDelayFraction(traffic float64) float64 {
	switch {
	case traffic >= 70:
		return 0.8
	case traffic >= 50:
		return 0.5
	case traffic >= 30:
		return 0.3
	case traffic >= 15:
		return 0.15
	default:
		return 0.1
	}
}

func weatherDelayFraction(avgImpact float64) float64 {
	switch {
	case avgImpact >= 80:
		return 0.9
	case avgImpact >= 60:
		return 0.6
	case avgImpact >= 40:
		return 0.35
	case avgImpact >= 20:
		return 0.2
	default:
		return 0.1
	}
}

// nextUpdateInterval shortens the refresh cadence as conditions worsen.
func nextUpdateInterval(score int) string {
	switch {
	case score < 35:
		return "10 minutes"
	case score < 55:
		return "15 minutes"
	case score < 70:
		return "30 minutes"
	case score < 85:
		return "45 minutes"
	default:
		return "60 minutes"
	}
}
