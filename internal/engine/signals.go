package engine

import (
	"fmt"
	"time"

	"floodaura/internal/types"
)

// Signals are the normalized, bounded impact scores fed to the aggregator.
type Signals struct {
	// RainfallImpact is in [5, 100].
	RainfallImpact float64
	// ElevationRisk is in [0, 100].
	ElevationRisk float64
	// DrainageMultiplier is in [0.6, 1.3]; below 1 favors runoff.
	DrainageMultiplier float64
	// LiveRisk is the upstream aggregate risk score when the live path was
	// taken, nil on the seasonal fallback path.
	LiveRisk *float64

	RainfallStatus      types.FactorStatus
	RainfallDescription string
}

// rainfallBand is one IMD-style intensity class mapped to an impact range.
type rainfallBand struct {
	maxRate  float64 // exclusive upper bound in mm/h; the last band is open
	impactLo float64
	impactHi float64
	label    string
}

// Bands follow the IMD intensity classification: light, moderate, heavy,
// very heavy, extreme. Impact interpolates linearly within each band so the
// mapping stays monotonic in the rainfall rate.
var rainfallBands = []rainfallBand{
	{maxRate: 2.5, impactLo: 8, impactHi: 20, label: "light"},
	{maxRate: 7.5, impactLo: 22, impactHi: 38, label: "moderate"},
	{maxRate: 15, impactLo: 40, impactHi: 58, label: "heavy"},
	{maxRate: 25, impactLo: 60, impactHi: 75, label: "very heavy"},
	{maxRate: 60, impactLo: 78, impactHi: 95, label: "extreme"},
}

// elevationBand maps a terrain elevation class to an elevation-risk base and
// a drainage multiplier.
type elevationBand struct {
	maxMeters float64 // exclusive upper bound; the last band is open
	risk      float64
	drainage  float64
}

var elevationBands = []elevationBand{
	{maxMeters: 5, risk: 88, drainage: 1.28},
	{maxMeters: 20, risk: 72, drainage: 1.18},
	{maxMeters: 50, risk: 55, drainage: 1.08},
	{maxMeters: 80, risk: 38, drainage: 0.96},
	{maxMeters: 120, risk: 22, drainage: 0.84},
	{maxMeters: 0, risk: 10, drainage: 0.68}, // >= 120m
}

// season holds the calendar fallback parameters for one part of the year.
type season struct {
	rainfallBase float64
	factor       float64
	label        string
}

// seasonFor maps a month to its fallback parameters. Peak monsoon Jul-Aug,
// pre-monsoon Jun, post-monsoon Sep, winter Oct-Nov and Jan-Feb, summer
// otherwise.
func seasonFor(month time.Month) season {
	switch month {
	case time.July, time.August:
		return season{rainfallBase: 54, factor: 1.25, label: "peak monsoon"}
	case time.June:
		return season{rainfallBase: 40, factor: 1.2, label: "pre-monsoon"}
	case time.September:
		return season{rainfallBase: 35, factor: 1.15, label: "post-monsoon"}
	case time.October, time.November, time.January, time.February:
		return season{rainfallBase: 10, factor: 0.5, label: "winter"}
	default:
		return season{rainfallBase: 16, factor: 0.7, label: "summer"}
	}
}

// isMonsoonMonth reports whether afternoon convective showers are in play.
func isMonsoonMonth(month time.Month) bool {
	return month >= time.June && month <= time.September
}

// afternoonBoost returns the time-of-day rainfall bump during monsoon months.
func afternoonBoost(now time.Time) float64 {
	if !isMonsoonMonth(now.Month()) {
		return 0
	}
	switch h := now.Hour(); {
	case h >= 14 && h <= 18:
		return 8
	case h >= 10 && h <= 13:
		return 4
	default:
		return 0
	}
}

// Normalize converts either live readings or calendar defaults into the
// bounded impact scores. A nil signal or zero rainfall selects the seasonal
// fallback path.
func Normalize(sig *types.WeatherSignal, seeds Seeds, now time.Time, tun Tunables) Signals {
	if sig != nil && sig.RainfallMmPerHour > 0 {
		return normalizeLive(sig, seeds, now)
	}
	return normalizeSeasonal(seeds, now, tun)
}

func normalizeLive(sig *types.WeatherSignal, seeds Seeds, now time.Time) Signals {
	rain := sig.RainfallMmPerHour

	band := rainfallBands[len(rainfallBands)-1]
	lo := 0.0
	matched := false
	for _, b := range rainfallBands {
		if rain < b.maxRate {
			band = b
			matched = true
			break
		}
		lo = b.maxRate
	}

	// Interpolate within the band; beyond the extreme band's upper rate the
	// impact saturates at the band ceiling.
	impact := band.impactHi
	if matched {
		frac := (rain - lo) / (band.maxRate - lo)
		impact = band.impactLo + frac*(band.impactHi-band.impactLo)
	}
	impact += float64(seeds.Time) * 0.25
	impact += afternoonBoost(now)
	impact = clamp(impact, 5, 100)

	eb := elevationBands[len(elevationBands)-1]
	for _, b := range elevationBands[:len(elevationBands)-1] {
		if sig.ElevationMeters < b.maxMeters {
			eb = b
			break
		}
	}
	elevRisk := clamp(eb.risk+float64(seeds.Time)*0.3+float64(seeds.Location)*0.4, 0, 100)
	drainage := clamp(eb.drainage+float64(seeds.Location-5)*0.006, 0.6, 1.3)

	live := sig.AggregateRiskScore

	return Signals{
		RainfallImpact:     impact,
		ElevationRisk:      elevRisk,
		DrainageMultiplier: drainage,
		LiveRisk:           &live,
		RainfallStatus:     rainfallStatus(impact),
		RainfallDescription: fmt.Sprintf(
			"%s rainfall recorded at %.1f mm/h near the route", titleCase(band.label), rain),
	}
}

func normalizeSeasonal(seeds Seeds, now time.Time, tun Tunables) Signals {
	s := seasonFor(now.Month())

	impact := s.rainfallBase * s.factor
	impact += float64(seeds.Location)*0.3 + float64(seeds.Time)*0.2
	impact += afternoonBoost(now)
	impact = clamp(impact, 5, tun.FallbackRainfallCeiling)

	elevRisk := clamp(10+float64(seeds.Location)*1.0, 0, 100)
	drainage := clamp(0.82+float64(seeds.Location)*0.015, 0.6, 1.3)

	return Signals{
		RainfallImpact:      impact,
		ElevationRisk:       elevRisk,
		DrainageMultiplier:  drainage,
		RainfallStatus:      rainfallStatus(impact),
		RainfallDescription: seasonalDescription(s),
	}
}

func rainfallStatus(impact float64) types.FactorStatus {
	switch {
	case impact >= 60:
		return types.FactorHigh
	case impact >= 30:
		return types.FactorModerate
	default:
		return types.FactorLow
	}
}

func seasonalDescription(s season) string {
	switch s.label {
	case "peak monsoon":
		return "Peak monsoon season. Heavy rainfall expected along the route"
	case "pre-monsoon":
		return "Pre-monsoon period. Intermittent heavy showers possible"
	case "post-monsoon":
		return "Post-monsoon season. Occasional rainfall; saturated ground may hold water"
	case "winter":
		return "Winter season. Minimal rainfall expected on the route"
	default:
		return "Dry season. Minimal rainfall expected on the route"
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
