package engine

// Tunables holds the weighting and shaping constants of the aggregation
// pipeline. The values are heuristic rather than model-derived, so they are
// grouped here instead of being scattered as literals; construct with
// DefaultTunables and override fields in tests or experiments.
type Tunables struct {
	// Waterlogging base selection.
	WaterlogLiveFactor     float64 // applied to a live aggregate risk score
	WaterlogLocationFactor float64 // applied to keyword location risk on fallback

	// Waterlogging contributions.
	RainContribFactor      float64 // linear rain weight
	RainContribExponent    float64 // super-linear growth exponent
	ElevationContribFactor float64
	VehiclePenaltyFactor   float64 // applied to (100 - vehicle base score)
	SaturationFactor       float64 // compresses waterlogging toward 100

	// Comprehensive risk weights. Must sum to 1.
	WeightWaterlog float64
	WeightVehicle  float64
	WeightRainfall float64
	WeightTraffic  float64

	// Drainage scaling. Multipliers below 1 apply in full as a bonus;
	// above 1 the penalty is capped at this value.
	DrainagePenaltyCap float64

	// Seasonal estimates never assert more than this rainfall impact;
	// only live readings can push the engine into the extreme bands.
	FallbackRainfallCeiling float64
}

// DefaultTunables returns the production constants.
func DefaultTunables() Tunables {
	return Tunables{
		WaterlogLiveFactor:     0.65,
		WaterlogLocationFactor: 1.4,

		RainContribFactor:      0.45,
		RainContribExponent:    1.5,
		ElevationContribFactor: 0.9,
		VehiclePenaltyFactor:   0.15,
		SaturationFactor:       0.15,

		WeightWaterlog: 0.45,
		WeightVehicle:  0.25,
		WeightRainfall: 0.20,
		WeightTraffic:  0.10,

		DrainagePenaltyCap: 1.2,

		FallbackRainfallCeiling: 75,
	}
}
