package types

// Validation constraint constants.
const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLon = -180.0
	MaxLon = 180.0

	MinSearchRadiusKm = 0.1
	MaxSearchRadiusKm = 50.0

	MaxBatchRoutes = 20
)

// ValidateCoordinates checks a latitude/longitude pair against WGS84 bounds.
func ValidateCoordinates(lat, lon float64) error {
	if lat < MinLat || lat > MaxLat {
		return NewAppError(ErrCodeValidationInvalidLat, "latitude must be between -90 and 90", nil)
	}
	if lon < MinLon || lon > MaxLon {
		return NewAppError(ErrCodeValidationInvalidLon, "longitude must be between -180 and 180", nil)
	}
	return nil
}

// ValidateSearchRadius checks a radius in kilometers against the supported range.
func ValidateSearchRadius(radiusKm float64) error {
	if radiusKm < MinSearchRadiusKm || radiusKm > MaxSearchRadiusKm {
		return NewAppErrorWithDetails(
			ErrCodeValidationInvalidRadius,
			"radius_km outside supported range",
			nil,
			map[string]any{"min": MinSearchRadiusKm, "max": MaxSearchRadiusKm},
		)
	}
	return nil
}
