package engine

import (
	"strings"

	"floodaura/internal/types"
)

// vehicleProfiles is the static capability table, one profile per vehicle
// class. Loaded once at package init and never mutated.
var vehicleProfiles = map[types.VehicleClass]types.VehicleProfile{
	types.VehicleBike:    {BaseScore: 45, GroundClearanceInches: 6.0, SafeWadingInches: 4},
	types.VehicleScooter: {BaseScore: 42, GroundClearanceInches: 5.5, SafeWadingInches: 4},
	types.VehicleCar:     {BaseScore: 65, GroundClearanceInches: 6.7, SafeWadingInches: 8},
	types.VehicleSedan:   {BaseScore: 62, GroundClearanceInches: 5.9, SafeWadingInches: 7},
	types.VehicleSUV:     {BaseScore: 80, GroundClearanceInches: 8.5, SafeWadingInches: 15},
	types.VehicleTruck:   {BaseScore: 85, GroundClearanceInches: 10.5, SafeWadingInches: 20},
}

// vehicleGroup buckets classes by flood resilience. Heavier groups never
// receive a worse suitability impact than lighter ones.
type vehicleGroup int

const (
	groupTwoWheeler vehicleGroup = iota
	groupPassenger
	groupHighClearance
)

// NormalizeVehicleClass lower-cases and trims a raw class string and maps
// unknown values to the car profile's class.
func NormalizeVehicleClass(raw string) types.VehicleClass {
	vc := types.VehicleClass(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := vehicleProfiles[vc]; !ok {
		return types.VehicleCar
	}
	return vc
}

// ProfileFor returns the capability profile for a vehicle class. It is a
// total function: unknown or malformed classes resolve to the car profile.
func ProfileFor(class types.VehicleClass) types.VehicleProfile {
	return vehicleProfiles[NormalizeVehicleClass(string(class))]
}

// groupFor returns the resilience group for a (normalized) vehicle class.
func groupFor(class types.VehicleClass) vehicleGroup {
	switch NormalizeVehicleClass(string(class)) {
	case types.VehicleSUV, types.VehicleTruck:
		return groupHighClearance
	case types.VehicleBike, types.VehicleScooter:
		return groupTwoWheeler
	default:
		return groupPassenger
	}
}
