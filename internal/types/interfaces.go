package types

import (
	"context"
	"time"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// Geocoder resolves a free-text place name to coordinates.
// A nil result with a nil error means the location could not be resolved;
// callers degrade rather than fail.
type Geocoder interface {
	Resolve(ctx context.Context, locationText string) (*Location, error)
}

// WeatherProvider supplies a live WeatherSignal for a coordinate.
type WeatherProvider interface {
	Signal(ctx context.Context, loc Location) (*WeatherSignal, error)
}

// Assistant answers free-form user questions with flood-safety context.
type Assistant interface {
	Ask(ctx context.Context, message string) (string, error)
}

// FloodEventRepository is the data access contract for stored flood events.
type FloodEventRepository interface {
	Insert(ctx context.Context, ev *FloodEvent) error
	ListRecent(ctx context.Context, cutoff time.Time, severity Severity, limit int) ([]FloodEvent, error)
	ListNearby(ctx context.Context, loc Location, radiusKm float64, cutoff time.Time) ([]FloodEvent, error)
	SearchByName(ctx context.Context, name string, limit int) ([]FloodEvent, error)
	Stats(ctx context.Context, now time.Time) (*EventStats, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
