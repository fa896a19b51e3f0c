package verdicts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floodaura/internal/engine"
	"floodaura/internal/types"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// fakeGeocoder maps lower-cased names to locations. Unknown names resolve to
// nil, nil like the real client.
type fakeGeocoder struct {
	locations map[string]types.Location
	err       error
	calls     atomic.Int64
}

func (g *fakeGeocoder) Resolve(_ context.Context, name string) (*types.Location, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	if loc, ok := g.locations[name]; ok {
		return &loc, nil
	}
	return nil, nil
}

type fakeWeather struct {
	signal  *types.WeatherSignal
	err     error
	calls   atomic.Int64
	lastLoc types.Location
}

func (w *fakeWeather) Signal(_ context.Context, loc types.Location) (*types.WeatherSignal, error) {
	w.calls.Add(1)
	w.lastLoc = loc
	if w.err != nil {
		return nil, w.err
	}
	return w.signal, nil
}

func newTestService(geo types.Geocoder, weather types.WeatherProvider) *Service {
	clock := fixedClock{time.Date(2025, time.July, 15, 15, 0, 0, 0, time.UTC)}
	eng := engine.New(clock, engine.DefaultTunables())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(geo, weather, eng, logger)
}

func carQuery(origin, destination string) types.RouteQuery {
	return types.RouteQuery{Origin: origin, Destination: destination, VehicleClass: "car"}
}

func TestEvaluateUsesLiveSignal(t *testing.T) {
	geo := &fakeGeocoder{locations: map[string]types.Location{
		"Noida Sector 18": {Lat: 28.57, Lon: 77.32},
	}}
	weather := &fakeWeather{signal: &types.WeatherSignal{
		RainfallMmPerHour:  12,
		ElevationMeters:    18,
		AggregateRiskScore: 55,
	}}
	svc := newTestService(geo, weather)

	v, err := svc.Evaluate(context.Background(), carQuery("Connaught Place", "Noida Sector 18"))
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.EqualValues(t, 1, weather.calls.Load())
	assert.InDelta(t, 28.57, weather.lastLoc.Lat, 0.001)
	assert.InDelta(t, 77.32, weather.lastLoc.Lon, 0.001)
	// Destination resolved on the first try, so the origin is never geocoded.
	assert.EqualValues(t, 1, geo.calls.Load())
}

func TestEvaluateFallsBackToOrigin(t *testing.T) {
	geo := &fakeGeocoder{locations: map[string]types.Location{
		"Connaught Place": {Lat: 28.63, Lon: 77.22},
	}}
	weather := &fakeWeather{signal: &types.WeatherSignal{RainfallMmPerHour: 4}}
	svc := newTestService(geo, weather)

	_, err := svc.Evaluate(context.Background(), carQuery("Connaught Place", "Nowhere Lane"))
	require.NoError(t, err)

	assert.EqualValues(t, 2, geo.calls.Load())
	assert.InDelta(t, 28.63, weather.lastLoc.Lat, 0.001)
}

func TestEvaluateDegradesOnGeocoderError(t *testing.T) {
	geo := &fakeGeocoder{err: types.NewAppError(types.ErrCodeUpstreamGeocoder, "geocoder down", nil)}
	weather := &fakeWeather{}
	svc := newTestService(geo, weather)

	v, err := svc.Evaluate(context.Background(), carQuery("Connaught Place", "Noida Sector 18"))
	require.NoError(t, err)
	require.NotNil(t, v)

	// No coordinates means no weather call; the seasonal estimate carries it.
	assert.EqualValues(t, 0, weather.calls.Load())
	assert.True(t, v.RouteStatus.Valid())
}

func TestEvaluateDegradesOnWeatherError(t *testing.T) {
	geo := &fakeGeocoder{locations: map[string]types.Location{
		"Noida Sector 18": {Lat: 28.57, Lon: 77.32},
	}}
	weather := &fakeWeather{err: types.NewAppError(types.ErrCodeUpstreamWeather, "weather down", nil)}
	svc := newTestService(geo, weather)

	v, err := svc.Evaluate(context.Background(), carQuery("Connaught Place", "Noida Sector 18"))
	require.NoError(t, err)
	require.NotNil(t, v)

	// Matches a degraded evaluation with no signal at all.
	bare, err := svc.engine.Evaluate(carQuery("Connaught Place", "Noida Sector 18"), nil)
	require.NoError(t, err)
	assert.Equal(t, bare, v)
}

func TestEvaluateRejectsBlankRoute(t *testing.T) {
	svc := newTestService(&fakeGeocoder{}, &fakeWeather{})

	_, err := svc.Evaluate(context.Background(), carQuery("  ", "Noida Sector 18"))
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationMissingField, appErr.Code)
}

func TestEvaluateBatchIsolatesFailures(t *testing.T) {
	svc := newTestService(&fakeGeocoder{}, &fakeWeather{})

	routes := []BatchRoute{
		{ID: "commute", Query: carQuery("Connaught Place", "Noida Sector 18")},
		{ID: "broken", Query: carQuery("", "Noida Sector 18")},
		{ID: "school-run", Query: carQuery("Lajpat Nagar", "Saket")},
	}

	res, err := svc.EvaluateBatch(context.Background(), routes)
	require.NoError(t, err)

	require.Len(t, res.Verdicts, 2)
	assert.Contains(t, res.Verdicts, "commute")
	assert.Contains(t, res.Verdicts, "school-run")

	require.Len(t, res.Errors, 1)
	assert.Equal(t, string(types.ErrCodeValidationMissingField), res.Errors["broken"].Code)
}

func TestEvaluateBatchSizeLimit(t *testing.T) {
	svc := newTestService(&fakeGeocoder{}, &fakeWeather{})

	routes := make([]BatchRoute, types.MaxBatchRoutes+1)
	for i := range routes {
		routes[i] = BatchRoute{
			ID:    fmt.Sprintf("r%d", i),
			Query: carQuery("Connaught Place", "Noida Sector 18"),
		}
	}

	_, err := svc.EvaluateBatch(context.Background(), routes)
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationBatchSize, appErr.Code)
}

func TestEvaluateBatchEmptyAndMissingIDs(t *testing.T) {
	svc := newTestService(&fakeGeocoder{}, &fakeWeather{})

	res, err := svc.EvaluateBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Verdicts)
	assert.Empty(t, res.Errors)

	res, err = svc.EvaluateBatch(context.Background(), []BatchRoute{
		{Query: carQuery("Connaught Place", "Noida Sector 18")},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Verdicts, "route_0")
}

func TestEvaluateBatchDeterministicPerRoute(t *testing.T) {
	svc := newTestService(&fakeGeocoder{}, &fakeWeather{})

	routes := []BatchRoute{
		{ID: "a", Query: carQuery("Connaught Place", "Noida Sector 18")},
		{ID: "b", Query: carQuery("Connaught Place", "Noida Sector 18")},
	}

	res, err := svc.EvaluateBatch(context.Background(), routes)
	require.NoError(t, err)
	assert.Equal(t, res.Verdicts["a"], res.Verdicts["b"])
}
