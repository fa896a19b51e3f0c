package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"floodaura/internal/config"
	"floodaura/internal/types"
)

// WeatherClient fetches current conditions for a coordinate from a forecast
// API (Open-Meteo by default) and condenses them into the WeatherSignal the
// scoring engine consumes.
type WeatherClient struct {
	base    *BaseClient
	baseURL string
}

// forecastResponse mirrors the slice of the upstream payload we consume.
type forecastResponse struct {
	Elevation float64 `json:"elevation"`
	Current   struct {
		Precipitation float64 `json:"precipitation"` // mm, over the current interval
		Rain          float64 `json:"rain"`          // mm/h
	} `json:"current"`
}

// NewWeatherClient constructs a weather client with its own circuit breaker.
func NewWeatherClient(cfg config.WeatherConfig, opts ...BaseClientOption) *WeatherClient {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &WeatherClient{
		base:    NewBaseClient(httpClient, "weather", DefaultRetryPolicy(), opts...),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Signal fetches current rainfall and terrain elevation for a location and
// derives the aggregate risk score. Errors are returned as AppErrors; the
// verdict service degrades to seasonal estimates on any failure here.
func (w *WeatherClient) Signal(ctx context.Context, loc types.Location) (*types.WeatherSignal, error) {
	u := fmt.Sprintf("%s/forecast?latitude=%.4f&longitude=%.4f&current=rain,precipitation",
		w.baseURL, loc.Lat, loc.Lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "building weather request", err)
	}

	resp, err := w.base.Do(req)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamWeather, "weather request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppError(types.ErrCodeUpstreamWeather,
			fmt.Sprintf("weather source returned status %d", resp.StatusCode), nil)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamWeather, "decoding weather response", err)
	}

	rain := payload.Current.Rain
	if rain == 0 {
		rain = payload.Current.Precipitation
	}

	return &types.WeatherSignal{
		RainfallMmPerHour:  rain,
		ElevationMeters:    payload.Elevation,
		AggregateRiskScore: aggregateRisk(rain, payload.Elevation),
	}, nil
}

// aggregateRisk condenses raw readings into a 0-100 flood-risk score.
// Rainfall dominates; low-lying terrain amplifies the result.
func aggregateRisk(rainMmPerHour, elevationM float64) float64 {
	risk := rainMmPerHour * 2.2

	switch {
	case elevationM < 5:
		risk += 30
	case elevationM < 20:
		risk += 20
	case elevationM < 50:
		risk += 10
	case elevationM >= 120:
		risk -= 10
	}

	if risk < 0 {
		return 0
	}
	if risk > 100 {
		return 100
	}
	return risk
}
