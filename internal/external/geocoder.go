package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"floodaura/internal/config"
	"floodaura/internal/types"
)

// GeocoderClient resolves free-text place names to coordinates via a
// forward-geocoding API (Open-Meteo geocoding by default). Results are
// cached in memory with a TTL: place names are a small, hot working set and
// their coordinates never change.
type GeocoderClient struct {
	base    *BaseClient
	baseURL string
	clock   types.Clock

	cacheTTL time.Duration
	mu       sync.RWMutex
	cache    map[string]geocodeCacheEntry
}

type geocodeCacheEntry struct {
	loc     *types.Location // nil means a cached "not found"
	expires time.Time
}

// geocodeResponse mirrors the upstream search payload.
type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// NewGeocoderClient constructs a geocoder with its own circuit breaker.
func NewGeocoderClient(cfg config.GeocoderConfig, clock types.Clock, opts ...BaseClientOption) *GeocoderClient {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &GeocoderClient{
		base:     NewBaseClient(httpClient, "geocoder", DefaultRetryPolicy(), opts...),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		clock:    clock,
		cacheTTL: cfg.CacheTTL,
		cache:    make(map[string]geocodeCacheEntry),
	}
}

// Resolve maps a place name to coordinates. A nil Location with a nil error
// means the name did not match any known place; callers treat that as
// "no live signal available" rather than a failure.
func (g *GeocoderClient) Resolve(ctx context.Context, name string) (*types.Location, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, nil
	}

	if loc, ok := g.cached(key); ok {
		return loc, nil
	}

	u := fmt.Sprintf("%s/search?name=%s&count=1", g.baseURL, url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "building geocoder request", err)
	}

	resp, err := g.base.Do(req)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamGeocoder, "geocoder request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppError(types.ErrCodeUpstreamGeocoder,
			fmt.Sprintf("geocoder returned status %d", resp.StatusCode), nil)
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamGeocoder, "decoding geocoder response", err)
	}

	var loc *types.Location
	if len(payload.Results) > 0 {
		loc = &types.Location{
			Lat: payload.Results[0].Latitude,
			Lon: payload.Results[0].Longitude,
		}
	}

	g.store(key, loc)
	return loc, nil
}

func (g *GeocoderClient) cached(key string) (*types.Location, bool) {
	g.mu.RLock()
	entry, ok := g.cache[key]
	g.mu.RUnlock()
	if !ok || g.clock.Now().After(entry.expires) {
		return nil, false
	}
	return entry.loc, true
}

func (g *GeocoderClient) store(key string, loc *types.Location) {
	g.mu.Lock()
	g.cache[key] = geocodeCacheEntry{loc: loc, expires: g.clock.Now().Add(g.cacheTTL)}
	g.mu.Unlock()
}
