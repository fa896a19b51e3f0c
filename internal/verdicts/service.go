// Package verdicts implements the route evaluation service for the FloodAura
// platform. It orchestrates geocoding and live weather retrieval around the
// pure scoring engine, degrading gracefully when either upstream is
// unavailable so a verdict can always be produced.
package verdicts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"floodaura/internal/engine"
	"floodaura/internal/types"
)

// BatchConcurrencyLimit is the maximum number of routes evaluated in parallel
// within one batch request.
const BatchConcurrencyLimit = 5

// ErrorDetail describes one failed route inside a batch result.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchResult holds the outcome of a batch evaluation. Verdicts and Errors
// are keyed by the request-supplied route ID; every route appears in exactly
// one of the two maps.
type BatchResult struct {
	Verdicts map[string]*types.Verdict `json:"verdicts"`
	Errors   map[string]ErrorDetail    `json:"errors,omitempty"`
}

// BatchRoute is one entry of a batch evaluation request.
type BatchRoute struct {
	ID    string           `json:"id" validate:"required"`
	Query types.RouteQuery `json:"query"`
}

// SignalMetrics counts evaluations that had to fall back to the seasonal
// estimate. Defined locally so the service does not depend on the metrics
// package.
type SignalMetrics interface {
	RecordSignalFallback()
}

// Option customizes a Service.
type Option func(*Service)

// WithMetrics attaches a fallback counter to the service.
func WithMetrics(m SignalMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service evaluates routes. It is safe for concurrent use.
type Service struct {
	geocoder types.Geocoder
	weather  types.WeatherProvider
	engine   *engine.Engine
	logger   *slog.Logger
	metrics  SignalMetrics
}

func NewService(geocoder types.Geocoder, weather types.WeatherProvider, eng *engine.Engine, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		geocoder: geocoder,
		weather:  weather,
		engine:   eng,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate scores a single route. The destination drives weather lookup
// because waterlogging risk accumulates where the journey ends; if the
// destination cannot be geocoded the origin is tried instead. Upstream
// failures are logged and the engine falls back to its seasonal estimate,
// so only invalid input produces an error.
func (s *Service) Evaluate(ctx context.Context, q types.RouteQuery) (*types.Verdict, error) {
	sig := s.liveSignal(ctx, q)
	if sig == nil && s.metrics != nil {
		s.metrics.RecordSignalFallback()
	}
	return s.engine.Evaluate(q, sig)
}

// EvaluateBatch scores up to types.MaxBatchRoutes routes concurrently.
// Failures are isolated per route: one bad route never aborts the others.
func (s *Service) EvaluateBatch(ctx context.Context, routes []BatchRoute) (*BatchResult, error) {
	if len(routes) == 0 {
		return &BatchResult{Verdicts: make(map[string]*types.Verdict)}, nil
	}
	if len(routes) > types.MaxBatchRoutes {
		return nil, &types.AppError{
			Code:    types.ErrCodeValidationBatchSize,
			Message: fmt.Sprintf("batch size %d exceeds maximum of %d routes", len(routes), types.MaxBatchRoutes),
		}
	}

	var mu sync.Mutex
	verdicts := make(map[string]*types.Verdict)
	errorMap := make(map[string]ErrorDetail)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(BatchConcurrencyLimit)

	for i, route := range routes {
		route := route
		id := strings.TrimSpace(route.ID)
		if id == "" {
			id = fmt.Sprintf("route_%d", i)
		}

		g.Go(func() error {
			v, err := s.Evaluate(gCtx, route.Query)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Do not propagate to the errgroup; other routes may succeed.
				errorMap[id] = toErrorDetail(err)
				return nil
			}
			verdicts[id] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BatchResult{Verdicts: verdicts}
	if len(errorMap) > 0 {
		result.Errors = errorMap
	}
	return result, nil
}

// liveSignal resolves the route to coordinates and fetches current weather.
// Any failure along the way returns nil, which the engine treats as "no live
// data" and answers from its seasonal calendar instead.
func (s *Service) liveSignal(ctx context.Context, q types.RouteQuery) *types.WeatherSignal {
	if s.geocoder == nil || s.weather == nil {
		return nil
	}

	loc, err := s.geocoder.Resolve(ctx, q.Destination)
	if err != nil {
		s.logger.Warn("geocoding failed, using seasonal estimate",
			"location", q.Destination, "error", err)
		return nil
	}
	if loc == nil {
		loc, err = s.geocoder.Resolve(ctx, q.Origin)
		if err != nil {
			s.logger.Warn("geocoding failed, using seasonal estimate",
				"location", q.Origin, "error", err)
			return nil
		}
	}
	if loc == nil {
		s.logger.Debug("route endpoints not geocodable, using seasonal estimate",
			"origin", q.Origin, "destination", q.Destination)
		return nil
	}

	sig, err := s.weather.Signal(ctx, *loc)
	if err != nil {
		s.logger.Warn("weather lookup failed, using seasonal estimate",
			"lat", loc.Lat, "lon", loc.Lon, "error", err)
		return nil
	}
	return sig
}

func toErrorDetail(err error) ErrorDetail {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return ErrorDetail{Code: string(appErr.Code), Message: appErr.Message}
	}
	return ErrorDetail{Code: string(types.ErrCodeInternalUnexpected), Message: err.Error()}
}
