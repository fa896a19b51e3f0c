// Package core provides the API chassis for the FloodAura service.
// It creates the chi router and enforces cross-cutting concerns (security,
// logging, observability, error handling) before requests reach the
// domain-specific handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"floodaura/internal/config"
)

// MetricsCollector defines the interface for recording API telemetry.
// The production implementation lives in internal/observability and exports
// Prometheus series; tests inject a recording fake.
type MetricsCollector interface {
	// RecordRequest records request latency and count for one completed
	// request.
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// Server encapsulates all dependencies for the FloodAura API, allowing for
// easy injection during testing and distinct configuration for different
// environments.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator
	Metrics   MetricsCollector

	// HealthProbes are the subsystem checks run by GET /health.
	HealthProbes []HealthProbe

	// MetricsHandler, when set, is mounted at GET /metrics.
	MetricsHandler http.Handler

	// V1RouteRegistrars mount domain handler routes under /v1. Populated by
	// the application entry point to avoid import cycles between core and
	// the handler packages.
	V1RouteRegistrars []func(chi.Router)

	router *chi.Mux
}

// NewServer initializes dependencies, sets up the router, and prepares the
// server for route mounting. It performs a fail-fast check on critical
// dependencies.
//
// The caller is responsible for mounting routes (via MountRoutes) after
// construction. This separation allows tests to customize registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	s := &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}

	return s, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown performs a graceful termination of server resources. Database
// pools are owned by the entry point and closed there; this hook exists for
// anything the chassis itself holds open.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")
	s.Logger.Info("server shutdown complete")
	return nil
}
