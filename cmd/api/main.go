// Package main is the entry point for the FloodAura API server.
//
// It loads the configuration, connects the database pool and upstream
// clients, builds the HTTP server with the core chassis (middleware,
// routing, health checks), and starts listening for requests.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"floodaura/internal/api/handlers"
	"floodaura/internal/config"
	"floodaura/internal/core"
	"floodaura/internal/db"
	"floodaura/internal/engine"
	"floodaura/internal/external"
	"floodaura/internal/observability"
	"floodaura/internal/types"
	"floodaura/internal/verdicts"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("floodaura API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()
	clock := types.RealClock{}

	// Database pool and repository.
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()
	eventRepo := db.NewFloodEventRepository(pool)

	// Upstream clients.
	geocoder := external.NewGeocoderClient(cfg.Geocoder, clock)
	weather := external.NewWeatherClient(cfg.Weather)
	assistant := external.NewAssistantClient(cfg.Assistant)

	// Metrics and the scoring pipeline.
	metrics := observability.NewMetrics(cfg.Service)
	eng := engine.New(clock, engine.DefaultTunables())
	verdictSvc := verdicts.NewService(geocoder, weather, eng, logger, verdicts.WithMetrics(metrics))

	// Build the server.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Metrics = metrics
	srv.MetricsHandler = metrics.Handler()
	srv.HealthProbes = []core.HealthProbe{db.NewPoolProbe(pool)}

	// Wire the domain handlers.
	verdictHandler := handlers.NewVerdictHandler(verdictSvc, srv.Validator, metrics, logger)
	mapHandler := handlers.NewMapHandler(eventRepo, weather, clock, logger)
	alertsHandler := handlers.NewAlertsHandler(eventRepo, clock, logger)
	eventsHandler := handlers.NewEventsHandler(eventRepo, srv.Validator, cfg.Security, clock, metrics, logger)
	chatHandler := handlers.NewChatHandler(assistant, metrics, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Route("/routes", verdictHandler.RegisterRoutes)
		r.Route("/map", mapHandler.RegisterRoutes)
		r.Route("/alerts", alertsHandler.RegisterRoutes)
		r.Route("/events", eventsHandler.RegisterRoutes)
		r.Route("/chat", chatHandler.RegisterRoutes)
	})

	// Mount all routes (middleware chain + versioned endpoints + health).
	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or server error.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	})
	return slog.New(handler)
}
