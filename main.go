package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appLogger "github.com/FACorreiaa/go-itinerary-builder/app/logger"
	appMiddleware "github.com/FACorreiaa/go-itinerary-builder/app/middleware"
	"github.com/FACorreiaa/go-itinerary-builder/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-builder/app/tracer"
	"github.com/FACorreiaa/go-itinerary-builder/config"
	"github.com/FACorreiaa/go-itinerary-builder/internal/container"
	api "github.com/FACorreiaa/go-itinerary-builder/internal/router"
)

func main() {
	// slog is not configured yet, so a missing .env goes to the standard logger
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	metricsPort := ""
	if cfg.Handlers.Prometheus.Enabled {
		metricsPort = cfg.Handlers.Prometheus.Port
	}
	shutdownTelemetry, err := tracer.InitTracingAndMetrics(metricsPort, logger)
	if err != nil {
		logger.Error("Failed to initialise telemetry", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.InitAppMetrics()

	// --- Dependencies ---
	c, err := container.NewContainer(ctx, cfg, metrics.Get(), logger)
	if err != nil {
		logger.Error("Failed to initialise dependencies", slog.Any("error", err))
		os.Exit(1)
	}
	defer c.Close()

	// Sites seeded without vectors are embedded in the background; trips
	// requested before it finishes fall back to the static site table.
	go func() {
		start := time.Now()
		updated, err := c.BackfillEmbeddings(ctx)
		if err != nil {
			logger.Error("Embedding backfill failed", slog.Any("error", err), slog.Int("updated", updated))
			return
		}
		logger.Info("Embedding backfill finished", slog.Int("updated", updated), slog.Duration("took", time.Since(start)))
	}()

	// --- Router ---
	timeout := cfg.Server.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	var rateLimit func(http.Handler) http.Handler
	if cfg.Server.RateLimitPerSecond > 0 {
		rateLimit = appMiddleware.NewRateLimiter(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst, logger).Limit
	}

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", api.SetupRouter(&api.Config{
		PlannerHandler:      c.PlannerHandler,
		SitesHandler:        c.SitesHandler,
		RateLimitMiddleware: rateLimit,
	}))

	// --- HTTP Server ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	// --- Graceful Shutdown ---
	logger.Info("Shutdown signal received, starting graceful shutdown...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warn("Telemetry shutdown failed", slog.Any("error", err))
	}
	logger.Info("Application shut down complete.")
}

// setupLogger returns tint output for development and JSON otherwise, keyed on APP_ENV.
func setupLogger() *slog.Logger {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
