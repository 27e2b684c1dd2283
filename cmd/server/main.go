package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/catalog"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/config"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/httpapi"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/observability"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/processing"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/resilience"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/session"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("base_url", cfg.BaseURL).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Scribe EMR Protocol Service starting")

	// Blob store: filesystem when a directory is configured, in-memory
	// otherwise. The memory store is for development only.
	var store storage.BlobStore
	if cfg.BlobDir != "" {
		fsStore, err := storage.NewFilesystemStore(cfg.BlobDir)
		if err != nil {
			logger.Fatal().Err(err).Str("dir", cfg.BlobDir).Msg("Failed to open blob store")
		}
		store = fsStore
		logger.Info().Str("dir", cfg.BlobDir).Msg("Using filesystem blob store")
	} else {
		store = storage.NewMemoryStore()
		logger.Warn().Msg("BLOB_DIR not set, audio chunks are held in memory")
	}

	// Processing coordinator over the engine worker pool. The stub engine
	// produces deterministic outcomes until a real engine is deployed behind
	// ENGINE_ADDR.
	coordinator := processing.NewCoordinator(&processing.StubEngine{}, processing.Config{
		Workers:        cfg.ProcessingWorkers,
		QueueSize:      cfg.ProcessingQueueSize,
		ProcessTimeout: time.Duration(cfg.ProcessTimeoutSeconds) * time.Second,
		Retry: &resilience.RetryConfig{
			MaxAttempts:       cfg.RetryMaxAttempts,
			InitialBackoff:    time.Duration(cfg.RetryInitialBackoff) * time.Millisecond,
			MaxBackoff:        5 * time.Second,
			BackoffMultiplier: 2.0,
		},
		BreakerName:  "engine",
		MaxFailures:  cfg.CircuitBreakerMaxFailures,
		ResetTimeout: time.Duration(cfg.CircuitBreakerResetTimeout) * time.Second,
	})

	cat := catalog.Default()
	bus := session.NewBus()
	lifecycle := session.NewLifecycle(session.NewRegistry(), cat, store, coordinator,
		session.WithMaxChunkBytes(cfg.MaxChunkBytes),
		session.WithPublisher(bus),
	)
	coordinator.Bind(lifecycle)

	// Background workers stop on shutdown; in-flight sessions then resolve
	// through the expiry sweep on the next start.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	coordinator.Start(workerCtx)
	go lifecycle.RunSweeper(workerCtx, time.Duration(cfg.SweepIntervalSeconds)*time.Second)

	// Create HTTP server
	mux := http.NewServeMux()
	httpapi.NewServer(cfg, lifecycle, cat).Register(mux)

	// Health check endpoint
	mux.HandleFunc("/health", observability.HealthCheckHandler())

	// Readiness checks: blob store always, engine only when configured
	checks := map[string]observability.HealthCheckFunc{
		"blob_store": func(ctx context.Context) (bool, error) {
			if err := store.Ping(ctx); err != nil {
				return false, err
			}
			return true, nil
		},
	}
	var probe *processing.EngineProbe
	if cfg.EngineAddr != "" {
		probe, err = processing.NewEngineProbe(cfg.EngineAddr)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.EngineAddr).Msg("Failed to create engine probe")
		}
		checks["engine"] = probe.Check
		logger.Info().Str("addr", cfg.EngineAddr).Msg("Engine readiness probe enabled")
	}
	mux.HandleFunc("/ready", observability.ReadinessHandler(checks))

	// Metrics endpoint (Prometheus)
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("discovery", fmt.Sprintf("%s/.well-known/medscribealliance", cfg.BaseURL)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopWorkers()
	coordinator.Wait()
	if probe != nil {
		probe.Close()
	}

	logger.Info().Msg("Server exited")
}
