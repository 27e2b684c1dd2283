package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the scribe protocol service.
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Public base URL advertised in the discovery document and upload URLs
	// (e.g. https://api.scribe.example.com when behind a load balancer).
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	// Service metadata for the discovery document
	ServiceName  string `envconfig:"SERVICE_NAME" default:"Scribe EMR Protocol Service"`
	SupportEmail string `envconfig:"SUPPORT_EMAIL" default:"support@scribe.example.com"`

	// Session and chunk limits
	MaxChunkBytes        int64 `envconfig:"MAX_CHUNK_BYTES" default:"104857600"` // 100 MiB per chunk
	SweepIntervalSeconds int   `envconfig:"SWEEP_INTERVAL_SECONDS" default:"30"` // Expiry sweep period

	// Blob storage; empty dir keeps chunks in memory (development only)
	BlobDir string `envconfig:"BLOB_DIR" default:""`

	// Processing engine. EngineAddr enables the gRPC readiness probe of a
	// remote engine; empty runs with the local stub engine only.
	EngineAddr            string `envconfig:"ENGINE_ADDR" default:""`
	ProcessingWorkers     int    `envconfig:"PROCESSING_WORKERS" default:"4"`
	ProcessingQueueSize   int    `envconfig:"PROCESSING_QUEUE_SIZE" default:"256"`
	ProcessTimeoutSeconds int    `envconfig:"PROCESS_TIMEOUT_SECONDS" default:"300"`

	// Resilience configuration
	RetryMaxAttempts           int `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialBackoff        int `envconfig:"RETRY_INITIAL_BACKOFF" default:"100"` // milliseconds
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // seconds

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from a .env file if present, then from the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables,
// skipping the .env file (useful for containerized deployments).
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.MaxChunkBytes <= 0 {
		return nil, fmt.Errorf("MAX_CHUNK_BYTES must be positive, got %d", cfg.MaxChunkBytes)
	}
	if cfg.SweepIntervalSeconds <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL_SECONDS must be positive, got %d", cfg.SweepIntervalSeconds)
	}

	return &cfg, nil
}
