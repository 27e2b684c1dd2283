package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "BASE_URL", "SERVICE_NAME", "SUPPORT_EMAIL",
		"MAX_CHUNK_BYTES", "SWEEP_INTERVAL_SECONDS", "BLOB_DIR",
		"ENGINE_ADDR", "PROCESSING_WORKERS", "PROCESSING_QUEUE_SIZE",
		"PROCESS_TIMEOUT_SECONDS", "RETRY_MAX_ATTEMPTS", "RETRY_INITIAL_BACKOFF",
		"CIRCUIT_BREAKER_MAX_FAILURES", "CIRCUIT_BREAKER_RESET_TIMEOUT",
		"LOG_LEVEL", "LOG_PRETTY", "METRICS_ENABLED",
	} {
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.MaxChunkBytes != 104857600 {
		t.Errorf("expected 100 MiB chunk limit, got %d", cfg.MaxChunkBytes)
	}
	if cfg.SweepIntervalSeconds != 30 {
		t.Errorf("expected 30s sweep interval, got %d", cfg.SweepIntervalSeconds)
	}
	if cfg.ProcessingWorkers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.ProcessingWorkers)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected info log level, got %q", cfg.LogLevel)
	}
	if !cfg.MetricsEnabled {
		t.Error("metrics should default to enabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	os.Setenv("PORT", "9090")
	os.Setenv("MAX_CHUNK_BYTES", "1024")
	os.Setenv("BLOB_DIR", "/var/lib/scribe")
	os.Setenv("ENGINE_ADDR", "engine:50051")
	os.Setenv("LOG_PRETTY", "true")
	defer clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.MaxChunkBytes != 1024 {
		t.Errorf("expected 1024 byte limit, got %d", cfg.MaxChunkBytes)
	}
	if cfg.BlobDir != "/var/lib/scribe" {
		t.Errorf("unexpected blob dir %q", cfg.BlobDir)
	}
	if cfg.EngineAddr != "engine:50051" {
		t.Errorf("unexpected engine addr %q", cfg.EngineAddr)
	}
	if !cfg.LogPretty {
		t.Error("expected pretty logging enabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)

	os.Setenv("MAX_CHUNK_BYTES", "0")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("expected error for zero chunk limit")
	}
	os.Unsetenv("MAX_CHUNK_BYTES")

	os.Setenv("SWEEP_INTERVAL_SECONDS", "-5")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("expected error for negative sweep interval")
	}
}
