package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		return nil
	}, fastRetryConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, fastRetryConfig(), IsRetryableNetworkError)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := errors.New("unavailable")
	err := Retry(context.Background(), func() error {
		calls++
		return wantErr
	}, fastRetryConfig(), IsRetryableNetworkError)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error back, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		return errors.New("invalid argument")
	}, fastRetryConfig(), IsRetryableNetworkError)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("non-retryable error must not be retried, got %d calls", calls)
	}
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastRetryConfig()
	cfg.InitialBackoff = time.Second

	err := Retry(ctx, func() error {
		return errors.New("timeout")
	}, cfg, IsRetryableNetworkError)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsRetryableNetworkError(t *testing.T) {
	retryable := []string{
		"connection refused",
		"rpc error: code = Unavailable desc = transport is closing",
		"context deadline exceeded",
		"rate limit exceeded",
	}
	for _, msg := range retryable {
		if !IsRetryableNetworkError(errors.New(msg)) {
			t.Errorf("%q should be retryable", msg)
		}
	}

	if IsRetryableNetworkError(nil) {
		t.Error("nil should not be retryable")
	}
	if IsRetryableNetworkError(errors.New("permission denied")) {
		t.Error("permission denied should not be retryable")
	}
}
