package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func failN(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		cb.Call(func() error { return errBoom })
	}
}

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)

	failN(cb, 2)
	if cb.State() != StateClosed {
		t.Fatalf("expected closed after 2 failures, got %v", cb.State())
	}

	failN(cb, 1)
	if cb.State() != StateOpen {
		t.Fatalf("expected open after 3 failures, got %v", cb.State())
	}

	err := cb.Call(func() error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)

	failN(cb, 2)
	cb.Call(func() error { return nil })
	failN(cb, 2)

	if cb.State() != StateClosed {
		t.Errorf("intervening success must reset the count, got %v", cb.State())
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)

	failN(cb, 1)
	if cb.State() != StateOpen {
		t.Fatalf("expected open, got %v", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	// Three consecutive probe successes close the circuit.
	for i := 0; i < 3; i++ {
		if err := cb.Call(func() error { return nil }); err != nil {
			t.Fatalf("probe call %d rejected: %v", i, err)
		}
	}
	if cb.State() != StateClosed {
		t.Errorf("expected closed after successful probes, got %v", cb.State())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)

	failN(cb, 1)
	time.Sleep(20 * time.Millisecond)

	cb.Call(func() error { return errBoom })
	if cb.State() != StateOpen {
		t.Errorf("expected reopened circuit, got %v", cb.State())
	}
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, time.Minute)
	failN(cb, 1)
	cb.Reset()
	if cb.State() != StateClosed {
		t.Errorf("expected closed after reset, got %v", cb.State())
	}
	if err := cb.Call(func() error { return nil }); err != nil {
		t.Errorf("call after reset rejected: %v", err)
	}
}
