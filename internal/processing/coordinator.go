package processing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/observability"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/resilience"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/session"
)

// OutcomeReporter receives the terminal outcome for a submitted session.
// Implemented by the session lifecycle engine.
type OutcomeReporter interface {
	ReportOutcome(ctx context.Context, sessionID string, outcome session.Outcome) error
}

// Config tunes the coordinator.
type Config struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
	Retry          *resilience.RetryConfig
	BreakerName    string
	MaxFailures    int
	ResetTimeout   time.Duration
}

// DefaultConfig returns the default coordinator configuration.
func DefaultConfig() Config {
	return Config{
		Workers:        4,
		QueueSize:      256,
		ProcessTimeout: 5 * time.Minute,
		Retry:          resilience.DefaultRetryConfig(),
		BreakerName:    "engine",
		MaxFailures:    5,
		ResetTimeout:   30 * time.Second,
	}
}

// Coordinator accepts ended-session snapshots and drives them through the
// engine on a worker pool. Exactly one outcome is reported per submitted
// session: the engine's result on success, a failure outcome after retries
// are exhausted. If the coordinator itself is shut down mid-flight, the
// session stays in processing until the expiry sweep resolves it.
type Coordinator struct {
	engine  Engine
	cfg     Config
	queue   chan session.Snapshot
	breaker *resilience.CircuitBreaker
	logger  zerolog.Logger

	mu       sync.RWMutex
	reporter OutcomeReporter

	wg sync.WaitGroup
}

// NewCoordinator creates a coordinator over the given engine. Bind must be
// called before Start.
func NewCoordinator(engine Engine, cfg Config) *Coordinator {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = DefaultConfig().ProcessTimeout
	}
	if cfg.BreakerName == "" {
		cfg.BreakerName = "engine"
	}
	return &Coordinator{
		engine:  engine,
		cfg:     cfg,
		queue:   make(chan session.Snapshot, cfg.QueueSize),
		breaker: resilience.NewCircuitBreaker(cfg.BreakerName, cfg.MaxFailures, cfg.ResetTimeout),
		logger:  observability.GetLogger(),
	}
}

// Bind wires the outcome reporter. Separate from construction because the
// lifecycle engine and the coordinator reference each other.
func (c *Coordinator) Bind(r OutcomeReporter) {
	c.mu.Lock()
	c.reporter = r
	c.mu.Unlock()
}

// Start launches the worker pool. Workers stop when ctx is done.
func (c *Coordinator) Start(ctx context.Context) {
	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx)
	}
	c.logger.Info().Int("workers", c.cfg.Workers).Msg("Processing coordinator started")
}

// Wait blocks until all workers have exited.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Submit enqueues a snapshot for processing without blocking the caller. A
// full queue drops the submission; the session then remains in processing
// until the expiry sweep forces it to expired, which is the protocol's
// liveness fallback for outcomes that never arrive.
func (c *Coordinator) Submit(snap session.Snapshot) {
	select {
	case c.queue <- snap:
	default:
		observability.RecordError("queue_full", "coordinator")
		c.logger.Warn().
			Str("session_id", snap.ID).
			Msg("Processing queue full, dropping submission")
	}
}

func (c *Coordinator) worker(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case snap := <-c.queue:
			c.process(ctx, snap)
		case <-ctx.Done():
			return
		}
	}
}

func (c *Coordinator) process(ctx context.Context, snap session.Snapshot) {
	procCtx, cancel := context.WithTimeout(ctx, c.cfg.ProcessTimeout)
	defer cancel()

	var outcome session.Outcome
	err := c.breaker.Call(func() error {
		return resilience.Retry(procCtx, func() error {
			var engineErr error
			outcome, engineErr = c.engine.Process(procCtx, snap)
			return engineErr
		}, c.cfg.Retry, resilience.IsRetryableNetworkError)
	})
	observability.UpdateCircuitBreakerState(c.cfg.BreakerName, int(c.breaker.State()))

	if err != nil {
		observability.RecordError("engine_error", "coordinator")
		c.logger.Error().Err(err).
			Str("session_id", snap.ID).
			Msg("Engine processing failed")
		outcome = failureOutcome(err)
	}

	c.mu.RLock()
	reporter := c.reporter
	c.mu.RUnlock()
	if reporter == nil {
		c.logger.Error().Str("session_id", snap.ID).Msg("No outcome reporter bound")
		return
	}

	if err := reporter.ReportOutcome(ctx, snap.ID, outcome); err != nil {
		// An expired or already-resolved session rejects the report; that is
		// the at-most-once guarantee working, not a delivery failure.
		var pe *session.ProtocolError
		if errors.As(err, &pe) {
			c.logger.Warn().
				Str("session_id", snap.ID).
				Str("code", string(pe.Code)).
				Msg("Outcome report rejected")
			return
		}
		observability.RecordError("outcome_report_error", "coordinator")
		c.logger.Error().Err(err).Str("session_id", snap.ID).Msg("Failed to report outcome")
	}
}

func failureOutcome(err error) session.Outcome {
	return session.Outcome{
		Status: session.OutcomeFailure,
		ProcessingErrors: []session.ProcessingError{{
			Type:    "processing_failed",
			Message: err.Error(),
		}},
	}
}
