package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scribe_emr_active_sessions",
		Help: "Number of sessions in a non-terminal state",
	})

	sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_emr_sessions_created_total",
		Help: "Total number of sessions created",
	})

	stateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_emr_state_transitions_total",
		Help: "Total session state transitions",
	}, []string{"to"})

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scribe_emr_session_duration_seconds",
		Help:    "Time from session creation to terminal state in seconds",
		Buckets: []float64{10, 30, 60, 120, 300, 600, 1800, 3600},
	})

	// Chunk metrics
	chunksAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_emr_chunks_accepted_total",
		Help: "Total number of audio chunks accepted",
	})

	chunkBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_emr_chunk_bytes_total",
		Help: "Total audio bytes accepted",
	})

	chunkSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scribe_emr_chunk_size_bytes",
		Help:    "Size distribution of accepted audio chunks",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	})

	// Processing metrics
	outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_emr_processing_outcomes_total",
		Help: "Terminal processing outcomes by status",
	}, []string{"status"})

	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scribe_emr_processing_duration_seconds",
		Help:    "Time from session end to outcome application in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})

	// Poll metrics
	pollResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_emr_poll_responses_total",
		Help: "Status poll responses by HTTP status code",
	}, []string{"status"})

	// Sweep metrics
	sessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_emr_sessions_expired_total",
		Help: "Total sessions forced to expired by the sweep",
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_emr_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scribe_emr_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})
)

// RecordSessionCreated records a new session entering the registry.
func RecordSessionCreated() {
	sessionsCreated.Inc()
	activeSessions.Inc()
	stateTransitions.WithLabelValues("created").Inc()
}

// RecordStateTransition records a transition into the given state. Terminal
// states also decrement the active gauge and observe the session duration.
func RecordStateTransition(to string, terminal bool, sessionAge time.Duration) {
	stateTransitions.WithLabelValues(to).Inc()
	if terminal {
		activeSessions.Dec()
		sessionDuration.Observe(sessionAge.Seconds())
	}
}

// RecordChunkAccepted records one accepted audio chunk.
func RecordChunkAccepted(sizeBytes int64) {
	chunksAccepted.Inc()
	chunkBytes.Add(float64(sizeBytes))
	chunkSize.Observe(float64(sizeBytes))
}

// RecordOutcome records a processing outcome application.
func RecordOutcome(status string, processingTime time.Duration) {
	outcomes.WithLabelValues(status).Inc()
	processingDuration.Observe(processingTime.Seconds())
}

// RecordPollResponse records a status poll by HTTP status code.
func RecordPollResponse(statusCode string) {
	pollResponses.WithLabelValues(statusCode).Inc()
}

// RecordSessionExpired records one session forced to expired.
func RecordSessionExpired() {
	sessionsExpired.Inc()
}

// RecordError records an error by type and component.
func RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// UpdateCircuitBreakerState updates the circuit breaker state gauge.
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}
