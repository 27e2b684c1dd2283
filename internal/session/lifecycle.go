package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/audio"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/catalog"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/observability"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/storage"
)

// Coordinator is the boundary to the external processing engine. Submit must
// not block: processing is asynchronous and the outcome arrives later through
// ReportOutcome, or never, in which case the expiry sweep resolves the
// session.
type Coordinator interface {
	Submit(Snapshot)
}

// Lifecycle is the session state machine. It owns every transition; nothing
// else mutates the registry. All per-request errors are protocol errors that
// leave the session untouched.
type Lifecycle struct {
	registry    *Registry
	catalog     *catalog.Catalog
	store       storage.BlobStore
	coordinator Coordinator
	publisher   Publisher

	maxChunkBytes int64
	now           func() time.Time
	logger        zerolog.Logger
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Lifecycle) { l.now = now }
}

// WithPublisher sets the lifecycle event publisher.
func WithPublisher(p Publisher) Option {
	return func(l *Lifecycle) { l.publisher = p }
}

// WithMaxChunkBytes sets the per-chunk payload ceiling.
func WithMaxChunkBytes(n int64) Option {
	return func(l *Lifecycle) { l.maxChunkBytes = n }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Lifecycle) { l.logger = logger }
}

// DefaultMaxChunkBytes is the default per-chunk size ceiling (100 MiB).
const DefaultMaxChunkBytes = 100 * 1024 * 1024

// NewLifecycle creates the state machine over the given registry, catalog,
// blob store and processing coordinator.
func NewLifecycle(reg *Registry, cat *catalog.Catalog, store storage.BlobStore, coord Coordinator, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		registry:      reg,
		catalog:       cat,
		store:         store,
		coordinator:   coord,
		publisher:     NopPublisher{},
		maxChunkBytes: DefaultMaxChunkBytes,
		now:           time.Now,
		logger:        observability.GetLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Create validates the requested configuration and registers a new session in
// the created state. Expiry is derived from the model's maximum session
// duration.
func (l *Lifecycle) Create(ctx context.Context, cfg Config) (Snapshot, error) {
	if n := len(cfg.Templates); n < 1 || n > 2 {
		return Snapshot{}, templateSelectionError(
			fmt.Sprintf("Between 1 and 2 templates must be selected, got %d", n),
			map[string]interface{}{"template_count": n},
		)
	}
	for _, id := range cfg.Templates {
		if _, ok := l.catalog.Template(id); !ok {
			return Snapshot{}, templateSelectionError(
				fmt.Sprintf("Template '%s' does not exist", id),
				map[string]interface{}{"template_id": id},
			)
		}
	}

	if cfg.Model == "" {
		cfg.Model = catalog.DefaultModelID
	}
	model, ok := l.catalog.Model(cfg.Model)
	if !ok {
		// Model ids are validated at the transport boundary; an unknown id
		// here means the handler and catalog disagree.
		return Snapshot{}, fmt.Errorf("model %q not in catalog", cfg.Model)
	}

	now := l.now()
	s := &Session{
		ID:                NewID(),
		State:             StateCreated,
		CreatedAt:         now,
		ExpiresAt:         now.Add(model.MaxSessionDuration),
		Config:            cfg,
		Chunks:            NewChunkSet(),
		ClaimedChunkCount: -1,
	}
	l.registry.Put(s)

	observability.RecordSessionCreated()
	l.publisher.Publish(Event{Type: EventSessionCreated, SessionID: s.ID, State: StateCreated, At: now})
	l.logger.Info().
		Str("session_id", s.ID).
		Str("model", cfg.Model).
		Strs("templates", cfg.Templates).
		Time("expires_at", s.ExpiresAt).
		Msg("Session created")

	snap, err := l.registry.Snapshot(s.ID)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// AcceptChunk validates and records one uploaded audio chunk. Re-uploading a
// chunk with the same sequence label replaces the prior record. The blob
// write happens between two critical sections: the session lock is never held
// across storage I/O, and the blob lands before its metadata so a crash
// leaves at most an orphaned blob.
func (l *Lifecycle) AcceptChunk(ctx context.Context, sessionID, fileName, contentType string, data []byte) (ChunkRecord, error) {
	if contentType == "" {
		contentType = audio.InferContentType(fileName)
	}
	if !audio.IsSupportedFormat(contentType) {
		return ChunkRecord{}, unsupportedFormatError(contentType, audio.SupportedFormats())
	}
	if int64(len(data)) > l.maxChunkBytes {
		return ChunkRecord{}, payloadTooLargeError(int64(len(data)), l.maxChunkBytes)
	}

	// Fail fast before paying for the blob write.
	if err := l.registry.Update(sessionID, l.checkUploadable); err != nil {
		return ChunkRecord{}, err
	}

	rec := newChunkRecord(fileName, contentType, int64(len(data)), l.now())
	if err := l.store.Put(ctx, sessionID, rec.StoredName, contentType, data); err != nil {
		observability.RecordError("blob_write_error", "storage")
		return ChunkRecord{}, fmt.Errorf("failed to store audio chunk: %w", err)
	}

	var replaced bool
	err := l.registry.Update(sessionID, func(s *Session) error {
		// The session may have ended or expired during the blob write; the
		// rejected blob is then an orphan, never a list entry.
		if err := l.checkUploadable(s); err != nil {
			return err
		}
		replaced = s.Chunks.Upsert(rec)
		if s.State == StateCreated {
			s.State = StateRecording
			observability.RecordStateTransition("recording", false, 0)
		}
		return nil
	})
	if err != nil {
		return ChunkRecord{}, err
	}

	observability.RecordChunkAccepted(rec.SizeBytes)
	l.publisher.Publish(Event{Type: EventChunkAccepted, SessionID: sessionID, State: StateRecording, At: rec.UploadedAt})
	l.logger.Debug().
		Str("session_id", sessionID).
		Str("chunk", rec.StoredName).
		Int64("size_bytes", rec.SizeBytes).
		Bool("replaced", replaced).
		Msg("Audio chunk accepted")

	return rec, nil
}

// checkUploadable verifies a session can still accept audio.
func (l *Lifecycle) checkUploadable(s *Session) error {
	switch {
	case s.State == StateExpired:
		return ErrSessionExpired
	case s.State.IsTerminal(), s.State == StateProcessing:
		return ErrSessionClosed
	case l.now().After(s.ExpiresAt):
		return ErrSessionExpired
	}
	return nil
}

// End transitions the session to processing and hands a consistent snapshot
// of the accepted chunk set to the coordinator. A claimed chunk count that
// disagrees with the accepted count does not fail the call; the discrepancy
// is recorded and degrades the eventual outcome to partial.
func (l *Lifecycle) End(ctx context.Context, sessionID string, claimedChunkCount int) (Snapshot, error) {
	var snap Snapshot
	now := l.now()

	err := l.registry.Update(sessionID, func(s *Session) error {
		switch {
		case s.State == StateExpired:
			return ErrSessionExpired
		case s.State.IsTerminal(), s.State == StateProcessing:
			return ErrSessionAlreadyEnded
		case now.After(s.ExpiresAt):
			return ErrSessionExpired
		}

		s.State = StateProcessing
		s.EndedAt = &now
		s.ClaimedChunkCount = claimedChunkCount
		snap = s.snapshot()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	observability.RecordStateTransition("processing", false, 0)
	l.publisher.Publish(Event{Type: EventSessionEnded, SessionID: sessionID, State: StateProcessing, At: now})

	received := len(snap.Chunks)
	if claimedChunkCount != received {
		observability.RecordError("chunk_count_mismatch", "lifecycle")
		l.logger.Warn().
			Str("session_id", sessionID).
			Int("claimed", claimedChunkCount).
			Int("received", received).
			Msg("Claimed chunk count disagrees with accepted count")
	} else {
		l.logger.Info().
			Str("session_id", sessionID).
			Int("chunks", received).
			Msg("Session ended, processing started")
	}

	l.coordinator.Submit(snap)
	return snap, nil
}

// ReportOutcome applies the terminal processing outcome. It is valid exactly
// once, for a session in processing; anything else is a protocol violation
// that leaves the session unchanged. A success outcome is degraded to partial
// when the claimed chunk count disagreed with the accepted count or when
// fewer chunks were processed than received.
func (l *Lifecycle) ReportOutcome(ctx context.Context, sessionID string, outcome Outcome) error {
	now := l.now()
	var applied State
	var endedAt time.Time
	var createdAt time.Time

	err := l.registry.Update(sessionID, func(s *Session) error {
		if s.State != StateProcessing {
			return invalidOutcomeError(
				fmt.Sprintf("outcome reported for session in state '%s', want 'processing'", s.State),
			)
		}

		received := s.Chunks.Len()
		if outcome.ChunksProcessed > received {
			return invalidOutcomeError(
				fmt.Sprintf("audio_files_processed %d exceeds audio_files_received %d", outcome.ChunksProcessed, received),
			)
		}
		if outcome.Status == OutcomePartial && len(outcome.ProcessingErrors) == 0 {
			return invalidOutcomeError("partial outcome must carry at least one processing error")
		}

		if outcome.Status == OutcomeSuccess {
			if s.ClaimedChunkCount >= 0 && s.ClaimedChunkCount != received {
				outcome.Status = OutcomePartial
				outcome.ProcessingErrors = append(outcome.ProcessingErrors, ProcessingError{
					Type:    "audio_file_count_mismatch",
					Message: fmt.Sprintf("client reported %d audio files but %d were received", s.ClaimedChunkCount, received),
				})
			} else if outcome.ChunksProcessed < received {
				outcome.Status = OutcomePartial
				outcome.ProcessingErrors = append(outcome.ProcessingErrors, ProcessingError{
					Type:    "audio_file_skipped",
					Message: fmt.Sprintf("only %d of %d audio files were processed", outcome.ChunksProcessed, received),
				})
			}
		}

		next := outcomeState(outcome.Status)
		if !s.State.CanTransitionTo(next) {
			return invalidOutcomeError(fmt.Sprintf("transition %s -> %s is not allowed", s.State, next))
		}

		s.State = next
		s.CompletedAt = &now
		s.Outcome = &outcome
		applied = next
		createdAt = s.CreatedAt
		if s.EndedAt != nil {
			endedAt = *s.EndedAt
		}
		return nil
	})
	if err != nil {
		return err
	}

	observability.RecordStateTransition(applied.String(), true, now.Sub(createdAt))
	observability.RecordOutcome(string(outcome.Status), now.Sub(endedAt))
	l.publisher.Publish(Event{Type: EventOutcomeApplied, SessionID: sessionID, State: applied, At: now})
	l.logger.Info().
		Str("session_id", sessionID).
		Str("outcome", string(outcome.Status)).
		Str("state", applied.String()).
		Msg("Processing outcome applied")

	return nil
}

func outcomeState(status OutcomeStatus) State {
	switch status {
	case OutcomeSuccess:
		return StateCompleted
	case OutcomePartial:
		return StatePartial
	default:
		return StateFailed
	}
}

// SweepExpired forces every non-terminal session past its expiry into the
// expired state, freezing its chunk and result data. The sweep is the sole
// cancellation path for sessions whose outcome never arrives. Re-running on
// already-expired sessions is a no-op.
func (l *Lifecycle) SweepExpired(ctx context.Context) int {
	now := l.now()
	var expired []string

	for _, id := range l.registry.IDs() {
		err := l.registry.Update(id, func(s *Session) error {
			if s.State.IsTerminal() || !now.After(s.ExpiresAt) {
				return nil
			}
			s.State = StateExpired
			expired = append(expired, s.ID)
			observability.RecordStateTransition("expired", true, now.Sub(s.CreatedAt))
			observability.RecordSessionExpired()
			return nil
		})
		if err != nil {
			// Session disappeared between IDs and Update; nothing to sweep.
			continue
		}
	}

	for _, id := range expired {
		l.publisher.Publish(Event{Type: EventSessionExpired, SessionID: id, State: StateExpired, At: now})
		l.logger.Info().Str("session_id", id).Msg("Session expired")
	}
	return len(expired)
}

// RunSweeper runs the expiry sweep on the given interval until ctx is done.
func (l *Lifecycle) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Info().Dur("interval", interval).Msg("Expiry sweeper started")
	for {
		select {
		case <-ticker.C:
			if n := l.SweepExpired(ctx); n > 0 {
				l.logger.Info().Int("expired", n).Msg("Expiry sweep completed")
			}
		case <-ctx.Done():
			l.logger.Info().Msg("Expiry sweeper stopping")
			return
		}
	}
}

// Snapshot returns the current observable state of a session.
func (l *Lifecycle) Snapshot(sessionID string) (Snapshot, error) {
	return l.registry.Snapshot(sessionID)
}

// newChunkRecord derives the chunk key and stored name from the client
// filename. Numbered filenames are keyed by sequence; anything else is keyed
// by its literal name.
func newChunkRecord(fileName, contentType string, size int64, at time.Time) ChunkRecord {
	rec := ChunkRecord{
		Sequence:     -1,
		Key:          fileName,
		StoredName:   audio.SimplifiedName(fileName),
		OriginalName: fileName,
		ContentType:  contentType,
		SizeBytes:    size,
		UploadedAt:   at,
	}
	if seq, ok := audio.ParseSequence(fileName); ok {
		rec.Sequence = seq
		rec.Key = strconv.Itoa(seq)
	}
	return rec
}
