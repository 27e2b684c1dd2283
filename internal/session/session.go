package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// UploadType is the audio upload method requested at creation.
type UploadType string

const (
	UploadChunked UploadType = "chunked"
	UploadSingle  UploadType = "single"
	UploadStream  UploadType = "stream"
)

// Valid reports whether the upload type is one of the supported methods.
func (u UploadType) Valid() bool {
	switch u {
	case UploadChunked, UploadSingle, UploadStream:
		return true
	}
	return false
}

// Config is the caller-requested configuration captured at session creation.
// AdditionalData is opaque pass-through; the core never interprets it.
type Config struct {
	SessionMode        string
	Templates          []string
	Model              string
	LanguageHints      []string
	TranscriptLanguage string
	UploadType         UploadType
	AdditionalData     map[string]interface{}
}

// OutcomeStatus is the terminal status reported by the processing engine.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomePartial OutcomeStatus = "partial"
	OutcomeFailure OutcomeStatus = "failure"
)

// TemplateResult is the extraction result for a single requested template.
type TemplateResult struct {
	Status string                 `json:"status"`
	Data   map[string]interface{} `json:"data,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// ProcessingError describes one per-chunk processing failure.
type ProcessingError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
}

// Outcome is the terminal result of processing a session's audio. It is
// applied to a session at most once.
type Outcome struct {
	Status           OutcomeStatus
	Transcript       string
	Language         string
	Templates        map[string]TemplateResult
	ChunksProcessed  int
	ProcessingErrors []ProcessingError
}

// Session is the central entity: one bounded unit of audio capture and
// extraction work. All fields are guarded by the registry's per-session lock;
// code outside this package sees sessions only as immutable snapshots.
type Session struct {
	ID        string
	State     State
	CreatedAt time.Time
	ExpiresAt time.Time

	Config Config
	Chunks *ChunkSet

	// EndedAt and ClaimedChunkCount are set by the end call. A claimed count
	// that disagrees with the accepted count does not fail the call; the
	// discrepancy degrades the eventual outcome to partial.
	EndedAt           *time.Time
	ClaimedChunkCount int

	CompletedAt *time.Time
	Outcome     *Outcome
}

// Snapshot is an immutable copy of a session's observable state. The end call
// hands a snapshot to the processing coordinator, and every poll renders one.
type Snapshot struct {
	ID        string
	State     State
	CreatedAt time.Time
	ExpiresAt time.Time

	SessionMode        string
	Templates          []string
	Model              string
	LanguageHints      []string
	TranscriptLanguage string
	UploadType         UploadType
	AdditionalData     map[string]interface{}

	Chunks            []ChunkRecord
	ClaimedChunkCount int
	EndedAt           *time.Time
	CompletedAt       *time.Time
	Outcome           *Outcome
}

// ChunkNames returns the stored names of the snapshot's chunks.
func (s Snapshot) ChunkNames() []string {
	names := make([]string, len(s.Chunks))
	for i, c := range s.Chunks {
		names[i] = c.StoredName
	}
	return names
}

// snapshot copies the session. Must be called with the session lock held.
func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:                 s.ID,
		State:              s.State,
		CreatedAt:          s.CreatedAt,
		ExpiresAt:          s.ExpiresAt,
		SessionMode:        s.Config.SessionMode,
		Templates:          append([]string(nil), s.Config.Templates...),
		Model:              s.Config.Model,
		LanguageHints:      append([]string(nil), s.Config.LanguageHints...),
		TranscriptLanguage: s.Config.TranscriptLanguage,
		UploadType:         s.Config.UploadType,
		AdditionalData:     copyMap(s.Config.AdditionalData),
		Chunks:             s.Chunks.Records(),
		ClaimedChunkCount:  s.ClaimedChunkCount,
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		snap.EndedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		snap.CompletedAt = &t
	}
	if s.Outcome != nil {
		o := *s.Outcome
		o.Templates = copyTemplates(s.Outcome.Templates)
		o.ProcessingErrors = append([]ProcessingError(nil), s.Outcome.ProcessingErrors...)
		snap.Outcome = &o
	}
	return snap
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyTemplates(m map[string]TemplateResult) map[string]TemplateResult {
	if m == nil {
		return nil
	}
	out := make(map[string]TemplateResult, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NewID generates an unguessable session identifier with the "ses_" prefix.
// The token is 16 bytes of cryptographic randomness, URL-safe base64 encoded.
func NewID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("session id generation: %v", err))
	}
	return "ses_" + base64.RawURLEncoding.EncodeToString(buf)
}
