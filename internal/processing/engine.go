// Package processing bridges the session lifecycle to the external
// transcription and extraction engine. The engine's algorithm is out of
// scope; this package owns submission, retries and outcome delivery.
package processing

import (
	"context"
	"fmt"

	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/session"
)

// Engine is the external transcription/extraction collaborator. Process is
// synchronous from the coordinator's point of view; asynchrony lives in the
// coordinator's worker pool.
type Engine interface {
	Process(ctx context.Context, snap session.Snapshot) (session.Outcome, error)
}

// StubEngine is a deterministic local engine for development and tests. It
// "transcribes" every chunk successfully and fills each requested template
// with placeholder extraction data.
type StubEngine struct {
	// Transcript overrides the generated transcript when non-empty.
	Transcript string
}

// Process returns a success outcome covering every chunk in the snapshot.
func (e *StubEngine) Process(ctx context.Context, snap session.Snapshot) (session.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return session.Outcome{}, err
	}

	transcript := e.Transcript
	if transcript == "" {
		transcript = fmt.Sprintf("Transcript of %d audio file(s) for session %s.", len(snap.Chunks), snap.ID)
	}

	templates := make(map[string]session.TemplateResult, len(snap.Templates))
	for _, id := range snap.Templates {
		templates[id] = session.TemplateResult{
			Status: "success",
			Data: map[string]interface{}{
				"summary": fmt.Sprintf("Extraction for template '%s'", id),
			},
		}
	}

	return session.Outcome{
		Status:          session.OutcomeSuccess,
		Transcript:      transcript,
		Language:        "en",
		Templates:       templates,
		ChunksProcessed: len(snap.Chunks),
	}, nil
}
