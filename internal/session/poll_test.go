package session

import (
	"net/http"
	"testing"
	"time"
)

func pollSnapshot(state State) Snapshot {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return Snapshot{
		ID:             "ses_test",
		State:          state,
		CreatedAt:      now,
		ExpiresAt:      now.Add(10 * time.Minute),
		Model:          "lite",
		Templates:      []string{"soap"},
		AdditionalData: map[string]interface{}{},
		Chunks: []ChunkRecord{
			{Key: "0", Sequence: 0, StoredName: "0.webm", SizeBytes: 10},
		},
	}
}

func TestRenderPollStatusCodes(t *testing.T) {
	cases := []struct {
		state State
		want  int
	}{
		{StateCreated, http.StatusAccepted},
		{StateRecording, http.StatusAccepted},
		{StateProcessing, http.StatusAccepted},
		{StateCompleted, http.StatusOK},
		{StatePartial, http.StatusPartialContent},
		{StateFailed, http.StatusOK},
		{StateExpired, http.StatusGone},
	}
	for _, tc := range cases {
		t.Run(tc.state.String(), func(t *testing.T) {
			status, payload, err := RenderPoll(pollSnapshot(tc.state))
			if err != nil {
				t.Fatalf("RenderPoll failed: %v", err)
			}
			if status != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, status)
			}
			if payload == nil {
				t.Error("expected a payload")
			}
		})
	}
}

func TestRenderPollUnknownStateFails(t *testing.T) {
	snap := pollSnapshot(State(99))
	if _, _, err := RenderPoll(snap); err == nil {
		t.Fatal("expected an error for an unknown state")
	}
}

func TestRenderPollCompletedCarriesOutcome(t *testing.T) {
	snap := pollSnapshot(StateCompleted)
	completed := snap.CreatedAt.Add(5 * time.Minute)
	snap.CompletedAt = &completed
	snap.Outcome = &Outcome{
		Status:          OutcomeSuccess,
		Transcript:      "hello",
		Language:        "en",
		Templates:       map[string]TemplateResult{"soap": {Status: "success"}},
		ChunksProcessed: 1,
	}

	_, payload, err := RenderPoll(snap)
	if err != nil {
		t.Fatalf("RenderPoll failed: %v", err)
	}
	view, ok := payload.(CompletedView)
	if !ok {
		t.Fatalf("expected CompletedView, got %T", payload)
	}
	if view.Transcript == nil || *view.Transcript != "hello" {
		t.Errorf("transcript not rendered: %v", view.Transcript)
	}
	if view.LanguageDetected != "en" {
		t.Errorf("expected language en, got %q", view.LanguageDetected)
	}
	if _, ok := view.Templates["soap"]; !ok {
		t.Error("template result missing")
	}
}

func TestRenderPollPartialCarriesErrors(t *testing.T) {
	snap := pollSnapshot(StatePartial)
	snap.Outcome = &Outcome{
		Status:          OutcomePartial,
		Transcript:      "partial text",
		ChunksProcessed: 1,
		ProcessingErrors: []ProcessingError{
			{Type: "audio_file_skipped", Message: "one file skipped"},
		},
	}

	_, payload, err := RenderPoll(snap)
	if err != nil {
		t.Fatalf("RenderPoll failed: %v", err)
	}
	view, ok := payload.(PartialView)
	if !ok {
		t.Fatalf("expected PartialView, got %T", payload)
	}
	if view.AudioFilesProcessed != 1 {
		t.Errorf("expected 1 processed, got %d", view.AudioFilesProcessed)
	}
	if len(view.ProcessingErrors) != 1 {
		t.Errorf("expected 1 processing error, got %d", len(view.ProcessingErrors))
	}
}

func TestRenderPollExpiredMessage(t *testing.T) {
	// Expired before end.
	snap := pollSnapshot(StateExpired)
	_, payload, err := RenderPoll(snap)
	if err != nil {
		t.Fatalf("RenderPoll failed: %v", err)
	}
	view := payload.(ExpiredView)
	if view.Message != "Session expired before processing was initiated" {
		t.Errorf("unexpected message %q", view.Message)
	}
	if view.AudioFilesReceived != 1 {
		t.Errorf("expired view must keep the frozen chunk count, got %d", view.AudioFilesReceived)
	}

	// Expired mid-processing.
	ended := snap.CreatedAt.Add(time.Minute)
	snap.EndedAt = &ended
	_, payload, err = RenderPoll(snap)
	if err != nil {
		t.Fatalf("RenderPoll failed: %v", err)
	}
	view = payload.(ExpiredView)
	if view.Message != "Session expired before processing completed" {
		t.Errorf("unexpected message %q", view.Message)
	}
}

func TestRenderPollRecordingHasNoTranscript(t *testing.T) {
	_, payload, err := RenderPoll(pollSnapshot(StateRecording))
	if err != nil {
		t.Fatalf("RenderPoll failed: %v", err)
	}
	view := payload.(ProcessingView)
	if view.Transcript != nil {
		t.Errorf("recording session must not have a transcript, got %q", *view.Transcript)
	}
}
