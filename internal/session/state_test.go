package session

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStateTransitions(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StateCreated, StateRecording},
		{StateCreated, StateProcessing},
		{StateCreated, StateExpired},
		{StateRecording, StateProcessing},
		{StateRecording, StateExpired},
		{StateProcessing, StateCompleted},
		{StateProcessing, StatePartial},
		{StateProcessing, StateFailed},
		{StateProcessing, StateExpired},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to State }{
		{StateRecording, StateCreated},
		{StateProcessing, StateRecording},
		{StateCompleted, StateProcessing},
		{StateExpired, StateRecording},
		{StateFailed, StateCompleted},
		{StatePartial, StateCompleted},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be denied", tc.from, tc.to)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []State{StateCompleted, StatePartial, StateFailed, StateExpired} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StateCreated, StateRecording, StateProcessing} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(StateRecording)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"recording"` {
		t.Errorf("expected \"recording\", got %s", data)
	}

	if _, err := json.Marshal(State(42)); err == nil {
		t.Error("marshaling an unknown state must fail")
	}
}

func TestNewID(t *testing.T) {
	id := NewID()
	if !strings.HasPrefix(id, "ses_") {
		t.Errorf("expected ses_ prefix, got %q", id)
	}
	// 16 bytes of raw URL base64 is 22 characters.
	if len(id) != len("ses_")+22 {
		t.Errorf("unexpected id length %d: %q", len(id), id)
	}
	if strings.ContainsAny(id[4:], "+/=") {
		t.Errorf("id must be URL-safe, got %q", id)
	}
}
