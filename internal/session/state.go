package session

import (
	"encoding/json"
	"fmt"
)

// State is the lifecycle state of a session. The set is closed: every state a
// session can be in appears here, and the poll renderer refuses to guess for
// anything it does not recognize.
type State int

const (
	StateCreated State = iota
	StateRecording
	StateProcessing
	StateCompleted
	StatePartial
	StateFailed
	StateExpired
)

var stateNames = map[State]string{
	StateCreated:    "created",
	StateRecording:  "recording",
	StateProcessing: "processing",
	StateCompleted:  "completed",
	StatePartial:    "partial",
	StateFailed:     "failed",
	StateExpired:    "expired",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// MarshalJSON renders the state as its wire name.
func (s State) MarshalJSON() ([]byte, error) {
	name, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("cannot marshal unknown session state %d", int(s))
	}
	return []byte(`"` + name + `"`), nil
}

// UnmarshalJSON parses a wire name back into a state. The set is closed, so
// an unrecognized name is an error rather than a guess.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for state, n := range stateNames {
		if n == name {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("cannot unmarshal unknown session state %q", name)
}

// IsTerminal reports whether the state freezes the session. Chunk lists and
// results of a terminal session are immutable.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StatePartial, StateFailed, StateExpired:
		return true
	}
	return false
}

// validTransitions is the single source of truth for the state machine.
var validTransitions = map[State][]State{
	StateCreated:    {StateRecording, StateProcessing, StateExpired},
	StateRecording:  {StateProcessing, StateExpired},
	StateProcessing: {StateCompleted, StatePartial, StateFailed, StateExpired},
}

// CanTransitionTo reports whether the transition s -> next is allowed.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
