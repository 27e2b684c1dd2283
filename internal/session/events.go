package session

import (
	"sync"
	"time"
)

// EventType identifies a lifecycle event. A delivery layer (webhooks, SDK
// callbacks) subscribes to these; delivery itself is out of scope here.
type EventType string

const (
	EventSessionCreated EventType = "session.created"
	EventChunkAccepted  EventType = "audio.uploaded"
	EventSessionEnded   EventType = "session.ended"
	EventOutcomeApplied EventType = "session.outcome"
	EventSessionExpired EventType = "session.expired"
)

// Event is one lifecycle notification.
type Event struct {
	Type      EventType
	SessionID string
	State     State
	At        time.Time
}

// Publisher receives lifecycle events. Publish must not block; the engine
// calls it while not holding any session lock.
type Publisher interface {
	Publish(Event)
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// Bus fans events out to subscriber channels. Slow subscribers have events
// dropped rather than stalling the engine.
type Bus struct {
	mu   sync.RWMutex
	subs []chan Event
}

// NewBus returns an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber buffer full, drop the event.
		}
	}
}
