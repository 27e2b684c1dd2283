package session

import "sync"

// Registry holds one record per live session. It is the only shared mutable
// resource in the core: every mutation goes through Update, which holds that
// session's lock for the duration of the closure. Operations on different
// sessions proceed fully in parallel; two mutations of the same session are
// mutually exclusive.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*entry)}
}

// Put registers a newly created session.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = &entry{session: s}
}

// Update runs fn with exclusive access to the session. An error from fn is
// returned unchanged and any mutation fn performed before failing is the
// caller's responsibility to avoid; transition code validates before it
// mutates so a rejected operation is a no-op.
func (r *Registry) Update(id string, fn func(*Session) error) error {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return notFoundError(id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Snapshot returns an immutable copy of the session's current state.
func (r *Registry) Snapshot(id string) (Snapshot, error) {
	var snap Snapshot
	err := r.Update(id, func(s *Session) error {
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

// IDs returns the identifiers of all registered sessions. The expiry sweep
// iterates this list and takes each session's lock individually, so a sweep
// never blocks unrelated sessions.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
