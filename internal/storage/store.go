// Package storage provides the blob store boundary for accepted audio bytes.
// The core treats payloads as opaque: the lifecycle engine writes a blob
// before recording chunk metadata, so a crash between the two leaves at most
// an orphaned blob, never an inconsistent chunk list.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// BlobStore persists raw audio chunk payloads keyed by session and stored
// chunk name. Put with an existing name overwrites, matching the idempotent
// re-upload semantics of the chunk protocol.
type BlobStore interface {
	Put(ctx context.Context, sessionID, name, contentType string, data []byte) error
	Delete(ctx context.Context, sessionID, name string) error

	// Ping verifies the store is usable; wired into the readiness probe.
	Ping(ctx context.Context) error
}

// MemoryStore is an in-process BlobStore used in tests and single-node
// development deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func blobKey(sessionID, name string) string {
	return sessionID + "/" + name
}

// Put stores a copy of data under the session/name key.
func (m *MemoryStore) Put(ctx context.Context, sessionID, name, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.blobs[blobKey(sessionID, name)] = buf
	m.mu.Unlock()
	return nil
}

// Delete removes the blob if present.
func (m *MemoryStore) Delete(ctx context.Context, sessionID, name string) error {
	m.mu.Lock()
	delete(m.blobs, blobKey(sessionID, name))
	m.mu.Unlock()
	return nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Get returns the stored payload, for tests.
func (m *MemoryStore) Get(sessionID, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[blobKey(sessionID, name)]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", blobKey(sessionID, name))
	}
	return data, nil
}

// Len returns the number of stored blobs, for tests.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
