package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FilesystemStore writes blobs under root/<session_id>/<name>. Writes go to a
// uniquely named temp file first and are renamed into place, so a partially
// written blob is never visible under its final name.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates the root directory if needed.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root %s: %w", root, err)
	}
	return &FilesystemStore{root: root}, nil
}

func (f *FilesystemStore) path(sessionID, name string) string {
	return filepath.Join(f.root, sessionID, name)
}

// Put writes the payload atomically.
func (f *FilesystemStore) Put(ctx context.Context, sessionID, name, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(f.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	tmp := filepath.Join(dir, ".tmp-"+uuid.New().String())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := os.Rename(tmp, f.path(sessionID, name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize blob: %w", err)
	}
	return nil
}

// Delete removes the blob; a missing blob is not an error.
func (f *FilesystemStore) Delete(ctx context.Context, sessionID, name string) error {
	err := os.Remove(f.path(sessionID, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// Ping verifies the root directory is writable.
func (f *FilesystemStore) Ping(ctx context.Context) error {
	probe := filepath.Join(f.root, ".probe-"+uuid.New().String())
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return fmt.Errorf("blob root not writable: %w", err)
	}
	return os.Remove(probe)
}
