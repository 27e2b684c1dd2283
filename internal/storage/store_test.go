package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStorePutOverwrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "ses_1", "0.webm", "audio/webm", []byte("first")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "ses_1", "0.webm", "audio/webm", []byte("second")); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	data, err := s.Get("ses_1", "0.webm")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(data, []byte("second")) {
		t.Errorf("expected overwrite, got %q", data)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 blob, got %d", s.Len())
	}
}

func TestMemoryStoreDetachesPayload(t *testing.T) {
	s := NewMemoryStore()
	payload := []byte("payload")
	s.Put(context.Background(), "ses_1", "0.webm", "audio/webm", payload)
	payload[0] = 'X'

	data, _ := s.Get("ses_1", "0.webm")
	if data[0] != 'p' {
		t.Error("stored blob must not share memory with the caller's slice")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Put(ctx, "ses_1", "0.webm", "audio/webm", []byte("d"))

	if err := s.Delete(ctx, "ses_1", "0.webm"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get("ses_1", "0.webm"); err == nil {
		t.Error("expected missing blob after delete")
	}
}

func TestFilesystemStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	s, err := NewFilesystemStore(root)
	if err != nil {
		t.Fatalf("NewFilesystemStore failed: %v", err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, "ses_1", "0.webm", "audio/webm", []byte("audio-bytes")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "ses_1", "0.webm"))
	if err != nil {
		t.Fatalf("blob not on disk: %v", err)
	}
	if !bytes.Equal(data, []byte("audio-bytes")) {
		t.Errorf("unexpected blob content %q", data)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(root, "ses_1"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 file, got %d", len(entries))
	}

	if err := s.Delete(ctx, "ses_1", "0.webm"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	// Deleting again is not an error.
	if err := s.Delete(ctx, "ses_1", "0.webm"); err != nil {
		t.Errorf("Delete of missing blob failed: %v", err)
	}
}

func TestFilesystemStorePing(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore failed: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
