package session

import (
	"testing"
	"time"
)

func rec(key string, seq int, name string, size int64) ChunkRecord {
	return ChunkRecord{
		Key:        key,
		Sequence:   seq,
		StoredName: name,
		SizeBytes:  size,
		UploadedAt: time.Now(),
	}
}

func TestChunkSetUpsert(t *testing.T) {
	cs := NewChunkSet()

	if replaced := cs.Upsert(rec("0", 0, "0.webm", 10)); replaced {
		t.Error("first insert must not report replaced")
	}
	if replaced := cs.Upsert(rec("1", 1, "1.webm", 20)); replaced {
		t.Error("distinct key must not report replaced")
	}
	if replaced := cs.Upsert(rec("0", 0, "0.webm", 30)); !replaced {
		t.Error("same key must report replaced")
	}

	if cs.Len() != 2 {
		t.Fatalf("expected 2 chunks, got %d", cs.Len())
	}
	if cs.TotalBytes() != 50 {
		t.Errorf("expected total 50 bytes, got %d", cs.TotalBytes())
	}
}

func TestChunkSetOrdering(t *testing.T) {
	cs := NewChunkSet()

	// Out-of-order numbered chunks plus two unnumbered ones.
	cs.Upsert(rec("2", 2, "2.webm", 1))
	cs.Upsert(rec("note.webm", -1, "note.webm", 1))
	cs.Upsert(rec("0", 0, "0.webm", 1))
	cs.Upsert(rec("extra.webm", -1, "extra.webm", 1))
	cs.Upsert(rec("1", 1, "1.webm", 1))

	want := []string{"0.webm", "1.webm", "2.webm", "note.webm", "extra.webm"}
	got := cs.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestChunkSetRecordsIsACopy(t *testing.T) {
	cs := NewChunkSet()
	cs.Upsert(rec("0", 0, "0.webm", 1))

	records := cs.Records()
	records[0].StoredName = "mutated"

	if cs.Records()[0].StoredName != "0.webm" {
		t.Error("Records must return a copy")
	}
}
