package session

import (
	"sort"
	"time"
)

// ChunkRecord is one accepted audio unit. Records are owned exclusively by
// their session and are keyed by the client-declared sequence label.
type ChunkRecord struct {
	// Key uniquely identifies the chunk within the session: the decimal
	// sequence number for numbered chunks, the literal filename otherwise.
	Key string

	// Sequence is the parsed sequence number, or -1 for unnumbered chunks.
	Sequence int

	// StoredName is the simplified server-side name, e.g. "0.webm".
	StoredName string

	// OriginalName is the filename the client uploaded with.
	OriginalName string

	ContentType string
	SizeBytes   int64
	UploadedAt  time.Time
}

// ChunkSet holds the accepted chunks of one session. Re-uploading a chunk
// with an existing key replaces the prior record instead of duplicating it.
// ChunkSet is not safe for concurrent use; the registry's per-session lock
// serializes all access.
type ChunkSet struct {
	records []ChunkRecord
	index   map[string]int
}

// NewChunkSet returns an empty chunk set.
func NewChunkSet() *ChunkSet {
	return &ChunkSet{index: make(map[string]int)}
}

// Upsert inserts or replaces the record with the same key. It reports whether
// an existing record was replaced.
func (cs *ChunkSet) Upsert(rec ChunkRecord) bool {
	if pos, ok := cs.index[rec.Key]; ok {
		cs.records[pos] = rec
		return true
	}
	cs.index[rec.Key] = len(cs.records)
	cs.records = append(cs.records, rec)
	return false
}

// Len returns the number of accepted chunks.
func (cs *ChunkSet) Len() int {
	return len(cs.records)
}

// Records returns a copy of the chunk records, numbered chunks first in
// ascending sequence order, unnumbered chunks after them in arrival order.
func (cs *ChunkSet) Records() []ChunkRecord {
	out := make([]ChunkRecord, len(cs.records))
	copy(out, cs.records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Sequence >= 0 && b.Sequence >= 0:
			return a.Sequence < b.Sequence
		case a.Sequence >= 0:
			return true
		default:
			return false
		}
	})
	return out
}

// Names returns the stored names of the chunks in Records order.
func (cs *ChunkSet) Names() []string {
	recs := cs.Records()
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.StoredName
	}
	return names
}

// TotalBytes returns the summed size of all accepted chunks.
func (cs *ChunkSet) TotalBytes() int64 {
	var total int64
	for _, r := range cs.records {
		total += r.SizeBytes
	}
	return total
}
