package audio

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSequence extracts the chunk sequence number from a client-supplied
// filename of the form <base>_<seq>.<ext>, e.g. "audio_0.webm" -> 0.
// The second return is false when no sequence number can be derived; such a
// chunk is treated as a single unnumbered unit keyed by its literal name.
//
// The sequence label is client-declared and accepted as-is; the server does
// not impose its own ordering on numbered chunks.
func ParseSequence(fileName string) (int, bool) {
	base := fileName
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		base = base[:idx]
	}
	idx := strings.LastIndex(base, "_")
	if idx < 0 || idx == len(base)-1 {
		return 0, false
	}
	seq, err := strconv.Atoi(base[idx+1:])
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// SimplifiedName returns the server-side name for a chunk: "<seq>.<ext>" for
// numbered chunks, the literal filename otherwise.
func SimplifiedName(fileName string) string {
	seq, ok := ParseSequence(fileName)
	if !ok {
		return fileName
	}
	ext := Extension(fileName)
	if ext == "" {
		return strconv.Itoa(seq)
	}
	return fmt.Sprintf("%d.%s", seq, ext)
}
