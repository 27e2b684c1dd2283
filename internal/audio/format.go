package audio

import "strings"

// supportedFormats is the accepted set of audio MIME types, matching the
// capability list published in the discovery document.
var supportedFormats = []string{
	"audio/webm",
	"audio/webm;codecs=opus",
	"audio/wav",
	"audio/ogg",
	"audio/ogg;codecs=opus",
	"audio/mp4",
	"audio/m4a",
	"audio/mp3",
}

// extensionContentTypes maps file extensions to the content type assumed when
// the client omits the Content-Type header.
var extensionContentTypes = map[string]string{
	"webm": "audio/webm;codecs=opus",
	"mp3":  "audio/mp3",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"m4a":  "audio/m4a",
	"mp4":  "audio/mp4",
}

// SupportedFormats returns the accepted audio MIME types.
func SupportedFormats() []string {
	out := make([]string, len(supportedFormats))
	copy(out, supportedFormats)
	return out
}

// IsSupportedFormat reports whether contentType is in the accepted set.
// Parameters after the media type are significant (audio/webm;codecs=opus is
// distinct from audio/webm) but surrounding whitespace is not.
func IsSupportedFormat(contentType string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(contentType, " ", ""))
	for _, f := range supportedFormats {
		if normalized == f {
			return true
		}
	}
	return false
}

// InferContentType derives a content type from the extension of fileName.
// Unknown extensions fall back to audio/webm, the most common capture format.
func InferContentType(fileName string) string {
	ext := Extension(fileName)
	if ct, ok := extensionContentTypes[ext]; ok {
		return ct
	}
	return "audio/webm"
}

// Extension returns the lowercase extension of fileName without the dot, or
// "" when there is none.
func Extension(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 || idx == len(fileName)-1 {
		return ""
	}
	return strings.ToLower(fileName[idx+1:])
}
