package audio

import "testing"

func TestIsSupportedFormat(t *testing.T) {
	supported := []string{
		"audio/webm",
		"audio/webm;codecs=opus",
		"audio/webm; codecs=opus",
		"AUDIO/WAV",
		"audio/ogg",
		"audio/mp3",
	}
	for _, ct := range supported {
		if !IsSupportedFormat(ct) {
			t.Errorf("%q should be supported", ct)
		}
	}

	unsupported := []string{
		"audio/xyz",
		"video/webm",
		"audio/webm;codecs=vorbis",
		"",
	}
	for _, ct := range unsupported {
		if IsSupportedFormat(ct) {
			t.Errorf("%q should not be supported", ct)
		}
	}
}

func TestInferContentType(t *testing.T) {
	cases := []struct {
		file string
		want string
	}{
		{"audio_0.webm", "audio/webm;codecs=opus"},
		{"audio_0.mp3", "audio/mp3"},
		{"audio_0.WAV", "audio/wav"},
		{"recording.m4a", "audio/m4a"},
		{"noextension", "audio/webm"},
		{"weird.xyz", "audio/webm"},
	}
	for _, tc := range cases {
		if got := InferContentType(tc.file); got != tc.want {
			t.Errorf("InferContentType(%q) = %q, want %q", tc.file, got, tc.want)
		}
	}
}

func TestExtension(t *testing.T) {
	cases := []struct {
		file string
		want string
	}{
		{"audio_0.webm", "webm"},
		{"a.b.OGG", "ogg"},
		{"noext", ""},
		{"trailingdot.", ""},
	}
	for _, tc := range cases {
		if got := Extension(tc.file); got != tc.want {
			t.Errorf("Extension(%q) = %q, want %q", tc.file, got, tc.want)
		}
	}
}
