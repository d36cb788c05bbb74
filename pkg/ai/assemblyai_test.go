package ai

import (
	"errors"
	"testing"
)

func TestAssemblyAILanguageCode(t *testing.T) {
	cases := map[string]string{
		"en-US": "en_us",
		"en-GB": "en_uk",
		"en-AU": "en_au",
		"es-ES": "es",
		"fr-FR": "fr",
		"pt-BR": "pt",
		"de":    "de",
	}
	for in, want := range cases {
		if got := AssemblyAILanguageCode(in); got != want {
			t.Errorf("AssemblyAILanguageCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUpstreamError_Retryable(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{0, true},
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{401, false},
		{404, false},
	}
	for _, c := range cases {
		err := &UpstreamError{Service: "groq", StatusCode: c.status, Err: errors.New("boom")}
		if got := err.Retryable(); got != c.want {
			t.Errorf("status %d: Retryable() = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestUpstreamError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&UpstreamError{Service: "assemblyai", Err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to reach the cause")
	}
	var up *UpstreamError
	if !errors.As(err, &up) || up.Service != "assemblyai" {
		t.Fatalf("expected errors.As to find UpstreamError, got %#v", up)
	}
}
