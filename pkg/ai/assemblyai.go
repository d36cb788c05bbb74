package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/talk-tracer/pkg/config"
)

// AssemblyAIRecognizer turns short audio files into text with the AssemblyAI SDK
type AssemblyAIRecognizer struct {
	client *aai.Client
}

// NewAssemblyAIRecognizer creates a recognizer using the provided config.
// If the key is empty, falls back to ASSEMBLYAI_API_KEY.
func NewAssemblyAIRecognizer(cfg *config.AssemblyAIConfig) *AssemblyAIRecognizer {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	return &AssemblyAIRecognizer{client: aai.NewClient(apiKey)}
}

// NewAssemblyAIRecognizerWithClient wraps an existing SDK client
func NewAssemblyAIRecognizerWithClient(client *aai.Client) *AssemblyAIRecognizer {
	return &AssemblyAIRecognizer{client: client}
}

// Recognize uploads the audio file and waits for its transcript.
// Silence or unintelligible speech yields ErrUnintelligible.
func (r *AssemblyAIRecognizer) Recognize(ctx context.Context, audioPath, language string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open segment audio: %w", err)
	}
	defer f.Close()

	params := &aai.TranscriptOptionalParams{
		LanguageCode: aai.TranscriptLanguageCode(AssemblyAILanguageCode(language)),
	}

	transcript, err := r.client.Transcripts.TranscribeFromReader(ctx, f, params)
	if err != nil {
		return "", &UpstreamError{Service: "assemblyai", Err: err}
	}

	if transcript.Status == aai.TranscriptStatusError {
		msg := "transcription failed"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		// AssemblyAI reports audio without speech as an error status
		if strings.Contains(strings.ToLower(msg), "no spoken audio") {
			return "", ErrUnintelligible
		}
		return "", &UpstreamError{Service: "assemblyai", Err: fmt.Errorf("%s", msg)}
	}

	if transcript.Text == nil || strings.TrimSpace(*transcript.Text) == "" {
		return "", ErrUnintelligible
	}
	return strings.TrimSpace(*transcript.Text), nil
}

// AssemblyAILanguageCode maps a language-region tag to AssemblyAI's code set.
// English keeps its regional variant; other languages use the base code.
func AssemblyAILanguageCode(tag string) string {
	norm := strings.ToLower(strings.ReplaceAll(tag, "-", "_"))
	switch norm {
	case "en_us":
		return "en_us"
	case "en_gb", "en_uk":
		return "en_uk"
	case "en_au":
		return "en_au"
	}
	if i := strings.Index(norm, "_"); i > 0 {
		return norm[:i]
	}
	return norm
}
