package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
)

// UndeterminedLanguage is stored when no language can be detected
const UndeterminedLanguage = "und"

// LanguageDetectionStage records the transcript's detected language and
// warns when it disagrees with the declared one. It never changes the
// declared language.
type LanguageDetectionStage struct {
	Base
}

// NewLanguageDetectionStage creates the language detection stage
func NewLanguageDetectionStage(d Deps) *LanguageDetectionStage {
	return &LanguageDetectionStage{Base: newBase(StageLanguageDetection, d)}
}

// DetectLanguage returns the ISO 639-1 code of text, or "und"
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return UndeterminedLanguage
	}
	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return UndeterminedLanguage
	}
	if code := info.Lang.Iso6391(); code != "" {
		return code
	}
	return UndeterminedLanguage
}

// Run executes the stage for rc.MeetingID
func (s *LanguageDetectionStage) Run(ctx context.Context, rc RunContext) error {
	return s.Execute(ctx, rc, []string{entities.FieldTranscribedText}, func(ctx context.Context, m *entities.Meeting) (map[string]interface{}, error) {
		detected := DetectLanguage(m.TranscribedText)
		declared := entities.BaseLanguage(m.Language)
		if detected != UndeterminedLanguage && declared != "" && detected != declared {
			s.Warn(ctx, rc, fmt.Sprintf("Detected language %q differs from declared %q", detected, m.Language))
		}
		return map[string]interface{}{entities.FieldDetectedLanguage: detected}, nil
	})
}
