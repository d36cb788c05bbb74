package pipeline

import (
	"context"
	"fmt"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
)

// Translator renders text from one language into another
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// TranslationStage translates transcript and summary into every configured
// target language except the source. Any failure aborts the whole stage.
type TranslationStage struct {
	Base
	translator Translator
	targets    []string
}

// NewTranslationStage creates the translation stage for the given target codes
func NewTranslationStage(d Deps, translator Translator, targets []string) *TranslationStage {
	return &TranslationStage{
		Base:       newBase(StageTranslation, d),
		translator: translator,
		targets:    targets,
	}
}

// Run executes the stage for rc.MeetingID
func (s *TranslationStage) Run(ctx context.Context, rc RunContext) error {
	required := []string{entities.FieldLanguage, entities.FieldTranscribedText, entities.FieldSummary}
	return s.Execute(ctx, rc, required, func(ctx context.Context, m *entities.Meeting) (map[string]interface{}, error) {
		transcripts, summaries, err := s.translate(ctx, rc, m)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			entities.FieldTranscriptionTranslations: transcripts,
			entities.FieldSummaryTranslations:       summaries,
		}, nil
	})
}

func (s *TranslationStage) translate(ctx context.Context, rc RunContext, m *entities.Meeting) (map[string]string, map[string]string, error) {
	transcripts := make(map[string]string, len(s.targets))
	summaries := make(map[string]string, len(s.targets))
	source := entities.BaseLanguage(m.Language)

	for _, target := range s.targets {
		if target == "" || target == m.Language {
			continue
		}
		dest := entities.BaseLanguage(target)

		text, err := s.translator.Translate(ctx, m.TranscribedText, source, dest)
		if err != nil {
			return nil, nil, Upstream(s.name, "translator", fmt.Errorf("transcript to %s: %w", target, err))
		}
		summary, err := s.translator.Translate(ctx, m.Summary, source, dest)
		if err != nil {
			return nil, nil, Upstream(s.name, "translator", fmt.Errorf("summary to %s: %w", target, err))
		}

		transcripts[target] = text
		summaries[target] = summary
		s.Info(ctx, rc, fmt.Sprintf("Translated meeting %s to %s", rc.MeetingID, target))
	}
	return transcripts, summaries, nil
}
