package pipeline

import (
	"time"

	"github.com/johnquangdev/talk-tracer/internal/usecase/nlp"
)

// Components are the long-lived clients the stages are built from
type Components struct {
	Blobs      BlobStore
	Media      Media
	Recognizer Recognizer
	Annotator  nlp.Annotator
	Scorer     nlp.Scorer
	Summarizer Summarizer
	Translator Translator
	Index      SearchIndex
}

// StageOptions tune the stage chain
type StageOptions struct {
	SegmentDuration  time.Duration
	RecognizeTimeout time.Duration
	TargetLanguages  []string
	DetectLanguage   bool
}

// BuildStages returns the stage chain in run order:
// transcription, [language_detection], nlp, summary, translation, indexing
func BuildStages(d Deps, c Components, opts StageOptions) []Stage {
	stages := []Stage{
		NewTranscriptionStage(d, c.Blobs, c.Media, c.Recognizer, c.Annotator, opts.SegmentDuration, opts.RecognizeTimeout),
	}
	if opts.DetectLanguage {
		stages = append(stages, NewLanguageDetectionStage(d))
	}
	return append(stages,
		NewAnalyticsStage(d, c.Annotator, c.Scorer),
		NewSummaryStage(d, c.Summarizer),
		NewTranslationStage(d, c.Translator, opts.TargetLanguages),
		NewIndexingStage(d, c.Index),
	)
}
