package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
)

// Summary length limits in characters
const (
	SummaryMinLength = 30
	SummaryMaxLength = 230
	summaryRatio     = 0.5
)

// Summarizer produces an abstractive summary within [minLen, maxLen] using
// deterministic decoding
type Summarizer interface {
	Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error)
}

// Bounds is the requested summary length range
type Bounds struct {
	Min int
	Max int
}

// SummaryBounds returns {30, clamp(round(length*0.5), 30, 230)}
func SummaryBounds(length int) Bounds {
	upper := int(math.Round(float64(length) * summaryRatio))
	if upper < SummaryMinLength {
		upper = SummaryMinLength
	}
	if upper > SummaryMaxLength {
		upper = SummaryMaxLength
	}
	return Bounds{Min: SummaryMinLength, Max: upper}
}

// TrimToLength cuts s to at most limit characters, backing off to the last
// word boundary when the cut falls inside a word
func TrimToLength(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	cut := runes[:limit]
	if !unicode.IsSpace(runes[limit]) {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}
	return strings.TrimSpace(string(cut))
}

// SummaryStage stores a length-bounded summary of the transcript
type SummaryStage struct {
	Base
	summarizer Summarizer
}

// NewSummaryStage creates the summary stage
func NewSummaryStage(d Deps, summarizer Summarizer) *SummaryStage {
	return &SummaryStage{Base: newBase(StageSummary, d), summarizer: summarizer}
}

// Run executes the stage for rc.MeetingID
func (s *SummaryStage) Run(ctx context.Context, rc RunContext) error {
	return s.Execute(ctx, rc, []string{entities.FieldTranscribedText}, func(ctx context.Context, m *entities.Meeting) (map[string]interface{}, error) {
		bounds := SummaryBounds(utf8.RuneCountInString(m.TranscribedText))

		summary, err := s.summarizer.Summarize(ctx, m.TranscribedText, bounds.Min, bounds.Max)
		if err != nil {
			return nil, Upstream(s.name, "summarizer", err)
		}
		summary = TrimToLength(summary, bounds.Max)
		if summary == "" {
			return nil, Upstream(s.name, "summarizer", errors.New("empty summary"))
		}
		if n := utf8.RuneCountInString(summary); n < bounds.Min {
			s.Warn(ctx, rc, fmt.Sprintf("Summary has %d characters, below the minimum of %d", n, bounds.Min))
		}
		return map[string]interface{}{entities.FieldSummary: summary}, nil
	})
}
