package pipeline

import (
	"context"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	"github.com/johnquangdev/talk-tracer/internal/usecase/nlp"
)

// AnalyticsStage derives key phrases, entities, frequent expressions and
// sentiment-ranked sentences from the transcript in one update
type AnalyticsStage struct {
	Base
	annotator nlp.Annotator
	scorer    nlp.Scorer
}

// NewAnalyticsStage creates the analytics stage
func NewAnalyticsStage(d Deps, annotator nlp.Annotator, scorer nlp.Scorer) *AnalyticsStage {
	return &AnalyticsStage{
		Base:      newBase(StageAnalytics, d),
		annotator: annotator,
		scorer:    scorer,
	}
}

// Run executes the stage for rc.MeetingID
func (s *AnalyticsStage) Run(ctx context.Context, rc RunContext) error {
	return s.Execute(ctx, rc, []string{entities.FieldTranscribedText}, func(ctx context.Context, m *entities.Meeting) (map[string]interface{}, error) {
		ann, err := s.annotator.Annotate(m.TranscribedText)
		if err != nil {
			return nil, Upstream(s.name, "annotator", err)
		}
		return nlp.Analyze(m.TranscribedText, ann, s.scorer).Fields(), nil
	})
}
