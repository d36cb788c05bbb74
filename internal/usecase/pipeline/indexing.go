package pipeline

import (
	"context"
	"time"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	"github.com/johnquangdev/talk-tracer/internal/infrastructure/search"
)

// SearchIndex is the search sink documents are pushed into
type SearchIndex interface {
	Index(ctx context.Context, doc search.Document) error
}

// IndexingStage pushes transcript and summary to the search index and
// marks the meeting as indexed
type IndexingStage struct {
	Base
	index SearchIndex
	now   func() time.Time
}

// NewIndexingStage creates the indexing stage
func NewIndexingStage(d Deps, index SearchIndex) *IndexingStage {
	return &IndexingStage{Base: newBase(StageIndexing, d), index: index, now: time.Now}
}

// Run executes the stage for rc.MeetingID
func (s *IndexingStage) Run(ctx context.Context, rc RunContext) error {
	required := []string{entities.FieldTranscribedText, entities.FieldSummary}
	return s.Execute(ctx, rc, required, func(ctx context.Context, m *entities.Meeting) (map[string]interface{}, error) {
		doc := search.Document{
			MeetingID:       m.HexID(),
			TranscribedText: m.TranscribedText,
			Summary:         m.Summary,
		}
		if err := s.index.Index(ctx, doc); err != nil {
			return nil, Upstream(s.name, "search_index", err)
		}
		return map[string]interface{}{entities.FieldIndexedAt: s.now().UTC()}, nil
	})
}
