package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	"github.com/johnquangdev/talk-tracer/internal/domain/repositories"
)

// Stage names, in run order
const (
	StageTranscription     = "transcription"
	StageLanguageDetection = "language_detection"
	StageAnalytics         = "nlp"
	StageSummary           = "summary"
	StageTranslation       = "translation"
	StageIndexing          = "indexing"
)

// Stage is one unit of processing over a meeting document.
// A stage signals failure through its error and never retries itself.
type Stage interface {
	Name() string
	Run(ctx context.Context, rc RunContext) error
}

// RunContext identifies the document and the run a stage executes for
type RunContext struct {
	MeetingID string
	RunID     string
	Attempt   int
}

// ComputeFunc derives the fields a stage owns from the fetched meeting
type ComputeFunc func(ctx context.Context, meeting *entities.Meeting) (map[string]interface{}, error)

// Deps are the capabilities shared by every stage
type Deps struct {
	Meetings repositories.MeetingRepository
	Auditor  *Auditor
	Metrics  *Metrics
	Logger   *zap.Logger
}

// Base implements the fetch, precondition, persist and audit steps common
// to all stages. Stages embed it and supply only their computation.
type Base struct {
	name     string
	meetings repositories.MeetingRepository
	audit    *Auditor
	metrics  *Metrics
	logger   *zap.Logger
}

func newBase(name string, d Deps) Base {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return Base{
		name:     name,
		meetings: d.Meetings,
		audit:    d.Auditor,
		metrics:  d.Metrics,
		logger:   logger.With(zap.String("stage", name)),
	}
}

// Name returns the stage name
func (b Base) Name() string {
	return b.name
}

// Fetch loads the meeting; an absent document is a persistence failure
func (b Base) Fetch(ctx context.Context, rc RunContext) (*entities.Meeting, error) {
	meeting, err := b.meetings.FindByID(ctx, rc.MeetingID)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidMeetingID) {
			return nil, &StageError{Kind: KindPersistence, Stage: b.name, MeetingID: rc.MeetingID, Message: "meeting not found", Cause: err}
		}
		return nil, &StageError{Kind: KindPersistence, Stage: b.name, MeetingID: rc.MeetingID, Message: "failed to fetch meeting", Cause: err}
	}
	if meeting == nil {
		return nil, &StageError{Kind: KindPersistence, Stage: b.name, MeetingID: rc.MeetingID, Message: "meeting not found"}
	}
	return meeting, nil
}

// Require checks that every field is present and non-empty, naming the
// first one that is not
func (b Base) Require(meeting *entities.Meeting, fields ...string) error {
	for _, f := range fields {
		if !meeting.HasField(f) {
			err := MissingField(b.name, f)
			err.MeetingID = meeting.HexID()
			return err
		}
	}
	return nil
}

// Persist writes the stage's fields in a single update and verifies that
// exactly one document was modified
func (b Base) Persist(ctx context.Context, rc RunContext, fields map[string]interface{}) error {
	res, err := b.meetings.UpdateFields(ctx, rc.MeetingID, fields)
	if err != nil {
		return &StageError{Kind: KindPersistence, Stage: b.name, MeetingID: rc.MeetingID, Message: "failed to update meeting", Cause: err}
	}
	if res.Modified != 1 {
		return &StageError{
			Kind:      KindPersistence,
			Stage:     b.name,
			MeetingID: rc.MeetingID,
			Message:   fmt.Sprintf("update matched %d and modified %d documents, expected 1", res.Matched, res.Modified),
		}
	}
	return nil
}

// Info, Warn and Error emit audit records for this stage
func (b Base) Info(ctx context.Context, rc RunContext, msg string) {
	b.audit.Record(ctx, b.name, rc, entities.AuditLevelInfo, msg)
}

func (b Base) Warn(ctx context.Context, rc RunContext, msg string) {
	b.audit.Record(ctx, b.name, rc, entities.AuditLevelWarning, msg)
}

func (b Base) Error(ctx context.Context, rc RunContext, msg string) {
	b.audit.Record(ctx, b.name, rc, entities.AuditLevelError, msg)
}

// Execute runs the full stage lifecycle: fetch, require, compute, persist.
// Every failure is audited at ERROR before it is returned.
func (b Base) Execute(ctx context.Context, rc RunContext, required []string, compute ComputeFunc) error {
	start := time.Now()
	b.Info(ctx, rc, fmt.Sprintf("Starting %s for meeting %s", b.name, rc.MeetingID))

	err := b.execute(ctx, rc, required, compute)
	b.metrics.ObserveStage(b.name, err, time.Since(start))
	if err != nil {
		b.Error(ctx, rc, fmt.Sprintf("Error in %s: %v", b.name, err))
		return err
	}

	b.Info(ctx, rc, fmt.Sprintf("Completed %s for meeting %s", b.name, rc.MeetingID))
	return nil
}

func (b Base) execute(ctx context.Context, rc RunContext, required []string, compute ComputeFunc) error {
	meeting, err := b.Fetch(ctx, rc)
	if err != nil {
		return err
	}
	if err := b.Require(meeting, required...); err != nil {
		return err
	}

	fields, err := compute(ctx, meeting)
	if err != nil {
		return err
	}
	return b.Persist(ctx, rc, fields)
}
