package repositories

import (
	"context"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
)

// UpdateResult reports how many documents an update matched and changed
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// MeetingRepository defines persistence operations on meeting documents
type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error
	// FindByID returns (nil, nil) when no meeting has the id
	FindByID(ctx context.Context, id string) (*entities.Meeting, error)
	FindByIDs(ctx context.Context, ids []string) ([]*entities.Meeting, error)
	// UpdateFields merges fields into the meeting identified by id
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (UpdateResult, error)
}

// AuditRepository appends stage execution records
type AuditRepository interface {
	Append(ctx context.Context, record entities.AuditRecord) error
}

// RunRepository persists pipeline run history
type RunRepository interface {
	Create(ctx context.Context, run *entities.PipelineRun) error
	Update(ctx context.Context, run *entities.PipelineRun) error
	GetByID(ctx context.Context, id string) (*entities.PipelineRun, error)
	ListByMeetingID(ctx context.Context, meetingID string, limit int) ([]entities.PipelineRun, error)
}
