package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PipelineRunStatus represents the status of a pipeline run
type PipelineRunStatus string

const (
	PipelineRunStatusPending   PipelineRunStatus = "pending"   // Queued, not yet picked by a worker
	PipelineRunStatusRunning   PipelineRunStatus = "running"   // A stage is executing
	PipelineRunStatusCompleted PipelineRunStatus = "completed" // All stages succeeded
	PipelineRunStatusFailed    PipelineRunStatus = "failed"    // A stage failed, later stages skipped
	PipelineRunStatusRejected  PipelineRunStatus = "rejected"  // Another run held the meeting lock
)

// PipelineRun records one orchestrated execution of the stage chain for a meeting
type PipelineRun struct {
	ID           uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID    string            `json:"meeting_id" gorm:"type:varchar(24);not null;index"`
	Status       PipelineRunStatus `json:"status" gorm:"type:varchar(32);not null;index;default:'pending'"`
	CurrentStage string            `json:"current_stage,omitempty" gorm:"type:varchar(64)"`
	FailedStage  *string           `json:"failed_stage,omitempty" gorm:"type:varchar(64)"`
	ErrorKind    *string           `json:"error_kind,omitempty" gorm:"type:varchar(64)"`
	LastError    *string           `json:"last_error,omitempty" gorm:"type:text"`
	Attempts     int               `json:"attempts" gorm:"type:integer;default:0"`

	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`

	Metadata datatypes.JSONType[RunMetadata] `json:"metadata" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// RunMetadata stores per-stage timings of a run
type RunMetadata struct {
	Stages []StageTiming `json:"stages,omitempty"`
}

// StageTiming is the outcome of a single stage inside a run
type StageTiming struct {
	Stage      string `json:"stage"`
	Attempts   int    `json:"attempts"`
	DurationMs int64  `json:"duration_ms"`
	Succeeded  bool   `json:"succeeded"`
}

// NewPipelineRun creates a pending run for a meeting
func NewPipelineRun(meetingID string) *PipelineRun {
	now := time.Now()
	return &PipelineRun{
		ID:        uuid.New(),
		MeetingID: meetingID,
		Status:    PipelineRunStatusPending,
		Metadata:  datatypes.NewJSONType(RunMetadata{}),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkAsRunning moves the run onto a stage
func (r *PipelineRun) MarkAsRunning(stage string) {
	now := time.Now()
	if r.StartedAt == nil {
		r.StartedAt = &now
	}
	r.Status = PipelineRunStatusRunning
	r.CurrentStage = stage
	r.UpdatedAt = now
}

// RecordStage appends a stage timing to the metadata
func (r *PipelineRun) RecordStage(timing StageTiming) {
	meta := r.Metadata.Data()
	meta.Stages = append(meta.Stages, timing)
	r.Metadata = datatypes.NewJSONType(meta)
	r.Attempts += timing.Attempts
}

// MarkAsCompleted marks the run as successful
func (r *PipelineRun) MarkAsCompleted() {
	now := time.Now()
	r.Status = PipelineRunStatusCompleted
	r.CurrentStage = ""
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// MarkAsFailed marks the run as failed at a stage
func (r *PipelineRun) MarkAsFailed(stage, kind, errMsg string) {
	now := time.Now()
	r.Status = PipelineRunStatusFailed
	r.FailedStage = &stage
	r.ErrorKind = &kind
	r.LastError = &errMsg
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// MarkAsRejected marks a run that never started because the meeting was busy
func (r *PipelineRun) MarkAsRejected(reason string) {
	now := time.Now()
	r.Status = PipelineRunStatusRejected
	r.LastError = &reason
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// IsTerminal reports whether the run will not change anymore
func (r *PipelineRun) IsTerminal() bool {
	switch r.Status {
	case PipelineRunStatusCompleted, PipelineRunStatusFailed, PipelineRunStatusRejected:
		return true
	}
	return false
}

// TableName specifies the table name for GORM
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
