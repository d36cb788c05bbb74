package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	"github.com/johnquangdev/talk-tracer/internal/domain/repositories"
)

// RunRepository handles pipeline run history
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

var _ repositories.RunRepository = (*RunRepository)(nil)

// Create inserts a new run
func (r *RunRepository) Create(ctx context.Context, run *entities.PipelineRun) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	return r.db.WithContext(ctx).Create(run).Error
}

// Update persists the mutable columns of a run
func (r *RunRepository) Update(ctx context.Context, run *entities.PipelineRun) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.PipelineRun{}).
		Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":        run.Status,
			"current_stage": run.CurrentStage,
			"failed_stage":  run.FailedStage,
			"error_kind":    run.ErrorKind,
			"last_error":    run.LastError,
			"attempts":      run.Attempts,
			"started_at":    run.StartedAt,
			"completed_at":  run.CompletedAt,
			"metadata":      run.Metadata,
			"updated_at":    run.UpdatedAt,
		}).Error
}

// GetByID retrieves a run by id
func (r *RunRepository) GetByID(ctx context.Context, id string) (*entities.PipelineRun, error) {
	runID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	var run entities.PipelineRun
	if err := r.db.WithContext(ctx).Where("id = ?", runID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// ListByMeetingID retrieves the newest runs of a meeting
func (r *RunRepository) ListByMeetingID(ctx context.Context, meetingID string, limit int) ([]entities.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []entities.PipelineRun
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
