package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	"github.com/johnquangdev/talk-tracer/internal/domain/repositories"
)

const auditWriteTimeout = 5 * time.Second

// Auditor writes stage execution records to the audit sink and mirrors
// them to the process log. Sink failures are logged, never returned.
type Auditor struct {
	repo   repositories.AuditRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewAuditor creates an auditor; a nil repo only logs
func NewAuditor(repo repositories.AuditRepository, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{repo: repo, logger: logger, now: time.Now}
}

// Record emits one audit record for a stage of a run
func (a *Auditor) Record(ctx context.Context, stage string, rc RunContext, level entities.AuditLevel, message string) {
	if a == nil {
		return
	}

	fields := []zap.Field{
		zap.String("stage", stage),
		zap.String("meeting_id", rc.MeetingID),
		zap.String("run_id", rc.RunID),
	}
	switch level {
	case entities.AuditLevelError:
		a.logger.Error(message, fields...)
	case entities.AuditLevelWarning:
		a.logger.Warn(message, fields...)
	default:
		a.logger.Info(message, fields...)
	}

	if a.repo == nil {
		return
	}

	// the record is written even when the stage context was cancelled
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	record := entities.NewAuditRecord(stage, rc.MeetingID, rc.RunID, level, message, a.now())
	if err := a.repo.Append(writeCtx, record); err != nil {
		a.logger.Warn("⚠️ Failed to write audit record", append(fields, zap.Error(err))...)
	}
}
