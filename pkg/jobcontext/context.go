package jobcontext

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type KeyContext string

var (
	keyRunID     KeyContext = "run_id"
	keyMeetingID KeyContext = "meeting_id"
	keyWorkerID  KeyContext = "worker_id"
	keyStage     KeyContext = "stage"
	keyAttempt   KeyContext = "attempt"
	keyStartTime KeyContext = "run_start_time"
)

// RunMetadata holds metadata for one pipeline run
type RunMetadata struct {
	RunID     string
	MeetingID string
	WorkerID  int
	Stage     string
	Attempt   int
	StartTime time.Time
}

// RunBegin derives a run context carrying metadata and bounded by timeout.
// A non-positive timeout only attaches a cancel function.
func RunBegin(parentCtx context.Context, runID, meetingID string, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, timeout)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}

	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyMeetingID, meetingID)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())

	return ctx, cancel
}

// StageBegin marks the stage and attempt currently executing inside a run,
// bounded by the stage timeout when positive
func StageBegin(ctx context.Context, stage string, attempt int, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, keyStage, stage)
	ctx = context.WithValue(ctx, keyAttempt, attempt)
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// WithWorker records which pool worker picked up the run
func WithWorker(ctx context.Context, workerID int) context.Context {
	return context.WithValue(ctx, keyWorkerID, workerID)
}

// GetRunID extracts run ID from context
func GetRunID(ctx context.Context) string {
	v, _ := ctx.Value(keyRunID).(string)
	return v
}

// GetMeetingID extracts meeting ID from context
func GetMeetingID(ctx context.Context) string {
	v, _ := ctx.Value(keyMeetingID).(string)
	return v
}

// GetStage extracts the executing stage from context
func GetStage(ctx context.Context) string {
	v, _ := ctx.Value(keyStage).(string)
	return v
}

// GetAttempt extracts the current stage attempt (1-based) from context
func GetAttempt(ctx context.Context) int {
	v, ok := ctx.Value(keyAttempt).(int)
	if !ok {
		return 0
	}
	return v
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetRunStartTime extracts run start time from context
func GetRunStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyStartTime).(time.Time)
	return startTime, ok
}

// GetRunMetadata extracts all run metadata from context
func GetRunMetadata(ctx context.Context) *RunMetadata {
	startTime, _ := GetRunStartTime(ctx)
	return &RunMetadata{
		RunID:     GetRunID(ctx),
		MeetingID: GetMeetingID(ctx),
		WorkerID:  GetWorkerID(ctx),
		Stage:     GetStage(ctx),
		Attempt:   GetAttempt(ctx),
		StartTime: startTime,
	}
}

// Fields returns the run metadata present in ctx as zap fields
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if v := GetRunID(ctx); v != "" {
		fields = append(fields, zap.String("run_id", v))
	}
	if v := GetMeetingID(ctx); v != "" {
		fields = append(fields, zap.String("meeting_id", v))
	}
	if v := GetStage(ctx); v != "" {
		fields = append(fields, zap.String("stage", v))
	}
	if v := GetAttempt(ctx); v > 0 {
		fields = append(fields, zap.Int("attempt", v))
	}
	if v := GetWorkerID(ctx); v >= 0 {
		fields = append(fields, zap.Int("worker_id", v))
	}
	return fields
}
