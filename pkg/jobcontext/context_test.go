package jobcontext

import (
	"context"
	"testing"
	"time"
)

func TestRunBegin(t *testing.T) {
	ctx, cancel := RunBegin(context.Background(), "run-1", "meeting-1", time.Minute)
	defer cancel()

	if got := GetRunID(ctx); got != "run-1" {
		t.Errorf("GetRunID() = %q, want run-1", got)
	}
	if got := GetMeetingID(ctx); got != "meeting-1" {
		t.Errorf("GetMeetingID() = %q, want meeting-1", got)
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected run context to carry a deadline")
	}
	if _, ok := GetRunStartTime(ctx); !ok {
		t.Error("expected start time")
	}
}

func TestRunBegin_NoTimeout(t *testing.T) {
	ctx, cancel := RunBegin(context.Background(), "run-1", "meeting-1", 0)
	if _, ok := ctx.Deadline(); ok {
		t.Error("expected no deadline")
	}
	cancel()
	if ctx.Err() == nil {
		t.Error("expected cancel to end the context")
	}
}

func TestStageBegin(t *testing.T) {
	runCtx, cancel := RunBegin(context.Background(), "run-1", "meeting-1", 0)
	defer cancel()

	ctx, stageCancel := StageBegin(WithWorker(runCtx, 3), "summary", 2, time.Second)
	defer stageCancel()

	meta := GetRunMetadata(ctx)
	if meta.Stage != "summary" || meta.Attempt != 2 || meta.WorkerID != 3 || meta.RunID != "run-1" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if len(Fields(ctx)) != 5 {
		t.Errorf("Fields() returned %d fields, want 5", len(Fields(ctx)))
	}

	// cancelling the stage leaves the run alive
	stageCancel()
	if runCtx.Err() != nil {
		t.Error("run context cancelled by stage cancel")
	}
}

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	if GetWorkerID(ctx) != -1 {
		t.Error("expected -1 worker id")
	}
	if GetAttempt(ctx) != 0 {
		t.Error("expected zero attempt")
	}
	if len(Fields(ctx)) != 0 {
		t.Error("expected no fields")
	}
}
