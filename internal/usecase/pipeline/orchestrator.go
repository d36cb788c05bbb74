package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	"github.com/johnquangdev/talk-tracer/pkg/jobcontext"
)

// Locker grants exclusive ownership of a meeting for the length of a run
type Locker interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

// RunRecorder persists the history of runs
type RunRecorder interface {
	Create(ctx context.Context, run *entities.PipelineRun) error
	Update(ctx context.Context, run *entities.PipelineRun) error
}

// Policy bounds how long runs take and how failed stages are retried
type Policy struct {
	RunTimeout   time.Duration
	StageTimeout time.Duration
	// StageRetries is the number of extra attempts for upstream failures
	StageRetries int
	RetryBackoff time.Duration
	LockTTL      time.Duration
}

// RunReport is the producer-facing outcome of a run: success, or the first
// failing stage and its error. Runs never report partial success.
type RunReport struct {
	RunID       string
	MeetingID   string
	Success     bool
	FailedStage string
	Err         error
	Stages      []entities.StageTiming
}

// Orchestrator executes the stage chain for one meeting at a time,
// stopping at the first failure
type Orchestrator struct {
	stages   []Stage
	policy   Policy
	locker   Locker
	recorder RunRecorder
	metrics  *Metrics
	logger   *zap.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLocker rejects concurrent runs on the same meeting
func WithLocker(l Locker) Option {
	return func(o *Orchestrator) { o.locker = l }
}

// WithRecorder persists run history
func WithRecorder(r RunRecorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithMetrics reports run outcomes
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an orchestrator running stages in the given order
func NewOrchestrator(stages []Stage, policy Policy, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		stages: stages,
		policy: policy,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StageNames returns the configured stage order
func (o *Orchestrator) StageNames() []string {
	names := make([]string, 0, len(o.stages))
	for _, s := range o.stages {
		names = append(names, s.Name())
	}
	return names
}

// Run executes every stage for meetingID in order and reports the outcome
func (o *Orchestrator) Run(ctx context.Context, meetingID string) RunReport {
	run := entities.NewPipelineRun(meetingID)
	report := RunReport{RunID: run.ID.String(), MeetingID: meetingID}
	logger := o.logger.With(zap.String("meeting_id", meetingID), zap.String("run_id", report.RunID))

	if o.locker != nil {
		acquired, err := o.locker.Acquire(ctx, meetingID, report.RunID, o.policy.LockTTL)
		if err != nil {
			report.Err = fmt.Errorf("failed to acquire run lock: %w", err)
			o.metrics.ObserveRun(RunOutcomeFailed)
			logger.Error("❌ Failed to acquire run lock", zap.Error(err))
			return report
		}
		if !acquired {
			report.Err = entities.ErrRunInProgress
			run.MarkAsRejected(entities.ErrRunInProgress.Error())
			o.record(ctx, logger, run, true)
			o.metrics.ObserveRun(RunOutcomeRejected)
			logger.Warn("⏳ Run rejected, meeting already being processed")
			return report
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := o.locker.Release(releaseCtx, meetingID, report.RunID); err != nil {
				logger.Warn("⚠️ Failed to release run lock", zap.Error(err))
			}
		}()
	}

	runCtx, cancel := jobcontext.RunBegin(ctx, report.RunID, meetingID, o.policy.RunTimeout)
	defer cancel()

	o.record(runCtx, logger, run, true)
	logger.Info("🚀 Pipeline run started", zap.Strings("stages", o.StageNames()))

	for _, stage := range o.stages {
		name := stage.Name()
		run.MarkAsRunning(name)
		o.record(runCtx, logger, run, false)

		start := time.Now()
		attempts, err := o.runStage(runCtx, stage, RunContext{MeetingID: meetingID, RunID: report.RunID})
		timing := entities.StageTiming{
			Stage:      name,
			Attempts:   attempts,
			DurationMs: time.Since(start).Milliseconds(),
			Succeeded:  err == nil,
		}
		run.RecordStage(timing)
		report.Stages = append(report.Stages, timing)

		if err != nil {
			report.FailedStage = name
			report.Err = err
			run.MarkAsFailed(name, string(KindOf(err)), err.Error())
			o.record(runCtx, logger, run, false)
			o.metrics.ObserveRun(RunOutcomeFailed)
			logger.Error("❌ Pipeline run failed",
				zap.String("stage", name),
				zap.Int("attempts", attempts),
				zap.Error(err))
			return report
		}
		logger.Info("✅ Stage completed", zap.String("stage", name), zap.Int64("duration_ms", timing.DurationMs))
	}

	report.Success = true
	run.MarkAsCompleted()
	o.record(runCtx, logger, run, false)
	o.metrics.ObserveRun(RunOutcomeSucceeded)
	logger.Info("🎉 Pipeline run completed")
	return report
}

// runStage runs one stage under its timeout, retrying retryable failures
// with exponential backoff. It returns the number of attempts made.
func (o *Orchestrator) runStage(ctx context.Context, stage Stage, rc RunContext) (int, error) {
	expo := backoff.NewExponentialBackOff()
	if o.policy.RetryBackoff > 0 {
		expo.InitialInterval = o.policy.RetryBackoff
	}
	expo.MaxElapsedTime = 0

	retries := o.policy.StageRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(retries)), ctx)

	var (
		attempts int
		lastErr  error
	)
	op := func() error {
		attempts++
		rc.Attempt = attempts
		stageCtx, cancel := jobcontext.StageBegin(ctx, stage.Name(), attempts, o.policy.StageTimeout)
		defer cancel()

		err := safeRun(stageCtx, stage, rc)
		if err == nil {
			return nil
		}
		lastErr = err
		if !Retryable(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		o.logger.Warn("🔄 Retrying stage",
			append(jobcontext.Fields(stageCtx), zap.Error(err))...)
		return err
	}

	err := backoff.Retry(op, policy)
	if err != nil && lastErr != nil && errors.Is(err, ctx.Err()) {
		// cancelled while waiting between attempts, report the stage failure
		err = lastErr
	}
	return attempts, err
}

func safeRun(ctx context.Context, stage Stage, rc RunContext) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: panic recovered: %v", stage.Name(), p)
		}
	}()
	return stage.Run(ctx, rc)
}

// record persists the run state; history is best-effort and never fails a run
func (o *Orchestrator) record(ctx context.Context, logger *zap.Logger, run *entities.PipelineRun, create bool) {
	if o.recorder == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var err error
	if create {
		err = o.recorder.Create(ctx, run)
	} else {
		err = o.recorder.Update(ctx, run)
	}
	if err != nil {
		logger.Warn("⚠️ Failed to record pipeline run", zap.Error(err))
	}
}
