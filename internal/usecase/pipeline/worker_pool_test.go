package pipeline

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/talk-tracer/pkg/jobcontext"
)

type countingRunner struct {
	mu      sync.Mutex
	ran     []string
	workers map[int]bool
	delay   time.Duration
}

func (r *countingRunner) Run(ctx context.Context, meetingID string) RunReport {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ran = append(r.ran, meetingID)
	if r.workers == nil {
		r.workers = make(map[int]bool)
	}
	r.workers[jobcontext.GetWorkerID(ctx)] = true
	return RunReport{MeetingID: meetingID, Success: true}
}

func TestWorkerPool_DrainsOnStop(t *testing.T) {
	runner := &countingRunner{delay: time.Millisecond}
	pool := NewWorkerPool(runner, 3, 10, nil)

	var mu sync.Mutex
	var reports []RunReport
	pool.OnReport(func(r RunReport) {
		mu.Lock()
		reports = append(reports, r)
		mu.Unlock()
	})

	require.NoError(t, pool.Start(context.Background()))
	want := []string{"a", "b", "c", "d", "e", "f"}
	for _, id := range want {
		require.True(t, pool.Enqueue(id))
	}
	pool.Stop()

	got := append([]string(nil), runner.ran...)
	sort.Strings(got)
	assert.Equal(t, want, got)
	assert.Len(t, reports, len(want))
	for id := range runner.workers {
		assert.GreaterOrEqual(t, id, 0)
	}
}

func TestWorkerPool_QueueFull(t *testing.T) {
	pool := NewWorkerPool(&countingRunner{}, 1, 1, nil)

	assert.True(t, pool.Enqueue("a"))
	assert.False(t, pool.Enqueue("b"))
	assert.Equal(t, 1, pool.Pending())
}

func TestWorkerPool_StartStopLifecycle(t *testing.T) {
	pool := NewWorkerPool(&countingRunner{}, 1, 1, nil)
	require.NoError(t, pool.Start(context.Background()))
	assert.Error(t, pool.Start(context.Background()))

	pool.Stop()
	pool.Stop()
	assert.False(t, pool.Enqueue("late"))
	assert.Error(t, pool.Start(context.Background()))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveStage(StageSummary, nil, time.Second)
	m.ObserveStage(StageSummary, MissingField(StageSummary, "transcribed_text"), time.Second)
	m.ObserveSegment(SegmentSkipped)
	m.ObserveRun(RunOutcomeSucceeded)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageRuns.WithLabelValues(StageSummary, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageRuns.WithLabelValues(StageSummary, string(KindMissingField))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.segments.WithLabelValues(string(SegmentSkipped))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(RunOutcomeSucceeded)))

	var nilMetrics *Metrics
	nilMetrics.ObserveStage("x", nil, 0)
	nilMetrics.ObserveSegment(SegmentTranscribed)
	nilMetrics.ObserveRun(RunOutcomeFailed)
}

func TestMetrics_WiredThroughStages(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	f := newTranscriptionFixture(90*time.Second, map[string]recognition{
		"seg-0":  {text: "hello"},
		"seg-60": {text: "world"},
	})
	d := testDeps(f.store, f.audit)
	d.Metrics = metrics
	stage := NewTranscriptionStage(d, f.blobs, f.media, f.recognizer, f.annotator, time.Minute, time.Second)

	require.NoError(t, stage.Run(context.Background(), rcFor(f.meeting)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.segments.WithLabelValues(string(SegmentTranscribed))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.stageRuns.WithLabelValues(StageTranscription, "ok")))
}
