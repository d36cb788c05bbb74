package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes reported by Metrics.ObserveRun
const (
	RunOutcomeSucceeded = "succeeded"
	RunOutcomeFailed    = "failed"
	RunOutcomeRejected  = "rejected"
)

// Metrics exposes pipeline counters and timings. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	stageRuns     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	segments      *prometheus.CounterVec
	runs          *prometheus.CounterVec
}

// NewMetrics creates and registers the pipeline collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talk_tracer",
			Name:      "stage_runs_total",
			Help:      "Stage executions by stage and outcome.",
		}, []string{"stage", "outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "talk_tracer",
			Name:      "stage_duration_seconds",
			Help:      "Stage execution time.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"stage"}),
		segments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talk_tracer",
			Name:      "segments_total",
			Help:      "Transcription windows by outcome.",
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talk_tracer",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.stageRuns, m.stageDuration, m.segments, m.runs)
	return m
}

// ObserveStage records one stage execution; the outcome label is the error
// kind, "ok" on success or "error" for failures outside the known kinds
func (m *Metrics) ObserveStage(stage string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	m.stageRuns.WithLabelValues(stage, outcome).Inc()
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveSegment counts one transcription window
func (m *Metrics) ObserveSegment(outcome SegmentOutcome) {
	if m == nil {
		return
	}
	m.segments.WithLabelValues(string(outcome)).Inc()
}

// ObserveRun counts one finished run
func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}
