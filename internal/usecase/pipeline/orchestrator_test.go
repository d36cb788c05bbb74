package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	pkgai "github.com/johnquangdev/talk-tracer/pkg/ai"
)

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	err      error
	released []string
}

func (l *fakeLocker) Acquire(_ context.Context, key, token string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.held == nil {
		l.held = make(map[string]string)
	}
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = token
	return true, nil
}

func (l *fakeLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		l.released = append(l.released, key)
	}
	return nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	statuses []entities.PipelineRunStatus
	last     entities.PipelineRun
}

func (r *fakeRecorder) Create(_ context.Context, run *entities.PipelineRun) error {
	return r.Update(context.Background(), run)
}

func (r *fakeRecorder) Update(_ context.Context, run *entities.PipelineRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, run.Status)
	r.last = *run
	return nil
}

// stubStage records its invocations and returns errs in order
type stubStage struct {
	name  string
	mu    sync.Mutex
	calls int
	errs  []error
	fn    func(ctx context.Context) error
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Run(ctx context.Context, _ RunContext) error {
	s.mu.Lock()
	s.calls++
	var err error
	if len(s.errs) > 0 {
		err = s.errs[0]
		s.errs = s.errs[1:]
	}
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return err
}

func (s *stubStage) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func fastPolicy(retries int) Policy {
	return Policy{
		RunTimeout:   time.Minute,
		StageTimeout: time.Minute,
		StageRetries: retries,
		RetryBackoff: time.Millisecond,
		LockTTL:      time.Minute,
	}
}

type endToEnd struct {
	meeting    *entities.Meeting
	store      *fakeMeetings
	audit      *fakeAudit
	recognizer *fakeRecognizer
	summarizer *fakeSummarizer
	translator *fakeTranslator
	index      *fakeIndex
	orch       *Orchestrator
}

func newEndToEnd(policy Policy, opts ...Option) *endToEnd {
	e := &endToEnd{
		meeting: newMeeting(),
		audit:   &fakeAudit{},
		recognizer: &fakeRecognizer{results: map[string]recognition{
			"seg-0":  {text: "Good morning team. Revenue grew in the third quarter."},
			"seg-60": {err: pkgai.ErrUnintelligible},
			"seg-120": {text: "The marketing budget needs review. " +
				"Alice will present the hiring plan. Thanks everyone for joining today."},
		}},
		summarizer: &fakeSummarizer{out: "Revenue grew and the marketing budget needs review before the hiring plan."},
		translator: &fakeTranslator{},
		index:      &fakeIndex{},
	}
	e.store = newFakeMeetings(e.meeting)

	d := testDeps(e.store, e.audit)
	stages := BuildStages(d, Components{
		Blobs:      &fakeBlobs{},
		Media:      &fakeMedia{duration: 150 * time.Second},
		Recognizer: e.recognizer,
		Annotator:  &fakeAnnotator{},
		Scorer:     lengthScorer{},
		Summarizer: e.summarizer,
		Translator: e.translator,
		Index:      e.index,
	}, StageOptions{
		SegmentDuration: time.Minute,
		TargetLanguages: []string{"es-ES"},
		DetectLanguage:  true,
	})
	e.orch = NewOrchestrator(stages, policy, opts...)
	return e
}

func TestOrchestrator_StageOrder(t *testing.T) {
	e := newEndToEnd(fastPolicy(1))
	assert.Equal(t, []string{
		StageTranscription, StageLanguageDetection, StageAnalytics,
		StageSummary, StageTranslation, StageIndexing,
	}, e.orch.StageNames())

	stages := BuildStages(Deps{}, Components{}, StageOptions{})
	assert.Len(t, stages, 5)
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	recorder := &fakeRecorder{}
	locker := &fakeLocker{}
	e := newEndToEnd(fastPolicy(1), WithRecorder(recorder), WithLocker(locker))

	report := e.orch.Run(context.Background(), e.meeting.HexID())

	require.True(t, report.Success, "run failed: %v", report.Err)
	assert.NoError(t, report.Err)
	assert.Empty(t, report.FailedStage)
	assert.Len(t, report.Stages, 6)
	assert.NotEmpty(t, report.RunID)

	got := e.store.get(e.meeting.HexID())
	assert.True(t, strings.HasPrefix(got.TranscribedText, "Good morning team."))
	assert.NotContains(t, got.TranscribedText, "  ")
	assert.Equal(t, "en", got.DetectedLanguage)
	assert.NotEmpty(t, got.KeyPhrases)
	assert.NotEmpty(t, got.FrequentExpressions)
	assert.NotEmpty(t, got.MostPositivePhrases)
	assert.NotEmpty(t, got.MostNegativePhrases)
	assert.NotNil(t, got.NamedEntities)
	n := len(got.Summary)
	assert.True(t, n >= 30 && n <= 230, "summary length %d", n)
	assert.Equal(t, []string{"es-ES"}, keys(got.TranscriptionTranslations))
	assert.Equal(t, []string{"es-ES"}, keys(got.SummaryTranslations))
	require.NotNil(t, got.IndexedAt)

	assert.Equal(t, []string{e.meeting.HexID()}, e.index.search("marketing budget"))

	assert.Equal(t, entities.PipelineRunStatusCompleted, recorder.last.Status)
	assert.Len(t, recorder.last.Metadata.Data().Stages, 6)
	assert.Equal(t, []string{e.meeting.HexID()}, locker.released)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestOrchestrator_ShortCircuits(t *testing.T) {
	recorder := &fakeRecorder{}
	e := newEndToEnd(fastPolicy(0), WithRecorder(recorder))
	e.summarizer.errs = []error{errors.New("model unavailable")}

	report := e.orch.Run(context.Background(), e.meeting.HexID())

	assert.False(t, report.Success)
	assert.Equal(t, StageSummary, report.FailedStage)
	assert.True(t, IsUpstream(report.Err))
	assert.Empty(t, e.translator.calls)
	assert.Empty(t, e.index.docs)
	assert.Nil(t, e.store.get(e.meeting.HexID()).IndexedAt)

	assert.Equal(t, entities.PipelineRunStatusFailed, recorder.last.Status)
	require.NotNil(t, recorder.last.FailedStage)
	assert.Equal(t, StageSummary, *recorder.last.FailedStage)
	require.NotNil(t, recorder.last.ErrorKind)
	assert.Equal(t, string(KindUpstream), *recorder.last.ErrorKind)
}

func TestOrchestrator_RetriesUpstreamFailures(t *testing.T) {
	e := newEndToEnd(fastPolicy(1))
	e.summarizer.errs = []error{&pkgai.UpstreamError{Service: "groq", StatusCode: 503}}

	report := e.orch.Run(context.Background(), e.meeting.HexID())

	require.True(t, report.Success, "run failed: %v", report.Err)
	assert.Equal(t, 2, e.summarizer.calls)
	for _, st := range report.Stages {
		if st.Stage == StageSummary {
			assert.Equal(t, 2, st.Attempts)
		}
	}
}

func TestOrchestrator_RetryBudgetExhausted(t *testing.T) {
	stage := &stubStage{name: "flaky", errs: []error{
		Upstream("flaky", "svc", errors.New("one")),
		Upstream("flaky", "svc", errors.New("two")),
		Upstream("flaky", "svc", errors.New("three")),
	}}
	after := &stubStage{name: "after"}
	orch := NewOrchestrator([]Stage{stage, after}, fastPolicy(1))

	report := orch.Run(context.Background(), "m1")

	assert.False(t, report.Success)
	assert.Equal(t, 2, stage.callCount())
	assert.ErrorContains(t, report.Err, "two")
	assert.Equal(t, 0, after.callCount())
}

func TestOrchestrator_NoRetryForPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"missing field", MissingField("s", "summary")},
		{"persistence", Persistence("s", "meeting not found", nil)},
		{"client error", Upstream("s", "groq", &pkgai.UpstreamError{Service: "groq", StatusCode: 400})},
		{"unclassified", errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := &stubStage{name: "s", errs: []error{tt.err, nil}}
			report := NewOrchestrator([]Stage{stage}, fastPolicy(3)).Run(context.Background(), "m1")

			assert.False(t, report.Success)
			assert.Equal(t, 1, stage.callCount())
			assert.Equal(t, tt.err, report.Err)
		})
	}
}

func TestOrchestrator_RecoversPanics(t *testing.T) {
	stage := &stubStage{name: "boom", fn: func(context.Context) error { panic("nil map") }}
	report := NewOrchestrator([]Stage{stage}, fastPolicy(1)).Run(context.Background(), "m1")

	assert.False(t, report.Success)
	assert.Equal(t, "boom", report.FailedStage)
	assert.ErrorContains(t, report.Err, "panic recovered")
}

func TestOrchestrator_StageTimeout(t *testing.T) {
	stage := &stubStage{name: "slow", fn: func(ctx context.Context) error {
		<-ctx.Done()
		return Persistence("slow", "gave up", ctx.Err())
	}}
	policy := fastPolicy(0)
	policy.StageTimeout = 20 * time.Millisecond

	start := time.Now()
	report := NewOrchestrator([]Stage{stage}, policy).Run(context.Background(), "m1")

	assert.False(t, report.Success)
	assert.ErrorIs(t, report.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOrchestrator_RejectsConcurrentRun(t *testing.T) {
	locker := &fakeLocker{held: map[string]string{"m1": "other-run"}}
	recorder := &fakeRecorder{}
	stage := &stubStage{name: "s"}

	report := NewOrchestrator([]Stage{stage}, fastPolicy(0), WithLocker(locker), WithRecorder(recorder)).
		Run(context.Background(), "m1")

	assert.False(t, report.Success)
	assert.ErrorIs(t, report.Err, entities.ErrRunInProgress)
	assert.Equal(t, 0, stage.callCount())
	assert.Equal(t, entities.PipelineRunStatusRejected, recorder.last.Status)
	assert.Equal(t, "other-run", locker.held["m1"])
}

func TestOrchestrator_LockError(t *testing.T) {
	locker := &fakeLocker{err: errors.New("redis down")}
	stage := &stubStage{name: "s"}

	report := NewOrchestrator([]Stage{stage}, fastPolicy(0), WithLocker(locker)).Run(context.Background(), "m1")

	assert.False(t, report.Success)
	assert.ErrorContains(t, report.Err, "redis down")
	assert.Equal(t, 0, stage.callCount())
}

func TestOrchestrator_ReleasesLockOnFailure(t *testing.T) {
	locker := &fakeLocker{}
	stage := &stubStage{name: "s", errs: []error{MissingField("s", "summary")}}

	NewOrchestrator([]Stage{stage}, fastPolicy(0), WithLocker(locker)).Run(context.Background(), "m1")

	assert.Empty(t, locker.held)
	assert.Equal(t, []string{"m1"}, locker.released)
}
