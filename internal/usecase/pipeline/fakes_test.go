package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	"github.com/johnquangdev/talk-tracer/internal/domain/repositories"
	"github.com/johnquangdev/talk-tracer/internal/infrastructure/search"
	"github.com/johnquangdev/talk-tracer/internal/usecase/nlp"
)

// fakeMeetings is an in-memory document store applying $set semantics
type fakeMeetings struct {
	mu        sync.Mutex
	docs      map[string]*entities.Meeting
	updates   int
	findErr   error
	updateErr error
	// modified overrides the reported modified count when non-nil
	modified *int64
}

func newFakeMeetings(ms ...*entities.Meeting) *fakeMeetings {
	f := &fakeMeetings{docs: make(map[string]*entities.Meeting)}
	for _, m := range ms {
		f.docs[m.HexID()] = m
	}
	return f
}

func (f *fakeMeetings) Create(_ context.Context, m *entities.Meeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[m.HexID()] = m
	return nil
}

func (f *fakeMeetings) FindByID(_ context.Context, id string) (*entities.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	m, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMeetings) FindByIDs(ctx context.Context, ids []string) ([]*entities.Meeting, error) {
	var out []*entities.Meeting
	for _, id := range ids {
		m, _ := f.FindByID(ctx, id)
		if m != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMeetings) UpdateFields(_ context.Context, id string, fields map[string]interface{}) (repositories.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return repositories.UpdateResult{}, f.updateErr
	}
	m, ok := f.docs[id]
	if !ok {
		return repositories.UpdateResult{}, nil
	}
	for name, v := range fields {
		applyField(m, name, v)
	}
	m.UpdatedAt = time.Now()
	f.updates++

	res := repositories.UpdateResult{Matched: 1, Modified: 1}
	if f.modified != nil {
		res.Modified = *f.modified
	}
	return res, nil
}

func (f *fakeMeetings) get(id string) *entities.Meeting {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.docs[id]
	return &cp
}

func (f *fakeMeetings) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

func applyField(m *entities.Meeting, name string, v interface{}) {
	switch name {
	case entities.FieldTranscribedText:
		m.TranscribedText = v.(string)
	case entities.FieldDetectedLanguage:
		m.DetectedLanguage = v.(string)
	case entities.FieldSummary:
		m.Summary = v.(string)
	case entities.FieldKeyPhrases:
		m.KeyPhrases = v.([]string)
	case entities.FieldNamedEntities:
		m.NamedEntities = v.([]entities.NamedEntity)
	case entities.FieldFrequentExpressions:
		m.FrequentExpressions = v.([]string)
	case entities.FieldMostPositivePhrases:
		m.MostPositivePhrases = v.([]string)
	case entities.FieldMostNegativePhrases:
		m.MostNegativePhrases = v.([]string)
	case entities.FieldTranscriptionTranslations:
		m.TranscriptionTranslations = v.(map[string]string)
	case entities.FieldSummaryTranslations:
		m.SummaryTranslations = v.(map[string]string)
	case entities.FieldIndexedAt:
		t := v.(time.Time)
		m.IndexedAt = &t
	default:
		panic("unexpected field " + name)
	}
}

type fakeAudit struct {
	mu      sync.Mutex
	records []entities.AuditRecord
	err     error
}

func (f *fakeAudit) Append(_ context.Context, r entities.AuditRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeAudit) levels(stage string) []entities.AuditLevel {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.AuditLevel
	for _, r := range f.records {
		if r.TaskInstanceID == "talk_tracer."+stage {
			out = append(out, r.Level)
		}
	}
	return out
}

func (f *fakeAudit) has(level entities.AuditLevel, substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.Level == level && strings.Contains(r.Message, substr) {
			return true
		}
	}
	return false
}

type fakeBlobs struct {
	err       error
	downloads []string
}

func (f *fakeBlobs) DownloadToFile(_ context.Context, object, _ string) error {
	f.downloads = append(f.downloads, object)
	return f.err
}

// fakeMedia names each cut "seg-<start seconds>"
type fakeMedia struct {
	duration   time.Duration
	probeErr   error
	cutErr     error
	tempErr    error
	cleanedUp  bool
	cutCleaned int
}

func (f *fakeMedia) TempFile(object string) (string, func(), error) {
	if f.tempErr != nil {
		return "", nil, f.tempErr
	}
	return "/tmp/fake-" + object, func() { f.cleanedUp = true }, nil
}

func (f *fakeMedia) Duration(context.Context, string) (time.Duration, error) {
	return f.duration, f.probeErr
}

func (f *fakeMedia) Cut(_ context.Context, _ string, start, _ time.Duration) (string, func(), error) {
	if f.cutErr != nil {
		return "", nil, f.cutErr
	}
	return fmt.Sprintf("seg-%d", int(start.Seconds())), func() { f.cutCleaned++ }, nil
}

type recognition struct {
	text string
	err  error
}

type fakeRecognizer struct {
	results   map[string]recognition
	calls     []string
	languages []string
	onCall    func(path string)
}

func (f *fakeRecognizer) Recognize(_ context.Context, path, language string) (string, error) {
	f.calls = append(f.calls, path)
	f.languages = append(f.languages, language)
	if f.onCall != nil {
		f.onCall(path)
	}
	r, ok := f.results[path]
	if !ok {
		return "", errors.New("no result configured")
	}
	return r.text, r.err
}

// fakeAnnotator splits on whitespace, tags every word NN and marks words in
// labels as single-token entities
type fakeAnnotator struct {
	labels map[string]string
	err    error
}

func (f *fakeAnnotator) Annotate(text string) (*nlp.Annotation, error) {
	if f.err != nil {
		return nil, f.err
	}
	ann := &nlp.Annotation{}
	for _, w := range strings.Fields(text) {
		tok := nlp.Token{Text: w, Tag: "NN", IOB: "O"}
		if label, ok := f.labels[w]; ok {
			tok.IOB = "B-" + label
			ann.Entities = append(ann.Entities, nlp.Entity{Text: w, Label: label})
		}
		ann.Tokens = append(ann.Tokens, tok)
	}
	for _, s := range strings.SplitAfter(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			ann.Sentences = append(ann.Sentences, s)
		}
	}
	return ann, nil
}

type lengthScorer struct{}

// Compound favours longer sentences so rankings are predictable
func (lengthScorer) Compound(text string) float64 {
	return float64(len(text)%7)/7 - 0.5
}

type fakeSummarizer struct {
	mu     sync.Mutex
	out    string
	errs   []error // returned in order, then out
	calls  int
	minLen int
	maxLen int
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, minLen, maxLen int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.minLen, f.maxLen = minLen, maxLen
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	if f.out != "" {
		return f.out, nil
	}
	return text, nil
}

type fakeTranslator struct {
	failOn string
	calls  []string
}

func (f *fakeTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	f.calls = append(f.calls, source+"->"+target)
	if target == f.failOn {
		return "", errors.New("quota exceeded")
	}
	return "[" + target + "] " + text, nil
}

type fakeIndex struct {
	mu   sync.Mutex
	docs map[string]search.Document
	err  error
}

func (f *fakeIndex) Index(_ context.Context, doc search.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.docs == nil {
		f.docs = make(map[string]search.Document)
	}
	f.docs[doc.MeetingID] = doc
	return nil
}

func (f *fakeIndex) search(q string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, d := range f.docs {
		if strings.Contains(d.TranscribedText, q) || strings.Contains(d.Summary, q) {
			ids = append(ids, id)
		}
	}
	return ids
}

func newMeeting() *entities.Meeting {
	return entities.NewMeeting("Weekly sync", "team meeting", "en-US", "meetings/abc.mp4")
}

func testDeps(store *fakeMeetings, audit *fakeAudit) Deps {
	return Deps{Meetings: store, Auditor: NewAuditor(audit, nil)}
}

func rcFor(m *entities.Meeting) RunContext {
	return RunContext{MeetingID: m.HexID(), RunID: "run-1", Attempt: 1}
}
