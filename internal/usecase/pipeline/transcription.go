package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	"github.com/johnquangdev/talk-tracer/internal/usecase/nlp"
	pkgai "github.com/johnquangdev/talk-tracer/pkg/ai"
)

// BlobStore fetches stored media objects
type BlobStore interface {
	DownloadToFile(ctx context.Context, objectName, path string) error
}

// Media probes and cuts local audio/video files
type Media interface {
	// TempFile reserves a scoped local path for an object
	TempFile(objectName string) (string, func(), error)
	Duration(ctx context.Context, path string) (time.Duration, error)
	// Cut extracts [start, start+length) as a standalone audio file
	Cut(ctx context.Context, path string, start, length time.Duration) (string, func(), error)
}

// Recognizer turns a short audio file into text.
// pkgai.ErrUnintelligible means no speech could be understood.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath, language string) (string, error)
}

// TranscriptionStage downloads a meeting's media, transcribes it window by
// window and stores the re-punctuated text
type TranscriptionStage struct {
	Base
	blobs            BlobStore
	media            Media
	recognizer       Recognizer
	annotator        nlp.Annotator
	segment          time.Duration
	recognizeTimeout time.Duration
}

// NewTranscriptionStage creates the transcription stage
func NewTranscriptionStage(d Deps, blobs BlobStore, media Media, recognizer Recognizer, annotator nlp.Annotator, segment, recognizeTimeout time.Duration) *TranscriptionStage {
	return &TranscriptionStage{
		Base:             newBase(StageTranscription, d),
		blobs:            blobs,
		media:            media,
		recognizer:       recognizer,
		annotator:        annotator,
		segment:          segment,
		recognizeTimeout: recognizeTimeout,
	}
}

// Run executes the stage for rc.MeetingID
func (s *TranscriptionStage) Run(ctx context.Context, rc RunContext) error {
	return s.Execute(ctx, rc, []string{entities.FieldLanguage, entities.FieldFileID}, func(ctx context.Context, m *entities.Meeting) (map[string]interface{}, error) {
		text, err := s.transcribe(ctx, rc, m.MediaObject(), m.Language)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{entities.FieldTranscribedText: text}, nil
	})
}

func (s *TranscriptionStage) transcribe(ctx context.Context, rc RunContext, object, language string) (string, error) {
	path, cleanup, err := s.media.TempFile(object)
	if err != nil {
		return "", fmt.Errorf("%s: failed to create temp file: %w", s.name, err)
	}
	defer cleanup()

	if err := s.blobs.DownloadToFile(ctx, object, path); err != nil {
		return "", Upstream(s.name, "blob_store", err)
	}

	total, err := s.media.Duration(ctx, path)
	if err != nil {
		return "", Upstream(s.name, "ffprobe", err)
	}

	windows := Windows(total, s.segment)
	s.logger.Info("🎧 Transcribing media",
		zap.String("meeting_id", rc.MeetingID),
		zap.String("object", object),
		zap.Duration("duration", total),
		zap.Int("segments", len(windows)))

	results := make([]SegmentResult, 0, len(windows))
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return "", Upstream(s.name, "recognizer", err)
		}
		res, err := s.transcribeWindow(ctx, rc, path, language, i, w)
		if err != nil {
			return "", err
		}
		s.metrics.ObserveSegment(res.Outcome)
		results = append(results, res)
	}
	// a cancellation during the last window surfaces here, not as a skip
	if err := ctx.Err(); err != nil {
		return "", Upstream(s.name, "recognizer", err)
	}

	joined := JoinSegments(results)
	if joined == "" {
		s.Warn(ctx, rc, "No segment produced text, storing empty transcript")
		return "", nil
	}

	ann, err := s.annotator.Annotate(joined)
	if err != nil {
		return "", Upstream(s.name, "annotator", err)
	}
	return nlp.CorrectPunctuation(ann.Tokens), nil
}

// transcribeWindow returns a tagged outcome for recognizer failures and an
// error only for conditions that end the whole stage
func (s *TranscriptionStage) transcribeWindow(ctx context.Context, rc RunContext, path, language string, i int, w Window) (SegmentResult, error) {
	if w.Length() <= 0 {
		return Skipped(i, w, "empty window"), nil
	}

	segPath, cleanup, err := s.media.Cut(ctx, path, w.Start, w.Length())
	if err != nil {
		return SegmentResult{}, Upstream(s.name, "ffmpeg", err)
	}
	defer cleanup()

	recCtx := ctx
	if s.recognizeTimeout > 0 {
		var cancel context.CancelFunc
		recCtx, cancel = context.WithTimeout(ctx, s.recognizeTimeout)
		defer cancel()
	}

	text, err := s.recognizer.Recognize(recCtx, segPath, language)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, pkgai.ErrUnintelligible) {
			reason = "speech recognition could not understand audio"
		}
		s.Error(ctx, rc, fmt.Sprintf("Segment %d [%s, %s) skipped: %s", i, w.Start, w.End, reason))
		return Skipped(i, w, reason), nil
	}

	s.logger.Debug("Segment transcribed",
		zap.String("meeting_id", rc.MeetingID),
		zap.Int("segment", i),
		zap.Int("chars", len(text)))
	return Transcribed(i, w, text), nil
}
