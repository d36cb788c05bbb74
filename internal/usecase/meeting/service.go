package meeting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	"github.com/johnquangdev/talk-tracer/internal/domain/repositories"
	"github.com/johnquangdev/talk-tracer/internal/infrastructure/search"
)

// ObjectPrefix is where uploaded recordings live in the bucket
const ObjectPrefix = "meetings/"

// DefaultRunsLimit caps the run history returned by Runs
const DefaultRunsLimit = 20

// BlobUploader stores uploaded media
type BlobUploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	RemoveFile(ctx context.Context, objectName string) error
}

// Searcher queries the search sink
type Searcher interface {
	Search(ctx context.Context, query string, size int) ([]search.Hit, error)
}

// Scheduler queues a pipeline run. Enqueue returns false when the queue is full.
type Scheduler interface {
	Enqueue(meetingID string) bool
}

// LockProbe reports whether a run currently owns a meeting
type LockProbe interface {
	Held(ctx context.Context, key string) (bool, error)
}

// MediaLinker hands out download links for stored media
type MediaLinker interface {
	ObjectExists(ctx context.Context, objectName string) (bool, error)
	PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// RunHistory lists recorded pipeline runs
type RunHistory interface {
	ListByMeetingID(ctx context.Context, meetingID string, limit int) ([]entities.PipelineRun, error)
}

// Service handles the producer side of the pipeline: creating meetings,
// scheduling runs and reading results back
type Service struct {
	meetings  repositories.MeetingRepository
	blobs     BlobUploader
	scheduler Scheduler
	searcher  Searcher
	locks     LockProbe
	runs      RunHistory
	media     MediaLinker
	linkTTL   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures optional collaborators
type Option func(*Service)

// WithSearcher enables Search
func WithSearcher(s Searcher) Option {
	return func(svc *Service) { svc.searcher = s }
}

// WithLockProbe makes Schedule refuse meetings that are being processed
func WithLockProbe(p LockProbe) Option {
	return func(svc *Service) { svc.locks = p }
}

// WithRunHistory enables Runs
func WithRunHistory(h RunHistory) Option {
	return func(svc *Service) { svc.runs = h }
}

// WithMediaLinks enables MediaURL with links valid for ttl
func WithMediaLinks(m MediaLinker, ttl time.Duration) Option {
	return func(svc *Service) {
		svc.media = m
		svc.linkTTL = ttl
	}
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// NewService creates a new meeting service
func NewService(meetings repositories.MeetingRepository, blobs BlobUploader, scheduler Scheduler, opts ...Option) *Service {
	svc := &Service{
		meetings:  meetings,
		blobs:     blobs,
		scheduler: scheduler,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CreateInput represents input for creating a meeting
type CreateInput struct {
	Title       string
	Description string
	Language    string
	Filename    string
}

// SearchResult is a meeting matched by a search query
type SearchResult struct {
	Meeting *entities.Meeting
	Score   float64
}

// Create uploads the recording and inserts an unscheduled meeting
func (s *Service) Create(ctx context.Context, input CreateInput, file io.Reader, size int64, contentType string) (*entities.Meeting, error) {
	if err := entities.ValidateLanguage(input.Language); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, entities.ErrEmptyMedia
	}

	objectName := ObjectPrefix + uuid.New().String() + strings.ToLower(filepath.Ext(input.Filename))
	if err := s.blobs.UploadFile(ctx, objectName, file, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}

	m := entities.NewMeeting(input.Title, input.Description, input.Language, objectName)
	if err := s.meetings.Create(ctx, m); err != nil {
		if rmErr := s.blobs.RemoveFile(context.WithoutCancel(ctx), objectName); rmErr != nil {
			s.logger.Error("❌ Failed to remove orphaned media",
				zap.String("object", objectName),
				zap.Error(rmErr),
			)
		}
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	s.logger.Info("📼 Meeting created",
		zap.String("meeting_id", m.HexID()),
		zap.String("object", objectName),
		zap.Int64("size", size),
	)
	return m, nil
}

// Get retrieves a meeting by its hex id
func (s *Service) Get(ctx context.Context, id string) (*entities.Meeting, error) {
	m, err := s.meetings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidMeetingID) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	if m == nil {
		return nil, entities.ErrMeetingNotFound
	}
	return m, nil
}

// Schedule marks the meeting as planned and queues a pipeline run
func (s *Service) Schedule(ctx context.Context, id string) (*entities.Meeting, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.locks != nil {
		held, err := s.locks.Held(ctx, m.HexID())
		if err != nil {
			return nil, fmt.Errorf("failed to check run lock: %w", err)
		}
		if held {
			return nil, entities.ErrRunInProgress
		}
	}

	now := s.now().UTC()
	if _, err := s.meetings.UpdateFields(ctx, m.HexID(), map[string]interface{}{
		entities.FieldPlanned:     true,
		entities.FieldPlannedDate: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule meeting: %w", err)
	}
	m.Planned = true
	m.PlannedDate = &now

	if !s.scheduler.Enqueue(m.HexID()) {
		s.logger.Warn("⚠️ Pipeline queue full, meeting stays planned",
			zap.String("meeting_id", m.HexID()),
		)
		return nil, entities.ErrQueueFull
	}

	s.logger.Info("🗓️ Meeting scheduled", zap.String("meeting_id", m.HexID()))
	return m, nil
}

// Search queries the sink and resolves hits to meetings, keeping hit order.
// Hits whose meeting no longer exists are dropped.
func (s *Service) Search(ctx context.Context, query string, size int) ([]SearchResult, error) {
	if s.searcher == nil {
		return nil, fmt.Errorf("search is not configured")
	}
	hits, err := s.searcher.Search(ctx, query, size)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []SearchResult{}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.MeetingID
	}
	found, err := s.meetings.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve search hits: %w", err)
	}
	byID := make(map[string]*entities.Meeting, len(found))
	for _, m := range found {
		byID[m.HexID()] = m
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		if m, ok := byID[h.MeetingID]; ok {
			results = append(results, SearchResult{Meeting: m, Score: h.Score})
		}
	}
	return results, nil
}

// Runs returns the most recent pipeline runs of a meeting
func (s *Service) Runs(ctx context.Context, id string) ([]entities.PipelineRun, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.runs == nil {
		return []entities.PipelineRun{}, nil
	}
	runs, err := s.runs.ListByMeetingID(ctx, m.HexID(), DefaultRunsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// MediaURL returns a temporary download link for the meeting's recording
func (s *Service) MediaURL(ctx context.Context, id string) (string, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.media == nil {
		return "", fmt.Errorf("media links are not configured")
	}

	object := m.MediaObject()
	if object == "" {
		return "", entities.ErrMediaNotFound
	}
	exists, err := s.media.ObjectExists(ctx, object)
	if err != nil {
		return "", fmt.Errorf("failed to check media: %w", err)
	}
	if !exists {
		return "", entities.ErrMediaNotFound
	}
	return s.media.PresignedGetURL(ctx, object, s.linkTTL)
}
