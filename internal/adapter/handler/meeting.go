package handler

import (
	"context"
	stdErrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-tracer/errors"
	"github.com/johnquangdev/talk-tracer/internal/adapter/dto/meeting"
	"github.com/johnquangdev/talk-tracer/internal/adapter/presenter"
	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
	meetingUsecase "github.com/johnquangdev/talk-tracer/internal/usecase/meeting"
)

const defaultSearchSize = 10

// MeetingService is the use case the handler drives
type MeetingService interface {
	Create(ctx context.Context, input meetingUsecase.CreateInput, file io.Reader, size int64, contentType string) (*entities.Meeting, error)
	Get(ctx context.Context, id string) (*entities.Meeting, error)
	Schedule(ctx context.Context, id string) (*entities.Meeting, error)
	Search(ctx context.Context, query string, size int) ([]meetingUsecase.SearchResult, error)
	Runs(ctx context.Context, id string) ([]entities.PipelineRun, error)
	MediaURL(ctx context.Context, id string) (string, error)
}

// Meeting handles meeting HTTP requests
type Meeting struct {
	service MeetingService
	logger  *zap.Logger
}

// NewMeeting creates a new meeting handler
func NewMeeting(service MeetingService, logger *zap.Logger) *Meeting {
	return &Meeting{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /v1/meetings (multipart upload)
func (h *Meeting) Create(c echo.Context) error {
	var req meeting.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, errors.ErrInvalidArgument("invalid form data"))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleError(c, errors.ErrInvalidArgument(err.Error()))
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return h.handleError(c, errors.ErrInvalidArgument("file is required"))
	}
	file, err := fh.Open()
	if err != nil {
		return h.handleError(c, errors.ErrInternal(err))
	}
	defer file.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	m, err := h.service.Create(c.Request().Context(), meetingUsecase.CreateInput{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Language:    req.Language,
		Filename:    fh.Filename,
	}, file, fh.Size, contentType)
	if err != nil {
		if stdErrors.Is(err, entities.ErrEmptyMedia) {
			return h.handleError(c, errors.ErrEmptyUpload(fh.Filename))
		}
		return h.handleError(c, err)
	}

	return HandleSuccessStatus(h.logger, c, http.StatusCreated, presenter.ToMeetingResponse(m))
}

// Get handles GET /v1/meetings/:id
func (h *Meeting) Get(c echo.Context) error {
	id := c.Param("id")
	m, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return h.handleError(c, meetingError(id, err))
	}
	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(m))
}

// Schedule handles POST /v1/meetings/:id/runs
func (h *Meeting) Schedule(c echo.Context) error {
	id := c.Param("id")
	m, err := h.service.Schedule(c.Request().Context(), id)
	if err != nil {
		return h.handleError(c, meetingError(id, err))
	}
	return HandleSuccessStatus(h.logger, c, http.StatusAccepted, presenter.ToScheduleResponse(m))
}

// Runs handles GET /v1/meetings/:id/runs
func (h *Meeting) Runs(c echo.Context) error {
	id := c.Param("id")
	runs, err := h.service.Runs(c.Request().Context(), id)
	if err != nil {
		return h.handleError(c, meetingError(id, err))
	}
	return HandleSuccess(h.logger, c, presenter.ToRunResponses(runs))
}

// Search handles GET /v1/search?q=
func (h *Meeting) Search(c echo.Context) error {
	var req meeting.SearchRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, errors.ErrInvalidArgument("invalid query parameters"))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleError(c, errors.ErrInvalidArgument(err.Error()))
	}
	if req.Size == 0 {
		req.Size = defaultSearchSize
	}

	results, err := h.service.Search(c.Request().Context(), req.Query, req.Size)
	if err != nil {
		return h.handleError(c, errors.ErrSearchFailed(err))
	}
	return HandleSuccess(h.logger, c, presenter.ToSearchResponse(req.Query, results))
}

func (h *Meeting) handleError(c echo.Context, err error) error {
	return HandleError(h.logger, c, err)
}

// meetingError attaches the meeting id to domain errors about it
func meetingError(id string, err error) error {
	switch {
	case stdErrors.Is(err, entities.ErrMeetingNotFound):
		return errors.ErrMeetingNotFound(id)
	case stdErrors.Is(err, entities.ErrRunInProgress):
		return errors.ErrRunInProgress(id)
	case stdErrors.Is(err, entities.ErrQueueFull):
		return errors.ErrQueueFull(id)
	case stdErrors.Is(err, entities.ErrMediaNotFound):
		return errors.ErrNotFound("media").WithDetail("meeting_id", id)
	}
	return err
}
