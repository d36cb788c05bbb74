package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Media handles GET /v1/meetings/:id/media
// It redirects to a presigned download link, or returns the link as JSON
// when called with ?redirect=false.
func (h *Meeting) Media(c echo.Context) error {
	id := c.Param("id")
	link, err := h.service.MediaURL(c.Request().Context(), id)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("failed to issue media link",
				zap.String("meeting_id", id),
				zap.Error(err))
		}
		return h.handleError(c, meetingError(id, err))
	}

	if c.QueryParam("redirect") == "false" {
		return HandleSuccess(h.logger, c, map[string]interface{}{
			"meeting_id": id,
			"url":        link,
		})
	}
	return c.Redirect(http.StatusFound, link)
}
