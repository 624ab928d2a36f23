package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shihaotian/ai-legal-assistant/internal/ai"
	"github.com/shihaotian/ai-legal-assistant/internal/cache"
	"github.com/shihaotian/ai-legal-assistant/internal/repository"
	"github.com/shihaotian/ai-legal-assistant/internal/service"
)

// writeServiceError maps service and repository errors onto HTTP responses.
// Ownership failures deliberately come back as 404, indistinguishable from a
// case that never existed. An unusable completion is a 502 that carries the
// raw upstream text so the client can surface or log it.
func writeServiceError(c echo.Context, err error) error {
	var upstream *service.UpstreamDataError

	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, cache.ErrSessionExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "session expired"})
	case errors.As(err, &upstream):
		return c.JSON(http.StatusBadGateway, echo.Map{
			"error":        upstream.Msg,
			"raw_response": upstream.Raw,
		})
	case errors.Is(err, ai.ErrUpstream):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "ai service unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
