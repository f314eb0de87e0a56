package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/internal/usecase"
	"github.com/FilipeAphrody/vocalgate/pkg/audio"
)

// writeError maps usecase and pipeline errors onto status codes. Collaborator
// failures are 502.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errMissingAudio),
		errors.Is(err, audio.ErrNotWAV),
		errors.Is(err, audio.ErrUnsupportedFormat),
		errors.Is(err, audio.ErrSampleRateMismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, errAudioTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": err.Error()})
	case errors.Is(err, usecase.ErrCollaborator):
		slog.Error("voice pipeline failure", "path", c.Path(), "err", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "voice pipeline unavailable"})
	case errors.Is(err, domain.ErrStoreCorrupt):
		slog.Error("profile store corrupt", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile store unavailable"})
	default:
		slog.Error("request failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

func invalidInput(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"reason": domain.ReasonInvalidInput,
		"error":  err.Error(),
	})
}
