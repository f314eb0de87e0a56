package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/internal/usecase"
)

// SessionHandler refreshes and revokes sessions issued by the gate.
type SessionHandler struct {
	usecase *usecase.SessionUsecase
}

// NewSessionHandler registers the session routes.
func NewSessionHandler(e *echo.Group, u *usecase.SessionUsecase) {
	handler := &SessionHandler{usecase: u}

	e.POST("/session/refresh", handler.Refresh)
	e.POST("/session/logout", handler.Logout)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh exchanges a refresh token for a new session.
func (h *SessionHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return invalidInput(c, err)
	}

	resp, err := h.usecase.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes a refresh token.
func (h *SessionHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return invalidInput(c, err)
	}

	if err := h.usecase.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return sessionError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func sessionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrRefreshTokenInvalid):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, usecase.ErrRefreshDisabled):
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": err.Error()})
	default:
		return writeError(c, err)
	}
}
