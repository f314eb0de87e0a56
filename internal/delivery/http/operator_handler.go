package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/FilipeAphrody/vocalgate/internal/usecase"
)

// OperatorHandler serves the operator login and the administrative views.
type OperatorHandler struct {
	operator *usecase.OperatorUsecase
	enroll   *usecase.EnrollUsecase
	audit    *usecase.AuditUsecase
}

// NewOperatorHandler registers the operator routes. guard protects the
// administrative views, normally JWTMiddleware followed by
// RoleMiddleware(usecase.RoleOperator).
func NewOperatorHandler(e *echo.Group, o *usecase.OperatorUsecase, en *usecase.EnrollUsecase, a *usecase.AuditUsecase, guard ...echo.MiddlewareFunc) {
	handler := &OperatorHandler{operator: o, enroll: en, audit: a}

	e.POST("/operator/login", handler.Login)
	e.GET("/users", handler.ListUsers, guard...)
	e.GET("/audit", handler.Audit, guard...)
}

// operatorLoginRequest defines the expected JSON payload for the operator login.
type operatorLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"omitempty,len=6,numeric"`
}

// Login authenticates the operator with password and, if configured, TOTP.
func (h *OperatorHandler) Login(c echo.Context) error {
	var req operatorLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return invalidInput(c, err)
	}

	resp, err := h.operator.Login(c.Request().Context(), req.Username, req.Password, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMFARequired):
			return c.JSON(http.StatusAccepted, echo.Map{
				"message":  "mfa_required",
				"username": req.Username,
			})
		case errors.Is(err, usecase.ErrInvalidCredentials), errors.Is(err, usecase.ErrInvalidMFACode):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
		default:
			return writeError(c, err)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ListUsers returns the enrolled usernames.
func (h *OperatorHandler) ListUsers(c echo.Context) error {
	users, err := h.enroll.ListUsers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// Audit returns the newest audit records; ?limit=n, default 5.
func (h *OperatorHandler) Audit(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a non-negative integer"})
		}
		limit = n
	}

	records, err := h.audit.Recent(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"records": records})
}
