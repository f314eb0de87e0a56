package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/FilipeAphrody/vocalgate/pkg/security"
)

// JWTMiddleware intercepts the request to validate the JWT token in the Authorization header.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization header"})
			}

			// Expected format: "Bearer <token>"
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format"})
			}

			claims, err := security.ValidateToken(token, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set("username", claims.Username)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

// RoleMiddleware admits only tokens carrying requiredRole. Must run after JWTMiddleware.
func RoleMiddleware(requiredRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || role != requiredRole {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied: insufficient permissions"})
			}
			return next(c)
		}
	}
}
