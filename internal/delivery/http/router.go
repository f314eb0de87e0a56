package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/FilipeAphrody/vocalgate/internal/app"
	"github.com/FilipeAphrody/vocalgate/internal/usecase"
)

// Version is reported by /health.
var Version = "dev"

// NewRouter builds the echo instance with every route of the gate. metrics
// may be nil, in which case /metrics is not served.
func NewRouter(a *app.App, metrics http.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()

	// Global Middlewares
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				attrs = append(attrs, "err", v.Error)
			}
			slog.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORS())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("10M"))

	// Routes
	v1 := e.Group("/v1")
	NewGateHandler(v1, a.Enroll, a.Gate, a.Recorder, a.Sessions)
	NewSessionHandler(v1, a.Sessions)
	NewOperatorHandler(v1, a.Operator, a.Enroll, a.Audit,
		JWTMiddleware(a.Config.JWTSecret),
		RoleMiddleware(usecase.RoleOperator),
	)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "healthy",
			"version": Version,
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	return e
}
