package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/joseph-ayodele/pdf-renamer/internal/common"
)

// NewEcho builds the HTTP server with middleware and routes registered.
func NewEcho(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(common.WithRequestID(req.Context(), id)))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/api/health" || strings.HasSuffix(path, "/progress")
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= 500 {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("request_id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Int64("latency_ms", v.Latency.Milliseconds()),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			h.logger.LogAttrs(context.Background(), level, "http.request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.BodyLimit("1M"))

	RegisterRoutes(e, h)
	return e
}

// RegisterRoutes mounts the API under /api.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	api := e.Group("/api")

	api.GET("/health", h.HandleHealth)

	api.GET("/files", h.HandleListFiles)
	api.GET("/files/msgpack", h.HandleListFilesMsgpack)
	api.POST("/files", h.HandleRegisterFiles)
	api.POST("/files/:id/rename", h.HandleApplyRename)

	api.POST("/process", h.HandleStartProcessing)
	api.POST("/process/cancel", h.HandleCancelProcessing)
	api.GET("/progress", h.HandleProgress)

	api.GET("/export", h.HandleExport)
}
