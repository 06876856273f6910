package server

import (
	"fmt"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/gyeh/denialstats/internal/config"
)

// New builds the echo server with middleware and all dashboard routes
// registered.
func New(cfg *config.Config, svc Service, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recovery(log))
	e.Use(RequestID())
	e.Use(Logger(log))
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))

	h := NewHandler(svc, cfg.ChartTopN)
	h.RegisterRoutes(e)

	return e
}
