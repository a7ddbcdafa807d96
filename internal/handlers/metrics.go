package handlers

import (
	"expvar"

	"github.com/labstack/echo/v4"
)

// MetricsHandler exposes the expvar counter page.
type MetricsHandler struct{}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

func (h *MetricsHandler) Register(e *echo.Echo) {
	e.GET("/debug/vars", echo.WrapHandler(expvar.Handler()))
}
