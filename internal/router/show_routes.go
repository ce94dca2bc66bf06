package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/handler"
)

// RegisterShows registers the show listing and creation routes.
func RegisterShows(e *echo.Echo, h *handler.Handler, limit echo.MiddlewareFunc) {
	e.GET("/shows", h.ListShows)
	e.GET("/shows/create", h.CreateShowForm)
	e.POST("/shows/create", h.CreateShowSubmission, limit)
}
