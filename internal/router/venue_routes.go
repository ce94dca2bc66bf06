package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/handler"
)

// RegisterVenues registers the venue listing, search, detail and CRUD routes.
func RegisterVenues(e *echo.Echo, h *handler.Handler, limit echo.MiddlewareFunc) {
	e.GET("/venues", h.ListVenues)
	e.POST("/venues/search", h.SearchVenues, limit)
	e.GET("/venues/create", h.CreateVenueForm)
	e.POST("/venues/create", h.CreateVenueSubmission, limit)
	e.GET("/venues/:id", h.ShowVenue)
	e.GET("/venues/:id/edit", h.EditVenueForm)
	e.POST("/venues/:id/edit", h.EditVenueSubmission, limit)
	e.DELETE("/venues/:id", h.DeleteVenue, limit)
}
