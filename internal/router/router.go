package router // package router defines how HTTP routes are registered

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/handler"
	"github.com/iliyamo/fyyur/internal/middleware"
)

// RegisterRoutes registers the operational endpoints and the home page.
// The health check pings db when it is non-nil.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", middleware.MetricsHandler())
	e.GET("/", h.Home)
}

// RegisterAll wires every route. limit guards the write and search routes,
// which are the only ones that reach the database with user input.
func RegisterAll(e *echo.Echo, h *handler.Handler, db handler.Pinger, limit echo.MiddlewareFunc) {
	RegisterRoutes(e, h, db)
	RegisterVenues(e, h, limit)
	RegisterArtists(e, h, limit)
	RegisterShows(e, h, limit)
}
