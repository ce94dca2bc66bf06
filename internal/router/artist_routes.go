package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/handler"
)

// RegisterArtists registers the artist routes. Delete answers on both
// /artists/:id and the singular /artist/:id that older pages call.
func RegisterArtists(e *echo.Echo, h *handler.Handler, limit echo.MiddlewareFunc) {
	e.GET("/artists", h.ListArtists)
	e.POST("/artists/search", h.SearchArtists, limit)
	e.GET("/artists/create", h.CreateArtistForm)
	e.POST("/artists/create", h.CreateArtistSubmission, limit)
	e.GET("/artists/:id", h.ShowArtist)
	e.GET("/artists/:id/edit", h.EditArtistForm)
	e.POST("/artists/:id/edit", h.EditArtistSubmission, limit)
	e.DELETE("/artists/:id", h.DeleteArtist, limit)
	e.DELETE("/artist/:id", h.DeleteArtist, limit)
}
