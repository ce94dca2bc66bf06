// Package handler holds the HTTP handlers of the booking directory. Each
// handler performs one read or write through a store, shapes a view value
// and renders a page or redirects.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/model"
	"github.com/iliyamo/fyyur/internal/queue"
	"github.com/iliyamo/fyyur/internal/view"
)

// VenueStore is the query layer for venues.
type VenueStore interface {
	Create(ctx context.Context, v *model.Venue) error
	GetByID(ctx context.Context, id uint64) (*model.Venue, error)
	ListAll(ctx context.Context, now time.Time) ([]model.VenueSummary, error)
	Search(ctx context.Context, term string, now time.Time) ([]model.VenueSummary, error)
	Update(ctx context.Context, v *model.Venue) error
	Delete(ctx context.Context, id uint64) error
}

// ArtistStore is the query layer for artists.
type ArtistStore interface {
	Create(ctx context.Context, a *model.Artist) error
	GetByID(ctx context.Context, id uint64) (*model.Artist, error)
	ListAll(ctx context.Context, now time.Time) ([]model.ArtistSummary, error)
	Search(ctx context.Context, term string, now time.Time) ([]model.ArtistSummary, error)
	Update(ctx context.Context, a *model.Artist) error
	Delete(ctx context.Context, id uint64) error
}

// ShowStore is the query layer for shows.
type ShowStore interface {
	Create(ctx context.Context, s *model.Show) error
	ListAll(ctx context.Context) ([]model.ShowListing, error)
	ForVenue(ctx context.Context, venueID uint64, now time.Time) (model.ShowSplit, error)
	ForArtist(ctx context.Context, artistID uint64, now time.Time) (model.ShowSplit, error)
}

// EventPublisher announces listing changes. Failures never fail a request.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ListingEvent) error
}

// Handler bundles the stores and collaborators every route needs.
type Handler struct {
	Venues  VenueStore
	Artists ArtistStore
	Shows   ShowStore
	Events  EventPublisher
	Flash   *flash.Manager
	Now     func() time.Time // read time for the past/upcoming boundary
}

// NewHandler constructs a Handler and panics if a store or the flash
// manager is nil. A nil publisher disables listing events.
func NewHandler(venues VenueStore, artists ArtistStore, shows ShowStore, events EventPublisher, fl *flash.Manager) *Handler {
	if venues == nil || artists == nil || shows == nil || fl == nil {
		panic("nil dependency passed to NewHandler")
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &Handler{
		Venues:  venues,
		Artists: artists,
		Shows:   shows,
		Events:  events,
		Flash:   fl,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.ListingEvent) error { return nil }

// Home renders the landing page.
func (h *Handler) Home(c echo.Context) error {
	return h.render(c, http.StatusOK, "pages/home", "", nil)
}

// render wraps data in a view.Page together with the pending flash messages.
func (h *Handler) render(c echo.Context, code int, name, title string, data any) error {
	return c.Render(code, name, view.Page{Title: title, Flashes: h.Flash.Pop(c), Data: data})
}

func (h *Handler) now() time.Time {
	return h.Now().UTC()
}

// publish sends a listing event and only logs when the broker is unavailable.
func (h *Handler) publish(c echo.Context, entity, action string, id uint64, name string) {
	ev := queue.NewListingEvent(entity, action, id, name, h.now())
	if err := h.Events.Publish(c.Request().Context(), ev); err != nil {
		slog.WarnContext(c.Request().Context(), "Failed to publish listing event",
			"err", err, "entity", entity, "action", action, "id", id)
	}
}

// parseID reads the numeric :id path parameter. Anything that is not an
// unsigned integer cannot name a record, so it is reported as 404.
func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, "invalid id")
	}
	return id, nil
}
