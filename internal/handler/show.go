package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/model"
	"github.com/iliyamo/fyyur/internal/queue"
	"github.com/iliyamo/fyyur/internal/repository"
)

// ListShows handles GET /shows.
func (h *Handler) ListShows(c echo.Context) error {
	shows, err := h.Shows.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	if shows == nil {
		shows = []model.ShowListing{}
	}
	return h.render(c, http.StatusOK, "pages/shows", "Shows", ShowsPage{Shows: shows})
}

// CreateShowForm handles GET /shows/create.
func (h *Handler) CreateShowForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "forms/show", "List a new show", ShowFormPage{})
}

// CreateShowSubmission handles POST /shows/create. Unknown venue or
// artist ids are reported on the form like any other invalid field.
func (h *Handler) CreateShowSubmission(c echo.Context) error {
	form, err := parseShowForm(c)
	if err != nil {
		return err
	}
	reject := func(errs map[string]string) error {
		h.Flash.Add(c, flash.Danger, "An error occurred. Show could not be listed.")
		return h.render(c, http.StatusBadRequest, "forms/show", "List a new show", ShowFormPage{Show: form, Errors: errs})
	}
	if verr := form.Validate(); verr != nil {
		errs, err := fieldErrors(verr)
		if err != nil {
			return err
		}
		return reject(errs)
	}
	s, err := form.Show()
	if err != nil {
		return reject(map[string]string{"start_time": err.Error()})
	}
	ctx := c.Request().Context()
	switch err := h.Shows.Create(ctx, &s); {
	case err == nil:
	case errors.Is(err, repository.ErrVenueNotFound):
		return reject(map[string]string{"venue_id": "no venue with this id"})
	case errors.Is(err, repository.ErrArtistNotFound):
		return reject(map[string]string{"artist_id": "no artist with this id"})
	default:
		slog.ErrorContext(ctx, "Failed to create show", "err", err)
		h.Flash.Add(c, flash.Danger, "An error occurred. Show could not be listed.")
		return h.render(c, http.StatusOK, "pages/home", "", nil)
	}
	h.publish(c, queue.EntityShow, queue.ActionCreated, s.ID, "")
	h.Flash.Add(c, flash.Info, "Show was successfully listed!")
	return h.render(c, http.StatusOK, "pages/home", "", nil)
}
