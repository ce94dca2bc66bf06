package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/model"
	"github.com/iliyamo/fyyur/internal/queue"
	"github.com/iliyamo/fyyur/internal/repository"
)

// ListVenues handles GET /venues and groups every venue by (city, state).
func (h *Handler) ListVenues(c echo.Context) error {
	venues, err := h.Venues.ListAll(c.Request().Context(), h.now())
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "pages/venues", "Venues", VenuesPage{Areas: groupByArea(venues)})
}

// SearchVenues handles POST /venues/search with a case-insensitive
// substring match on the venue name.
func (h *Handler) SearchVenues(c echo.Context) error {
	term := c.FormValue("search_term")
	venues, err := h.Venues.Search(c.Request().Context(), term, h.now())
	if err != nil {
		return err
	}
	results := make([]SearchResult, 0, len(venues))
	for _, v := range venues {
		results = append(results, SearchResult{ID: v.ID, Name: v.Name, NumUpcomingShows: v.NumUpcomingShows})
	}
	return h.render(c, http.StatusOK, "pages/search", "Search venues", SearchPage{
		Kind:       "venues",
		SearchTerm: term,
		Count:      len(results),
		Results:    results,
	})
}

// ShowVenue handles GET /venues/:id.
func (h *Handler) ShowVenue(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "venue not found")
	}
	split, err := h.Shows.ForVenue(ctx, id, h.now())
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "pages/show_venue", v.Name, newVenueDetail(v, split))
}

// CreateVenueForm handles GET /venues/create.
func (h *Handler) CreateVenueForm(c echo.Context) error {
	return h.renderVenueForm(c, http.StatusOK, 0, VenueForm{}, nil)
}

// CreateVenueSubmission handles POST /venues/create. A rejected form is
// shown again with its errors and nothing is written.
func (h *Handler) CreateVenueSubmission(c echo.Context) error {
	form, err := parseVenueForm(c)
	if err != nil {
		return err
	}
	if verr := form.Validate(); verr != nil {
		errs, err := fieldErrors(verr)
		if err != nil {
			return err
		}
		h.Flash.Add(c, flash.Danger, fmt.Sprintf("An error occurred. Venue %s could not be listed.", form.Name))
		return h.renderVenueForm(c, http.StatusBadRequest, 0, form, errs)
	}
	var v model.Venue
	form.Apply(&v)
	if err := h.Venues.Create(c.Request().Context(), &v); err != nil {
		slog.ErrorContext(c.Request().Context(), "Failed to create venue", "err", err, "name", form.Name)
		h.Flash.Add(c, flash.Danger, fmt.Sprintf("An error occurred. Venue %s could not be listed.", form.Name))
		return h.render(c, http.StatusOK, "pages/home", "", nil)
	}
	h.publish(c, queue.EntityVenue, queue.ActionCreated, v.ID, v.Name)
	h.Flash.Add(c, flash.Info, fmt.Sprintf("Venue %s was successfully listed!", v.Name))
	return h.render(c, http.StatusOK, "pages/home", "", nil)
}

// EditVenueForm handles GET /venues/:id/edit with the form pre-populated.
func (h *Handler) EditVenueForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	v, err := h.Venues.GetByID(c.Request().Context(), id)
	if err != nil {
		return notFoundOr(err, "venue not found")
	}
	return h.renderVenueForm(c, http.StatusOK, id, venueFormOf(v), nil)
}

// EditVenueSubmission handles POST /venues/:id/edit. Every editable field
// is replaced by the submitted value.
func (h *Handler) EditVenueSubmission(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "venue not found")
	}
	form, err := parseVenueForm(c)
	if err != nil {
		return err
	}
	if verr := form.Validate(); verr != nil {
		errs, err := fieldErrors(verr)
		if err != nil {
			return err
		}
		h.Flash.Add(c, flash.Danger, fmt.Sprintf("An error occurred. Venue %s could not be edited.", v.Name))
		return h.renderVenueForm(c, http.StatusBadRequest, id, form, errs)
	}
	form.Apply(v)
	if err := h.Venues.Update(ctx, v); err != nil {
		if repository.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "venue not found")
		}
		slog.ErrorContext(ctx, "Failed to update venue", "err", err, "id", id)
		h.Flash.Add(c, flash.Danger, fmt.Sprintf("An error occurred. Venue %s could not be edited.", form.Name))
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/venues/%d", id))
	}
	h.publish(c, queue.EntityVenue, queue.ActionUpdated, id, v.Name)
	h.Flash.Add(c, flash.Info, fmt.Sprintf("Venue %s was successfully edited!", v.Name))
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/venues/%d", id))
}

// DeleteVenue handles DELETE /venues/:id. Whether shows block the delete
// or are removed with the venue depends on the store's delete policy.
func (h *Handler) DeleteVenue(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	switch err := h.Venues.Delete(ctx, id); {
	case err == nil:
	case repository.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, "venue not found")
	case errors.Is(err, repository.ErrConflict):
		h.Flash.Add(c, flash.Danger, "Venue could not be deleted while shows are booked there.")
		return echo.NewHTTPError(http.StatusConflict, "venue still has shows")
	default:
		slog.ErrorContext(ctx, "Failed to delete venue", "err", err, "id", id)
		h.Flash.Add(c, flash.Danger, "An error occurred. Venue could not be deleted.")
		return echo.NewHTTPError(http.StatusInternalServerError, "venue could not be deleted")
	}
	h.publish(c, queue.EntityVenue, queue.ActionDeleted, id, "")
	h.Flash.Add(c, flash.Info, "Venue was successfully deleted!")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) renderVenueForm(c echo.Context, code int, id uint64, form VenueForm, errs map[string]string) error {
	page := VenueFormPage{
		Heading:      "List a new venue",
		Action:       "/venues/create",
		Submit:       "Create Venue",
		Venue:        form,
		GenreOptions: genreOptions(form.Genres),
		Errors:       errs,
	}
	if id != 0 {
		page.Heading = "Edit venue " + form.Name
		page.Action = fmt.Sprintf("/venues/%d/edit", id)
		page.Submit = "Save Venue"
	}
	return h.render(c, code, "forms/venue", page.Heading, page)
}

// notFoundOr maps the repository not-found sentinels to a 404 and passes
// every other error through.
func notFoundOr(err error, msg string) error {
	if repository.IsNotFound(err) {
		return echo.NewHTTPError(http.StatusNotFound, msg)
	}
	return err
}
