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

// ListArtists handles GET /artists.
func (h *Handler) ListArtists(c echo.Context) error {
	artists, err := h.Artists.ListAll(c.Request().Context(), h.now())
	if err != nil {
		return err
	}
	if artists == nil {
		artists = []model.ArtistSummary{}
	}
	return h.render(c, http.StatusOK, "pages/artists", "Artists", ArtistsPage{Artists: artists})
}

// SearchArtists handles POST /artists/search.
func (h *Handler) SearchArtists(c echo.Context) error {
	term := c.FormValue("search_term")
	artists, err := h.Artists.Search(c.Request().Context(), term, h.now())
	if err != nil {
		return err
	}
	results := make([]SearchResult, 0, len(artists))
	for _, a := range artists {
		results = append(results, SearchResult{ID: a.ID, Name: a.Name, NumUpcomingShows: a.NumUpcomingShows})
	}
	return h.render(c, http.StatusOK, "pages/search", "Search artists", SearchPage{
		Kind:       "artists",
		SearchTerm: term,
		Count:      len(results),
		Results:    results,
	})
}

// ShowArtist handles GET /artists/:id.
func (h *Handler) ShowArtist(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.Artists.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "artist not found")
	}
	split, err := h.Shows.ForArtist(ctx, id, h.now())
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "pages/show_artist", a.Name, newArtistDetail(a, split))
}

// CreateArtistForm handles GET /artists/create.
func (h *Handler) CreateArtistForm(c echo.Context) error {
	return h.renderArtistForm(c, http.StatusOK, 0, ArtistForm{}, nil)
}

// CreateArtistSubmission handles POST /artists/create.
func (h *Handler) CreateArtistSubmission(c echo.Context) error {
	form, err := parseArtistForm(c)
	if err != nil {
		return err
	}
	if verr := form.Validate(); verr != nil {
		errs, err := fieldErrors(verr)
		if err != nil {
			return err
		}
		h.Flash.Add(c, flash.Danger, fmt.Sprintf("An error occurred. Artist %s could not be listed.", form.Name))
		return h.renderArtistForm(c, http.StatusBadRequest, 0, form, errs)
	}
	var a model.Artist
	form.Apply(&a)
	if err := h.Artists.Create(c.Request().Context(), &a); err != nil {
		slog.ErrorContext(c.Request().Context(), "Failed to create artist", "err", err, "name", form.Name)
		h.Flash.Add(c, flash.Danger, fmt.Sprintf("An error occurred. Artist %s could not be listed.", form.Name))
		return h.render(c, http.StatusOK, "pages/home", "", nil)
	}
	h.publish(c, queue.EntityArtist, queue.ActionCreated, a.ID, a.Name)
	h.Flash.Add(c, flash.Info, fmt.Sprintf("Artist %s was successfully listed!", a.Name))
	return h.render(c, http.StatusOK, "pages/home", "", nil)
}

// EditArtistForm handles GET /artists/:id/edit.
func (h *Handler) EditArtistForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.Artists.GetByID(c.Request().Context(), id)
	if err != nil {
		return notFoundOr(err, "artist not found")
	}
	return h.renderArtistForm(c, http.StatusOK, id, artistFormOf(a), nil)
}

// EditArtistSubmission handles POST /artists/:id/edit.
func (h *Handler) EditArtistSubmission(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.Artists.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "artist not found")
	}
	form, err := parseArtistForm(c)
	if err != nil {
		return err
	}
	if verr := form.Validate(); verr != nil {
		errs, err := fieldErrors(verr)
		if err != nil {
			return err
		}
		h.Flash.Add(c, flash.Danger, fmt.Sprintf("An error occurred. Artist %s could not be edited.", a.Name))
		return h.renderArtistForm(c, http.StatusBadRequest, id, form, errs)
	}
	form.Apply(a)
	if err := h.Artists.Update(ctx, a); err != nil {
		if repository.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "artist not found")
		}
		slog.ErrorContext(ctx, "Failed to update artist", "err", err, "id", id)
		h.Flash.Add(c, flash.Danger, fmt.Sprintf("An error occurred. Artist %s could not be edited.", form.Name))
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/artists/%d", id))
	}
	h.publish(c, queue.EntityArtist, queue.ActionUpdated, id, a.Name)
	h.Flash.Add(c, flash.Info, fmt.Sprintf("Artist %s was successfully edited!", a.Name))
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/artists/%d", id))
}

// DeleteArtist handles DELETE /artists/:id and its singular alias.
func (h *Handler) DeleteArtist(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	switch err := h.Artists.Delete(ctx, id); {
	case err == nil:
	case repository.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, "artist not found")
	case errors.Is(err, repository.ErrConflict):
		h.Flash.Add(c, flash.Danger, "Artist could not be deleted while shows are booked for them.")
		return echo.NewHTTPError(http.StatusConflict, "artist still has shows")
	default:
		slog.ErrorContext(ctx, "Failed to delete artist", "err", err, "id", id)
		h.Flash.Add(c, flash.Danger, "An error occurred. Artist could not be deleted.")
		return echo.NewHTTPError(http.StatusInternalServerError, "artist could not be deleted")
	}
	h.publish(c, queue.EntityArtist, queue.ActionDeleted, id, "")
	h.Flash.Add(c, flash.Info, "Artist was successfully deleted!")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) renderArtistForm(c echo.Context, code int, id uint64, form ArtistForm, errs map[string]string) error {
	page := ArtistFormPage{
		Heading:      "List a new artist",
		Action:       "/artists/create",
		Submit:       "Create Artist",
		Artist:       form,
		GenreOptions: genreOptions(form.Genres),
		Errors:       errs,
	}
	if id != 0 {
		page.Heading = "Edit artist " + form.Name
		page.Action = fmt.Sprintf("/artists/%d/edit", id)
		page.Submit = "Save Artist"
	}
	return h.render(c, code, "forms/artist", page.Heading, page)
}
