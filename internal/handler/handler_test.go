package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur/internal/app"
	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/handler"
	"github.com/iliyamo/fyyur/internal/model"
	"github.com/iliyamo/fyyur/internal/view"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t      *testing.T
	e      *echo.Echo
	store  *memStore
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	events := &recordingPublisher{}
	h := handler.NewHandler(venueStore{store}, artistStore{store}, showStore{store}, events, flash.NewManager("test-secret", false))
	h.Now = func() time.Time { return testNow }
	e, err := app.NewEcho(h, nil, func(next echo.HandlerFunc) echo.HandlerFunc { return next })
	require.NoError(t, err)
	return &fixture{t: t, e: e, store: store, events: events}
}

func (f *fixture) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	f.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seedVenue(v model.Venue) uint64 {
	f.t.Helper()
	require.NoError(f.t, venueStore{f.store}.Create(context.Background(), &v))
	return v.ID
}

func (f *fixture) seedArtist(a model.Artist) uint64 {
	f.t.Helper()
	require.NoError(f.t, artistStore{f.store}.Create(context.Background(), &a))
	return a.ID
}

func (f *fixture) seedShow(venueID, artistID uint64, at time.Time) {
	f.t.Helper()
	require.NoError(f.t, showStore{f.store}.Create(context.Background(), &model.Show{VenueID: venueID, ArtistID: artistID, StartTime: at}))
}

func venueForm(name string) url.Values {
	return url.Values{
		"name":          {name},
		"city":          {"San Francisco"},
		"state":         {"CA"},
		"address":       {"1015 Folsom Street"},
		"phone":         {"123-123-1234"},
		"image_link":    {"https://images.example.com/hop.jpg"},
		"facebook_link": {"https://www.facebook.com/TheMusicalHop"},
		"genres":        {"Rock", "Jazz"},
	}
}

func artistForm(name string) url.Values {
	return url.Values{
		"name":   {name},
		"city":   {"San Francisco"},
		"state":  {"CA"},
		"genres": {"Rock n Roll"},
	}
}

func TestHome(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post a venue")
}

func TestCreateVenue_ListedExactlyOnce(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/venues/create", venueForm("The Musical Hop"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Venue The Musical Hop was successfully listed!")

	rec = f.do(http.MethodGet, "/venues", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "The Musical Hop"))
	assert.Contains(t, body, "San Francisco, CA")
	assert.Equal(t, []string{"venue.created"}, f.events.actions())
}

func TestListVenues_GroupsByArea(t *testing.T) {
	f := newFixture(t)
	hop := f.seedVenue(model.Venue{Name: "The Musical Hop", City: "San Francisco", State: "CA"})
	f.seedVenue(model.Venue{Name: "The Dueling Pianos Bar", City: "New York", State: "NY"})
	f.seedVenue(model.Venue{Name: "Park Square Live Music", City: "San Francisco", State: "CA"})
	artist := f.seedArtist(model.Artist{Name: "Guns N Petals"})
	f.seedShow(hop, artist, testNow.Add(48*time.Hour))

	body := f.do(http.MethodGet, "/venues", nil).Body.String()

	assert.Equal(t, 1, strings.Count(body, "San Francisco, CA"))
	assert.Equal(t, 1, strings.Count(body, "New York, NY"))
	assert.Less(t, strings.Index(body, "San Francisco, CA"), strings.Index(body, "New York, NY"))
	assert.Contains(t, body, `The Musical Hop</a> <small>1 upcoming</small>`)
}

func TestSearchVenues_CaseInsensitiveSubstring(t *testing.T) {
	f := newFixture(t)
	f.seedVenue(model.Venue{Name: "The Musical Hop", City: "San Francisco", State: "CA"})
	f.seedVenue(model.Venue{Name: "opera", City: "New York", State: "NY"})
	f.seedVenue(model.Venue{Name: "HOPSCOTCH HALL", City: "New York", State: "NY"})

	rec := f.do(http.MethodPost, "/venues/search", url.Values{"search_term": {"Hop"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, ": 2</h3>")
	assert.Contains(t, body, `href="/venues/1">The Musical Hop`)
	assert.Contains(t, body, "HOPSCOTCH HALL")
	assert.NotContains(t, body, ">opera<")

	rec = f.do(http.MethodPost, "/venues/search", url.Values{"search_term": {""}})
	assert.Contains(t, rec.Body.String(), ": 3</h3>")
}

func TestSearchArtists(t *testing.T) {
	f := newFixture(t)
	f.seedArtist(model.Artist{Name: "Guns N Petals"})
	f.seedArtist(model.Artist{Name: "Matt Quevedo"})
	f.seedArtist(model.Artist{Name: "The Wild Sax Band"})

	body := f.do(http.MethodPost, "/artists/search", url.Values{"search_term": {"A"}}).Body.String()
	assert.Contains(t, body, ": 3</h3>")

	body = f.do(http.MethodPost, "/artists/search", url.Values{"search_term": {"band"}}).Body.String()
	assert.Contains(t, body, ": 1</h3>")
	assert.Contains(t, body, `href="/artists/3">The Wild Sax Band`)
}

func TestVenueDetail_NotFound(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/venues/99", "/venues/abc", "/venues/99/edit", "/artists/7", "/artists/-1/edit"} {
		rec := f.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "<h1>404</h1>", path)
	}
}

func TestUnknownRoute_RendersNotFoundPage(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>404</h1>")
}

func TestDeleteArtist_ThenDetailIsNotFound(t *testing.T) {
	for _, path := range []string{"/artists/1", "/artist/1"} {
		t.Run(path, func(t *testing.T) {
			f := newFixture(t)
			f.seedArtist(model.Artist{Name: "Guns N Petals", City: "San Francisco", State: "CA"})

			rec := f.do(http.MethodDelete, path, nil)
			require.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

			rec = f.do(http.MethodGet, "/artists/1", nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, []string{"artist.deleted"}, f.events.actions())
		})
	}
}

func TestDeleteVenue_MethodOverride(t *testing.T) {
	f := newFixture(t)
	f.seedVenue(model.Venue{Name: "The Musical Hop"})

	rec := f.do(http.MethodPost, "/venues/1", url.Values{"_method": {"DELETE"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var ck *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == flash.CookieName {
			ck = c
		}
	}
	require.NotNil(t, ck)
	home := f.do(http.MethodGet, "/", nil, ck)
	assert.Contains(t, home.Body.String(), "Venue was successfully deleted!")
	assert.Empty(t, f.store.venues)
}

func TestDeleteMissing_IsNotFound(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/venues/5", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/artists/5", nil).Code)
	assert.Empty(t, f.events.actions())
}

func TestDeleteVenue_WithShows(t *testing.T) {
	t.Run("restrict", func(t *testing.T) {
		f := newFixture(t)
		v := f.seedVenue(model.Venue{Name: "The Musical Hop"})
		a := f.seedArtist(model.Artist{Name: "Guns N Petals"})
		f.seedShow(v, a, testNow.Add(time.Hour))

		rec := f.do(http.MethodDelete, "/venues/1", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "Venue could not be deleted while shows are booked there.")
		assert.Len(t, f.store.venues, 1)
		assert.Len(t, f.store.shows, 1)
	})
	t.Run("cascade", func(t *testing.T) {
		f := newFixture(t)
		f.store.cascade = true
		v := f.seedVenue(model.Venue{Name: "The Musical Hop"})
		a := f.seedArtist(model.Artist{Name: "Guns N Petals"})
		f.seedShow(v, a, testNow.Add(time.Hour))

		rec := f.do(http.MethodDelete, "/venues/1", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Empty(t, f.store.venues)
		assert.Empty(t, f.store.shows)
	})
}

func TestDelete_PersistenceFailureIsServerError(t *testing.T) {
	f := newFixture(t)
	f.seedVenue(model.Venue{Name: "The Musical Hop"})
	f.store.failErr = errors.New("connection reset")

	rec := f.do(http.MethodDelete, "/venues/1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Something went wrong")
	assert.Contains(t, body, "An error occurred. Venue could not be deleted.")
	assert.Len(t, f.store.venues, 1)
}

func TestEditVenue_UncheckedBoxClearsSeekingTalent(t *testing.T) {
	f := newFixture(t)
	f.seedVenue(model.Venue{
		Name: "The Musical Hop", City: "San Francisco", State: "CA", Address: "1015 Folsom Street",
		SeekingTalent: true, SeekingDescription: "We are on the lookout for a local artist.",
	})

	form := venueForm("The Musical Hop")
	rec := f.do(http.MethodPost, "/venues/1/edit", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/venues/1", rec.Header().Get(echo.HeaderLocation))

	v := f.store.venues[1]
	assert.False(t, v.SeekingTalent)
	assert.Empty(t, v.SeekingDescription)
	assert.Equal(t, "123-123-1234", v.Phone)
	assert.Equal(t, []string{"venue.updated"}, f.events.actions())
}

func TestEditVenue_CheckedBoxSetsFlag(t *testing.T) {
	f := newFixture(t)
	f.seedVenue(model.Venue{Name: "The Musical Hop", City: "San Francisco", State: "CA", Address: "1015 Folsom Street"})

	form := venueForm("The Musical Hop")
	form.Set("seeking_talent", "y")
	require.Equal(t, http.StatusSeeOther, f.do(http.MethodPost, "/venues/1/edit", form).Code)
	assert.True(t, f.store.venues[1].SeekingTalent)
}

func TestEditVenue_CheckboxPresentWithFalsyValue(t *testing.T) {
	f := newFixture(t)
	f.seedVenue(model.Venue{Name: "The Musical Hop", City: "San Francisco", State: "CA", Address: "1015 Folsom Street"})

	form := venueForm("The Musical Hop")
	form.Set("seeking_talent", "false")
	require.Equal(t, http.StatusSeeOther, f.do(http.MethodPost, "/venues/1/edit", form).Code)
	assert.True(t, f.store.venues[1].SeekingTalent)
}

func TestCreateVenue_ReadsWebsiteField(t *testing.T) {
	f := newFixture(t)
	form := venueForm("The Musical Hop")
	form.Set("website", "https://hop.example.com")

	rec := f.do(http.MethodPost, "/venues/create", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://hop.example.com", f.store.venues[1].Website)

	edit := f.do(http.MethodGet, "/venues/1/edit", nil).Body.String()
	assert.Contains(t, edit, `name="website" value="https://hop.example.com"`)
}

func TestEditArtist_FullReplacement(t *testing.T) {
	f := newFixture(t)
	f.seedArtist(model.Artist{
		Name: "Guns N Petals", City: "San Francisco", State: "CA", Phone: "326-123-5000",
		Genres: []string{"Rock n Roll"}, SeekingVenue: true,
	})

	form := url.Values{"name": {"Guns N Petals"}, "city": {"Oakland"}, "state": {"CA"}, "genres": {"Jazz"}}
	rec := f.do(http.MethodPost, "/artists/1/edit", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	a := f.store.artists[1]
	assert.Equal(t, "Oakland", a.City)
	assert.Empty(t, a.Phone)
	assert.Equal(t, []string{"Jazz"}, a.Genres)
	assert.False(t, a.SeekingVenue)

	detail := f.do(http.MethodGet, "/artists/1", nil, rec.Result().Cookies()...)
	assert.Contains(t, detail.Body.String(), "Artist Guns N Petals was successfully edited!")
}

func TestEditForm_PrePopulated(t *testing.T) {
	f := newFixture(t)
	f.seedVenue(model.Venue{Name: "The Musical Hop", City: "San Francisco", Genres: []string{"Jazz", "Swing"}, SeekingTalent: true})

	body := f.do(http.MethodGet, "/venues/1/edit", nil).Body.String()
	assert.Contains(t, body, `value="The Musical Hop"`)
	assert.Contains(t, body, `action="/venues/1/edit"`)
	assert.Contains(t, body, `<option value="Jazz" selected>`)
	assert.Contains(t, body, `<option value="Swing" selected>`)
	assert.Contains(t, body, `<option value="Rock n Roll">`)
	assert.Contains(t, body, `name="seeking_talent" checked`)
}

func TestEditVenue_InvalidFormKeepsRecord(t *testing.T) {
	f := newFixture(t)
	f.seedVenue(model.Venue{Name: "The Musical Hop", City: "San Francisco", State: "CA", Address: "1015 Folsom Street"})

	form := venueForm("")
	rec := f.do(http.MethodPost, "/venues/1/edit", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not be edited")
	assert.Equal(t, "The Musical Hop", f.store.venues[1].Name)
}

func TestCreateVenue_ValidationRejects(t *testing.T) {
	cases := map[string]func(url.Values){
		"missing name":     func(v url.Values) { v.Del("name") },
		"missing city":     func(v url.Values) { v.Set("city", "  ") },
		"bad image link":   func(v url.Values) { v.Set("image_link", "not a url") },
		"comma in a genre": func(v url.Values) { v["genres"] = []string{"Rock, Jazz"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			form := venueForm("The Musical Hop")
			mutate(form)

			rec := f.do(http.MethodPost, "/venues/create", form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "could not be listed")
			assert.Contains(t, rec.Body.String(), `class="errors"`)
			assert.Empty(t, f.store.venues)
			assert.Empty(t, f.events.actions())
		})
	}
}

func TestCreate_PersistenceFailureShowsNotice(t *testing.T) {
	f := newFixture(t)
	f.store.failErr = errors.New("duplicate entry")

	rec := f.do(http.MethodPost, "/artists/create", artistForm("Guns N Petals"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "An error occurred. Artist Guns N Petals could not be listed.")
	assert.Empty(t, f.store.artists)
}

func TestCreate_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	rec := f.do(http.MethodPost, "/artists/create", artistForm("Guns N Petals"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Artist Guns N Petals was successfully listed!")
	assert.Len(t, f.store.artists, 1)
}

func TestGenresRoundTrip(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/venues/create", venueForm("The Musical Hop")).Code)

	v, err := venueStore{f.store}.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Rock", "Jazz"}, v.Genres)

	body := f.do(http.MethodGet, "/venues/1", nil).Body.String()
	assert.Contains(t, body, "Rock, Jazz")
}

func TestShows_PastAndUpcomingSplit(t *testing.T) {
	f := newFixture(t)
	f.seedVenue(model.Venue{Name: "The Musical Hop"})
	f.seedArtist(model.Artist{Name: "Guns N Petals"})

	past := url.Values{"venue_id": {"1"}, "artist_id": {"2"}, "start_time": {"2019-05-21 21:30:00"}}
	future := url.Values{"venue_id": {"1"}, "artist_id": {"2"}, "start_time": {"2035-04-01T20:00"}}
	for _, form := range []url.Values{past, future} {
		rec := f.do(http.MethodPost, "/shows/create", form)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Show was successfully listed!")
	}

	pastAt := view.FormatDateTime(time.Date(2019, 5, 21, 21, 30, 0, 0, time.UTC), "full")
	futureAt := view.FormatDateTime(time.Date(2035, 4, 1, 20, 0, 0, 0, time.UTC), "full")
	for _, path := range []string{"/venues/1", "/artists/2"} {
		body := f.do(http.MethodGet, path, nil).Body.String()
		upcoming := strings.Index(body, "1 Upcoming Shows")
		pastHdr := strings.Index(body, "1 Past Shows")
		require.True(t, upcoming >= 0 && pastHdr > upcoming, path)
		assert.Contains(t, body[upcoming:pastHdr], futureAt, path)
		assert.NotContains(t, body[upcoming:pastHdr], pastAt, path)
		assert.Contains(t, body[pastHdr:], pastAt, path)
		assert.NotContains(t, body[pastHdr:], futureAt, path)
	}

	list := f.do(http.MethodGet, "/shows", nil).Body.String()
	assert.Less(t, strings.Index(list, pastAt), strings.Index(list, futureAt))
}

func TestShowAtNowIsUpcoming(t *testing.T) {
	f := newFixture(t)
	v := f.seedVenue(model.Venue{Name: "The Musical Hop"})
	a := f.seedArtist(model.Artist{Name: "Guns N Petals"})
	f.seedShow(v, a, testNow)

	body := f.do(http.MethodGet, "/venues/1", nil).Body.String()
	assert.Contains(t, body, "1 Upcoming Shows")
	assert.Contains(t, body, "0 Past Shows")
}

func TestCreateShow_Rejects(t *testing.T) {
	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"unknown venue", url.Values{"venue_id": {"9"}, "artist_id": {"2"}, "start_time": {"2035-04-01 20:00:00"}}, "no venue with this id"},
		{"unknown artist", url.Values{"venue_id": {"1"}, "artist_id": {"9"}, "start_time": {"2035-04-01 20:00:00"}}, "no artist with this id"},
		{"bad time", url.Values{"venue_id": {"1"}, "artist_id": {"2"}, "start_time": {"next friday"}}, "start_time: use YYYY-MM-DD HH:MM:SS"},
		{"non numeric id", url.Values{"venue_id": {"one"}, "artist_id": {"2"}, "start_time": {"2035-04-01 20:00:00"}}, "venue_id: must contain digits only"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedVenue(model.Venue{Name: "The Musical Hop"})
			f.seedArtist(model.Artist{Name: "Guns N Petals"})

			rec := f.do(http.MethodPost, "/shows/create", tc.form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
			assert.Empty(t, f.store.shows)
		})
	}
}

func TestFormsRender(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/venues/create", "/artists/create", "/shows/create", "/artists", "/shows"} {
		rec := f.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
