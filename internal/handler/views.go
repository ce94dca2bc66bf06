package handler

import (
	"github.com/iliyamo/fyyur/internal/model"
)

// VenueArea is one (city, state) group of the venue listing.
type VenueArea struct {
	City   string
	State  string
	Venues []model.VenueSummary
}

// VenuesPage feeds pages/venues.
type VenuesPage struct {
	Areas []VenueArea
}

// ArtistsPage feeds pages/artists.
type ArtistsPage struct {
	Artists []model.ArtistSummary
}

// ShowsPage feeds pages/shows.
type ShowsPage struct {
	Shows []model.ShowListing
}

// SearchResult is one hit of a name search.
type SearchResult struct {
	ID               uint64
	Name             string
	NumUpcomingShows int
}

// SearchPage feeds pages/search. Kind is the path segment results link to.
type SearchPage struct {
	Kind       string
	SearchTerm string
	Count      int
	Results    []SearchResult
}

// VenueDetail is a venue with its shows split at the read time.
type VenueDetail struct {
	model.Venue
	PastShows          []model.ShowListing
	PastShowsCount     int
	UpcomingShows      []model.ShowListing
	UpcomingShowsCount int
}

// ArtistDetail is an artist with its shows split at the read time.
type ArtistDetail struct {
	model.Artist
	PastShows          []model.ShowListing
	PastShowsCount     int
	UpcomingShows      []model.ShowListing
	UpcomingShowsCount int
}

// VenueFormPage feeds forms/venue for both create and edit.
type VenueFormPage struct {
	Heading      string
	Action       string
	Submit       string
	Venue        VenueForm
	GenreOptions []GenreOption
	Errors       map[string]string
}

// ArtistFormPage feeds forms/artist for both create and edit.
type ArtistFormPage struct {
	Heading      string
	Action       string
	Submit       string
	Artist       ArtistForm
	GenreOptions []GenreOption
	Errors       map[string]string
}

// ShowFormPage feeds forms/show.
type ShowFormPage struct {
	Show   ShowForm
	Errors map[string]string
}

// groupByArea buckets venues by (state, city) keeping first-seen order.
func groupByArea(venues []model.VenueSummary) []VenueArea {
	type key struct{ state, city string }
	idx := make(map[key]int)
	areas := make([]VenueArea, 0)
	for _, v := range venues {
		k := key{v.State, v.City}
		i, ok := idx[k]
		if !ok {
			i = len(areas)
			idx[k] = i
			areas = append(areas, VenueArea{City: v.City, State: v.State})
		}
		areas[i].Venues = append(areas[i].Venues, v)
	}
	return areas
}

func nonNil(shows []model.ShowListing) []model.ShowListing {
	if shows == nil {
		return []model.ShowListing{}
	}
	return shows
}

func newVenueDetail(v *model.Venue, split model.ShowSplit) VenueDetail {
	return VenueDetail{
		Venue:              *v,
		PastShows:          nonNil(split.Past),
		PastShowsCount:     len(split.Past),
		UpcomingShows:      nonNil(split.Upcoming),
		UpcomingShowsCount: len(split.Upcoming),
	}
}

func newArtistDetail(a *model.Artist, split model.ShowSplit) ArtistDetail {
	return ArtistDetail{
		Artist:             *a,
		PastShows:          nonNil(split.Past),
		PastShowsCount:     len(split.Past),
		UpcomingShows:      nonNil(split.Upcoming),
		UpcomingShowsCount: len(split.Upcoming),
	}
}
