package model

// Artist represents a performer that can be booked into shows.  This
// struct corresponds to a row in the `artists` table.
type Artist struct {
	ID                 uint64   // artists.id
	Name               string   // artists.name
	City               string   // artists.city
	State              string   // artists.state
	Phone              string   // artists.phone
	ImageLink          string   // artists.image_link
	FacebookLink       string   // artists.facebook_link
	Website            string   // artists.website
	Genres             []string // artists.genres (comma-joined)
	SeekingVenue       bool     // artists.seeking_venue
	SeekingDescription string   // artists.seeking_description
}

// ArtistSummary is the short form of an artist used by listings and search.
type ArtistSummary struct {
	ID               uint64
	Name             string
	NumUpcomingShows int
}
