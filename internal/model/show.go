package model

import "time"

// Show binds one artist to one venue at a start time.  Both references
// must resolve to existing rows.  This struct corresponds to a row in
// the `shows` table.
type Show struct {
	ID        uint64    // shows.id
	VenueID   uint64    // shows.venue_id
	ArtistID  uint64    // shows.artist_id
	StartTime time.Time // shows.start_time (UTC)
}

// ShowListing is a show joined with the names and images of both sides.
// Listings and detail pages read shows in this shape.
type ShowListing struct {
	ID              uint64
	VenueID         uint64
	VenueName       string
	VenueImageLink  string
	ArtistID        uint64
	ArtistName      string
	ArtistImageLink string
	StartTime       time.Time
}

// ShowSplit partitions the shows of one venue or artist around a point in
// time: Past holds shows that started strictly before it, Upcoming the rest.
type ShowSplit struct {
	Past     []ShowListing
	Upcoming []ShowListing
}
