package model

// Venue represents a bookable physical location that can host shows.
// This struct corresponds to a row in the `venues` table.
//
// Fields:
//
//	ID                 – primary key identifier.
//	Name               – display name, the only searchable column.
//	City, State        – area the venue is listed under.
//	Address, Phone     – contact details.
//	ImageLink          – picture shown on the detail page.
//	FacebookLink       – optional social link.
//	Website            – optional website.
//	Genres             – unordered tag set, stored comma-joined.
//	SeekingTalent      – whether the venue is open to new bookings.
//	SeekingDescription – free text shown when SeekingTalent is set.
type Venue struct {
	ID                 uint64   // venues.id
	Name               string   // venues.name
	City               string   // venues.city
	State              string   // venues.state
	Address            string   // venues.address
	Phone              string   // venues.phone
	ImageLink          string   // venues.image_link
	FacebookLink       string   // venues.facebook_link
	Website            string   // venues.website
	Genres             []string // venues.genres (comma-joined)
	SeekingTalent      bool     // venues.seeking_talent
	SeekingDescription string   // venues.seeking_description
}

// VenueSummary is the short form of a venue used by listings and search
// results.  NumUpcomingShows counts shows starting at or after the read time.
type VenueSummary struct {
	ID               uint64
	Name             string
	City             string
	State            string
	NumUpcomingShows int
}
