// Package queue defines the listing events exchanged over the message
// broker and the consumer that records them.
package queue

import "time"

// ListingQueueName is the durable queue listing events are routed to.
const ListingQueueName = "listing.changed"

// Entities a listing event can describe.
const (
	EntityVenue  = "venue"
	EntityArtist = "artist"
	EntityShow   = "show"
)

// Actions a listing event can describe.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ListingEvent is published after a venue, artist or show is written.
// It carries enough for downstream consumers to log or index the change
// without querying the primary database.
type ListingEvent struct {
	Entity     string `json:"entity"`
	Action     string `json:"action"`
	ID         uint64 `json:"id"`
	Name       string `json:"name,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// NewListingEvent stamps an event with at rendered as RFC3339 UTC.
func NewListingEvent(entity, action string, id uint64, name string, at time.Time) ListingEvent {
	return ListingEvent{
		Entity:     entity,
		Action:     action,
		ID:         id,
		Name:       name,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
}
