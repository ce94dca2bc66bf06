// Package repository contains data access logic for shows. A show only
// references a venue and an artist, so every read joins both tables.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/fyyur/internal/model"
)

const listingSelect = `SELECT s.id, s.venue_id, v.name, v.image_link, s.artist_id, a.name, a.image_link, s.start_time
	FROM shows s
	JOIN venues v  ON v.id = s.venue_id
	JOIN artists a ON a.id = s.artist_id`

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// Create inserts a new show and assigns the generated ID back to s. Both
// references are checked inside the same transaction: a missing venue
// yields ErrVenueNotFound and a missing artist ErrArtistNotFound.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM venues WHERE id = ? LOCK IN SHARE MODE`, s.VenueID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrVenueNotFound
			}
			return err
		}
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM artists WHERE id = ? LOCK IN SHARE MODE`, s.ArtistID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrArtistNotFound
			}
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO shows (venue_id, artist_id, start_time) VALUES (?, ?, ?)`,
			s.VenueID, s.ArtistID, s.StartTime.UTC())
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		s.ID = uint64(id)
		return nil
	})
	return wrap("create show", err)
}

// ListAll returns every show with both sides joined, ordered by start time.
func (r *ShowRepo) ListAll(ctx context.Context) ([]model.ShowListing, error) {
	out, err := r.queryListings(ctx, listingSelect+` ORDER BY s.start_time, s.id`)
	return out, wrap("list shows", err)
}

// ForVenue splits the shows of a venue around now.
func (r *ShowRepo) ForVenue(ctx context.Context, venueID uint64, now time.Time) (model.ShowSplit, error) {
	split, err := r.split(ctx, "s.venue_id", venueID, now)
	return split, wrap("venue shows", err)
}

// ForArtist splits the shows of an artist around now.
func (r *ShowRepo) ForArtist(ctx context.Context, artistID uint64, now time.Time) (model.ShowSplit, error) {
	split, err := r.split(ctx, "s.artist_id", artistID, now)
	return split, wrap("artist shows", err)
}

// split runs one query per side of the boundary: past shows started strictly
// before now, upcoming shows start at or after it.
func (r *ShowRepo) split(ctx context.Context, column string, id uint64, now time.Time) (model.ShowSplit, error) {
	var out model.ShowSplit
	var err error
	now = now.UTC()
	out.Past, err = r.queryListings(ctx,
		listingSelect+` WHERE `+column+` = ? AND s.start_time < ? ORDER BY s.start_time DESC, s.id`, id, now)
	if err != nil {
		return model.ShowSplit{}, err
	}
	out.Upcoming, err = r.queryListings(ctx,
		listingSelect+` WHERE `+column+` = ? AND s.start_time >= ? ORDER BY s.start_time, s.id`, id, now)
	if err != nil {
		return model.ShowSplit{}, err
	}
	return out, nil
}

func (r *ShowRepo) queryListings(ctx context.Context, q string, args ...any) ([]model.ShowListing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ShowListing{}
	for rows.Next() {
		var l model.ShowListing
		if err := rows.Scan(&l.ID, &l.VenueID, &l.VenueName, &l.VenueImageLink,
			&l.ArtistID, &l.ArtistName, &l.ArtistImageLink, &l.StartTime); err != nil {
			return nil, err
		}
		l.StartTime = l.StartTime.UTC()
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
