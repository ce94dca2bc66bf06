// Package repository contains data access logic separated from HTTP handlers.
// This file holds the queries for the venues table.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to compare sentinel values
	"strings"      // strings lowers search terms
	"time"         // time marks the past/upcoming boundary

	"github.com/iliyamo/fyyur/internal/model"
)

const venueColumns = `id, name, city, state, address, phone, image_link, facebook_link,
	website, genres, seeking_talent, seeking_description`

// VenueRepo encapsulates all database queries related to venues.
type VenueRepo struct {
	db     *sql.DB      // db is the underlying database connection pool
	policy DeletePolicy // policy applies when a deleted venue still has shows
}

// NewVenueRepo constructs a VenueRepo with the provided DB handle and
// delete policy. An unknown policy falls back to RestrictDeletes.
func NewVenueRepo(db *sql.DB, policy DeletePolicy) *VenueRepo {
	if policy != CascadeDeletes {
		policy = RestrictDeletes
	}
	return &VenueRepo{db: db, policy: policy}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(row rowScanner) (*model.Venue, error) {
	var v model.Venue
	var genres string
	if err := row.Scan(&v.ID, &v.Name, &v.City, &v.State, &v.Address, &v.Phone, &v.ImageLink,
		&v.FacebookLink, &v.Website, &genres, &v.SeekingTalent, &v.SeekingDescription); err != nil {
		return nil, err
	}
	v.Genres = model.SplitGenres(genres)
	return &v, nil
}

// Create inserts a new venue. On success the venue's ID field is populated
// with the auto-generated value.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const q = `INSERT INTO venues (name, city, state, address, phone, image_link, facebook_link,
	           website, genres, seeking_talent, seeking_description)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, v.Name, v.City, v.State, v.Address, v.Phone, v.ImageLink,
		v.FacebookLink, v.Website, model.JoinGenres(v.Genres), v.SeekingTalent, v.SeekingDescription)
	if err != nil {
		return wrap("create venue", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrap("create venue", err)
	}
	v.ID = uint64(id)
	return nil
}

// GetByID fetches a venue by its ID. It returns ErrVenueNotFound if no row
// is found.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	q := "SELECT " + venueColumns + " FROM venues WHERE id = ?"
	v, err := scanVenue(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, wrap("get venue", err)
	}
	return v, nil
}

// ListAll returns every venue with its number of upcoming shows, ordered by
// state, city and id so that callers can group consecutive rows by area.
func (r *VenueRepo) ListAll(ctx context.Context, now time.Time) ([]model.VenueSummary, error) {
	const q = `SELECT v.id, v.name, v.city, v.state, COUNT(s.id)
	           FROM venues v
	           LEFT JOIN shows s ON s.venue_id = v.id AND s.start_time >= ?
	           GROUP BY v.id, v.name, v.city, v.state
	           ORDER BY v.state, v.city, v.id`
	out, err := r.querySummaries(ctx, q, now.UTC())
	return out, wrap("list venues", err)
}

// Search returns venues whose name contains term, ignoring case. The term
// is matched literally, and an empty term matches every venue.
func (r *VenueRepo) Search(ctx context.Context, term string, now time.Time) ([]model.VenueSummary, error) {
	const q = `SELECT v.id, v.name, v.city, v.state, COUNT(s.id)
	           FROM venues v
	           LEFT JOIN shows s ON s.venue_id = v.id AND s.start_time >= ?
	           WHERE LOWER(v.name) LIKE ?
	           GROUP BY v.id, v.name, v.city, v.state
	           ORDER BY v.id`
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	out, err := r.querySummaries(ctx, q, now.UTC(), pattern)
	return out, wrap("search venues", err)
}

func (r *VenueRepo) querySummaries(ctx context.Context, q string, args ...any) ([]model.VenueSummary, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.VenueSummary{}
	for rows.Next() {
		var s model.VenueSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.State, &s.NumUpcomingShows); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites every column of the venue with v's values. It returns
// ErrVenueNotFound when no row has v.ID.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	const q = `UPDATE venues
	           SET name = ?, city = ?, state = ?, address = ?, phone = ?, image_link = ?,
	               facebook_link = ?, website = ?, genres = ?, seeking_talent = ?, seeking_description = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, v.Name, v.City, v.State, v.Address, v.Phone, v.ImageLink,
		v.FacebookLink, v.Website, model.JoinGenres(v.Genres), v.SeekingTalent, v.SeekingDescription, v.ID)
	if err != nil {
		return wrap("update venue", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("update venue", err)
	}
	if n == 0 {
		return ErrVenueNotFound
	}
	return nil
}

// Delete removes a venue inside a transaction. If shows still reference it,
// the restrict policy aborts with ErrConflict while the cascade policy
// deletes those shows first. A missing venue yields ErrVenueNotFound.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM venues WHERE id = ? FOR UPDATE`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrVenueNotFound
			}
			return err
		}
		var shows int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows WHERE venue_id = ?`, id).Scan(&shows); err != nil {
			return err
		}
		if shows > 0 {
			if r.policy != CascadeDeletes {
				return ErrConflict
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM shows WHERE venue_id = ?`, id); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id)
		return err
	})
	return wrap("delete venue", err)
}
