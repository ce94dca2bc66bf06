package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/fyyur/internal/model"
)

const artistColumns = `id, name, city, state, phone, image_link, facebook_link,
	website, genres, seeking_venue, seeking_description`

// ArtistRepo manages persistence for artists.
type ArtistRepo struct {
	db     *sql.DB
	policy DeletePolicy
}

// NewArtistRepo constructs an ArtistRepo with the given DB handle and
// delete policy.
func NewArtistRepo(db *sql.DB, policy DeletePolicy) *ArtistRepo {
	if policy != CascadeDeletes {
		policy = RestrictDeletes
	}
	return &ArtistRepo{db: db, policy: policy}
}

func scanArtist(row rowScanner) (*model.Artist, error) {
	var a model.Artist
	var genres string
	if err := row.Scan(&a.ID, &a.Name, &a.City, &a.State, &a.Phone, &a.ImageLink,
		&a.FacebookLink, &a.Website, &genres, &a.SeekingVenue, &a.SeekingDescription); err != nil {
		return nil, err
	}
	a.Genres = model.SplitGenres(genres)
	return &a, nil
}

// Create inserts a new artist and assigns the generated ID back to a.
func (r *ArtistRepo) Create(ctx context.Context, a *model.Artist) error {
	const q = `INSERT INTO artists (name, city, state, phone, image_link, facebook_link,
	           website, genres, seeking_venue, seeking_description)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.Name, a.City, a.State, a.Phone, a.ImageLink,
		a.FacebookLink, a.Website, model.JoinGenres(a.Genres), a.SeekingVenue, a.SeekingDescription)
	if err != nil {
		return wrap("create artist", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrap("create artist", err)
	}
	a.ID = uint64(id)
	return nil
}

// GetByID retrieves an artist by its ID. It returns ErrArtistNotFound if
// there is no matching row.
func (r *ArtistRepo) GetByID(ctx context.Context, id uint64) (*model.Artist, error) {
	q := "SELECT " + artistColumns + " FROM artists WHERE id = ?"
	a, err := scanArtist(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArtistNotFound
		}
		return nil, wrap("get artist", err)
	}
	return a, nil
}

// ListAll returns every artist ordered by id.
func (r *ArtistRepo) ListAll(ctx context.Context, now time.Time) ([]model.ArtistSummary, error) {
	const q = `SELECT a.id, a.name, COUNT(s.id)
	           FROM artists a
	           LEFT JOIN shows s ON s.artist_id = a.id AND s.start_time >= ?
	           GROUP BY a.id, a.name
	           ORDER BY a.id`
	out, err := r.querySummaries(ctx, q, now.UTC())
	return out, wrap("list artists", err)
}

// Search returns artists whose name contains term, ignoring case.
func (r *ArtistRepo) Search(ctx context.Context, term string, now time.Time) ([]model.ArtistSummary, error) {
	const q = `SELECT a.id, a.name, COUNT(s.id)
	           FROM artists a
	           LEFT JOIN shows s ON s.artist_id = a.id AND s.start_time >= ?
	           WHERE LOWER(a.name) LIKE ?
	           GROUP BY a.id, a.name
	           ORDER BY a.id`
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	out, err := r.querySummaries(ctx, q, now.UTC(), pattern)
	return out, wrap("search artists", err)
}

func (r *ArtistRepo) querySummaries(ctx context.Context, q string, args ...any) ([]model.ArtistSummary, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ArtistSummary{}
	for rows.Next() {
		var s model.ArtistSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.NumUpcomingShows); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites every column of the artist with a's values.
func (r *ArtistRepo) Update(ctx context.Context, a *model.Artist) error {
	const q = `UPDATE artists
	           SET name = ?, city = ?, state = ?, phone = ?, image_link = ?, facebook_link = ?,
	               website = ?, genres = ?, seeking_venue = ?, seeking_description = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, a.Name, a.City, a.State, a.Phone, a.ImageLink,
		a.FacebookLink, a.Website, model.JoinGenres(a.Genres), a.SeekingVenue, a.SeekingDescription, a.ID)
	if err != nil {
		return wrap("update artist", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return wrap("update artist", err)
	} else if n == 0 {
		return ErrArtistNotFound
	}
	return nil
}

// Delete removes an artist, honouring the repository's delete policy for
// shows that still reference it.
func (r *ArtistRepo) Delete(ctx context.Context, id uint64) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM artists WHERE id = ? FOR UPDATE`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrArtistNotFound
			}
			return err
		}
		var shows int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows WHERE artist_id = ?`, id).Scan(&shows); err != nil {
			return err
		}
		if shows > 0 {
			if r.policy != CascadeDeletes {
				return ErrConflict
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM shows WHERE artist_id = ?`, id); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM artists WHERE id = ?`, id)
		return err
	})
	return wrap("delete artist", err)
}
