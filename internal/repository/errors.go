// Package repository defines error types that are reused across multiple
// repositories. These values let handlers branch on the outcome of a query
// instead of catching every failure the same way.
package repository

import "errors"

// ErrVenueNotFound is returned when a venue id does not resolve.
var ErrVenueNotFound = errors.New("venue not found")

// ErrArtistNotFound is returned when an artist id does not resolve.
var ErrArtistNotFound = errors.New("artist not found")

// ErrConflict is returned when a delete cannot be performed because shows
// still reference the row and the restrict policy is active. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// PersistenceError wraps any other failure of the backing store, such as a
// constraint violation or a dropped connection. Op names the operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsNotFound reports whether err means the requested venue or artist does
// not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrVenueNotFound) || errors.Is(err, ErrArtistNotFound)
}

// wrap leaves sentinel outcomes untouched and tags everything else as a
// PersistenceError for op.
func wrap(op string, err error) error {
	if err == nil || IsNotFound(err) || errors.Is(err, ErrConflict) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
