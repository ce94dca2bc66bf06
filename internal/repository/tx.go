package repository

import (
	"context"
	"database/sql"
)

// DeletePolicy decides what happens to shows when their venue or artist is
// deleted.
type DeletePolicy string

const (
	// RestrictDeletes refuses the delete with ErrConflict while shows exist.
	RestrictDeletes DeletePolicy = "restrict"
	// CascadeDeletes removes the dependent shows in the same transaction.
	CascadeDeletes DeletePolicy = "cascade"
)

// withTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise; the connection is released on
// every path.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// escapeLike makes s match literally inside a LIKE pattern whose escape
// character is the MySQL default backslash.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
