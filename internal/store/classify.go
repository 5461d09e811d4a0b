package store

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	apperr "github.com/lazypower/habits/internal/errors"
)

// Classify tags a driver error with the matching store taxonomy entry.
// Errors that are not SQLite errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	// Extended result codes carry the primary code in the low byte.
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %w", apperr.ErrStoreBusy, err)
	case sqlite3.SQLITE_CONSTRAINT:
		return fmt.Errorf("%w: %w", apperr.ErrConstraintViolated, err)
	case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
		return fmt.Errorf("%w: %w", apperr.ErrStoreCorrupt, err)
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_PERM, sqlite3.SQLITE_READONLY:
		return fmt.Errorf("%w: %w", apperr.ErrStoreUnavailable, err)
	}
	return err
}

// unavailable classifies err, falling back to ErrStoreUnavailable when the
// driver error has no more specific meaning. Used while opening.
func unavailable(err error) error {
	classified := Classify(err)
	if apperr.Kind(classified) != "Internal" {
		return classified
	}
	return fmt.Errorf("%w: %w", apperr.ErrStoreUnavailable, err)
}
