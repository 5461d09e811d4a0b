// Package errors holds the error taxonomy shared by the store, the habit
// registry, the scoring engine and the command surface.
package errors

import (
	stderrors "errors"
	"fmt"
	"os"
)

// Store layer.
var (
	ErrStoreUnavailable   = stderrors.New("store unavailable")
	ErrStoreBusy          = stderrors.New("store busy")
	ErrStoreCorrupt       = stderrors.New("store corrupt")
	ErrConstraintViolated = stderrors.New("constraint violated")
)

// Logical preconditions and input validation.
var (
	ErrUserMissing = stderrors.New("user missing")
	ErrBadRequest  = stderrors.New("bad request")
)

// Kind names the taxonomy entry err belongs to, or "Internal" when it
// matches none of them.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrBadRequest):
		return "BadRequest"
	case stderrors.Is(err, ErrUserMissing):
		return "UserMissing"
	case stderrors.Is(err, ErrStoreBusy):
		return "StoreBusy"
	case stderrors.Is(err, ErrConstraintViolated):
		return "ConstraintViolated"
	case stderrors.Is(err, ErrStoreCorrupt):
		return "StoreCorrupt"
	case stderrors.Is(err, ErrStoreUnavailable):
		return "StoreUnavailable"
	default:
		return "Internal"
	}
}

// IsFatal reports whether err means the database cannot be trusted and the
// process should stop.
func IsFatal(err error) bool {
	return stderrors.Is(err, ErrStoreCorrupt)
}

// BadRequestf returns an ErrBadRequest carrying a formatted message.
func BadRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// Format formats an error message with a consistent "Error: " prefix.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Exit prints err to stderr and exits with status 1.
func Exit(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}
