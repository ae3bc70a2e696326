package db

import (
	"context"
	"errors"
)

// ErrorInvalidRequest is a user facing error returned by repositories.
var ErrorInvalidRequest = errors.New("invalid request")

// ErrorNotFound is a user facing error returned when a named student or
// mentor does not exist.
var ErrorNotFound = errors.New("not found")

// IsUserError reports whether err should be shown to the caller as is.
func IsUserError(err error) bool {
	return errors.Is(err, ErrorInvalidRequest) || errors.Is(err, ErrorNotFound)
}

// Transactor runs a group of repository calls as one unit of work.
type Transactor interface {
	// WithTransaction calls fn with a context bound to a transaction. All
	// repository calls made with that context are committed if fn returns
	// nil and discarded otherwise.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
