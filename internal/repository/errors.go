// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors. For example,
// ErrVenueNotFound wraps ErrNotFound so a handler can answer 404 for
// any missing entity, while ErrPersistence marks every fault raised by
// the database itself.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrVenueNotFound and ErrArtistNotFound name the missing entity.
var (
	ErrVenueNotFound  = fmt.Errorf("venue %w", ErrNotFound)
	ErrArtistNotFound = fmt.Errorf("artist %w", ErrNotFound)
)

// ErrConflict is returned when an insert would duplicate an existing
// row, such as scheduling the same artist at the same venue and start
// time twice. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrPersistence wraps any error raised by the database driver.  The
// original driver error stays in the chain.
var ErrPersistence = errors.New("persistence fault")

// fault tags a driver error with ErrPersistence and the failing operation.
func fault(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
