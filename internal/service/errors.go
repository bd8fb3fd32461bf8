package service

import (
	"errors"
	"fmt"
)

// ErrValidation marks input that refers to something that does not exist.
// No write is attempted when it is returned.
var ErrValidation = errors.New("validation failed")

// ErrInvalidArtistID and ErrInvalidVenueID name the reference that failed
// when scheduling a show.
var (
	ErrInvalidArtistID = fmt.Errorf("invalid artist id: %w", ErrValidation)
	ErrInvalidVenueID  = fmt.Errorf("invalid venue id: %w", ErrValidation)
)

// ErrInvalidStartTime is returned when a show start time cannot be parsed.
// It is reported to users as a generic failure.
var ErrInvalidStartTime = errors.New("invalid start time")
