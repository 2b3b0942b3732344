package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNoTicker           = errors.New("no ticker data")
	ErrMissingCredentials = errors.New("missing api credentials")
)

// VenueError is a non-success status returned by an exchange API. It fails
// the call that produced it and is never retried by the client.
type VenueError struct {
	Venue   string
	Code    int
	Message string
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("%s request failed: code %d: %s", e.Venue, e.Code, e.Message)
}
