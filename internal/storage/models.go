package storage

import (
	"errors"
	"time"
)

var (
	// ErrConflict is returned by Insert when the code is already taken.
	ErrConflict = errors.New("data conflict")
	// ErrNotFound is returned by Lookup when no link has the requested code.
	ErrNotFound = errors.New("not found")
)

// Link is a persisted mapping from a short code to the original URL.
type Link struct {
	Code      string    `json:"code"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
