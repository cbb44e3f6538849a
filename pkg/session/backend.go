package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Backend.Load for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Record is a persisted session: its ID, encoded values and expiry.
type Record struct {
	ID        string
	Data      []byte
	ExpiresAt time.Time
}

// Expired reports whether the record is expired at now.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Backend persists session records. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Load returns the record for id, or ErrNotFound if it is missing or
	// expired.
	Load(ctx context.Context, id string) (*Record, error)

	// Save creates or replaces a record.
	Save(ctx context.Context, rec *Record) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// Prune removes every record expired at now and returns how many.
	Prune(ctx context.Context, now time.Time) (int64, error)

	// Close releases backend resources.
	Close() error
}
