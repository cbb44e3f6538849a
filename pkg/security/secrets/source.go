package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Source that does not hold the named secret.
var ErrNotFound = errors.New("secret not found")

// Source looks up secret values by name.
type Source interface {
	// Lookup returns the value of name. A missing secret is reported with an
	// error wrapping ErrNotFound so the next source can be tried.
	Lookup(ctx context.Context, name string) (string, error)

	// Name identifies the source in logs ("env", "file").
	Name() string
}

// Invalidator is a Source holding cached values that can be dropped.
type Invalidator interface {
	Source
	Invalidate()
}
