package secrets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"
)

var referencePattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// HasReferences reports whether s contains a ${secret:name} reference.
func HasReferences(s string) bool {
	return referencePattern.MatchString(s)
}

// ReferenceError reports a ${secret:name} reference that could not be
// resolved.
type ReferenceError struct {
	Name string
	Err  error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("failed to resolve secret %q: %v", e.Name, e.Err)
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}

// Resolver looks secrets up in an ordered list of sources; the first
// source that holds a name wins.
type Resolver struct {
	sources []Source
	cache   *cache
	logger  *slog.Logger
}

// NewResolver creates a resolver over sources, reusing resolved values for
// ttl. A nil logger uses slog.Default.
func NewResolver(ttl time.Duration, logger *slog.Logger, sources ...Source) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		sources: sources,
		cache:   newCache(ttl),
		logger:  logger,
	}
}

// Lookup returns the value of name from the first source holding it.
func (r *Resolver) Lookup(ctx context.Context, name string) (string, error) {
	if value, ok := r.cache.get(name); ok {
		return value, nil
	}

	for _, src := range r.sources {
		value, err := src.Lookup(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%s source: %w", src.Name(), err)
		}

		r.logger.Debug("secret resolved", "name", redactName(name), "source", src.Name())
		r.cache.set(name, value)
		return value, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Resolve replaces every ${secret:name} reference in input. Unresolved
// references are left in place and reported as *ReferenceError values
// joined into the returned error.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	var errs []error
	out := referencePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := referencePattern.FindStringSubmatch(match)[1]
		value, err := r.Lookup(ctx, name)
		if err != nil {
			errs = append(errs, &ReferenceError{Name: name, Err: err})
			return match
		}
		return value
	})
	return out, errors.Join(errs...)
}

// Invalidate drops cached values in the resolver and in every source that
// keeps its own.
func (r *Resolver) Invalidate() {
	r.cache.clear()
	for _, src := range r.sources {
		if inv, ok := src.(Invalidator); ok {
			inv.Invalidate()
		}
	}
}

// Close releases sources that hold resources, such as file watchers.
func (r *Resolver) Close() error {
	var errs []error
	for _, src := range r.sources {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// redactName keeps the first and last two characters of a secret name.
func redactName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
