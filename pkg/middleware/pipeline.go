package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
)

// Middleware is a request-processing stage.
type Middleware func(http.Handler) http.Handler

// Entry is one stage of the pipeline. A non-empty Prefix mounts the
// middleware so that it only runs for paths under the prefix.
type Entry struct {
	Name       string
	Prefix     string
	Middleware Middleware
}

var (
	// ErrAlreadyInstalled is returned when Install is called a second time.
	ErrAlreadyInstalled = errors.New("middleware pipeline already installed")

	// ErrNilMiddleware is returned for an entry without a middleware function.
	ErrNilMiddleware = errors.New("middleware entry has no middleware function")
)

// Snapshot is an immutable view of the pipeline at one point in time.
type Snapshot struct {
	entries []Entry
	handler http.Handler
}

// Entries returns a copy of the snapshot's entries in execution order.
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// ServeHTTP runs the request through the snapshot's entries and then the
// pipeline's terminal handler.
func (s *Snapshot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Pipeline is an ordered, append-only list of middleware entries.
//
// Every mutation publishes a new Snapshot atomically. A request that loaded
// a snapshot keeps running against it even if entries are appended while it
// is in flight.
type Pipeline struct {
	terminal http.Handler
	logger   *slog.Logger
	onChange func(size int)

	mu        sync.Mutex
	installed bool
	current   atomic.Pointer[Snapshot]
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used to report pipeline mutations.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithSizeObserver registers fn to be called with the entry count after
// every mutation.
func WithSizeObserver(fn func(size int)) Option {
	return func(p *Pipeline) {
		p.onChange = fn
	}
}

// NewPipeline creates an empty pipeline that ends in terminal.
func NewPipeline(terminal http.Handler, opts ...Option) *Pipeline {
	if terminal == nil {
		terminal = http.NotFoundHandler()
	}
	p := &Pipeline{
		terminal: terminal,
		logger:   slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.current.Store(&Snapshot{handler: terminal})
	return p
}

// Install adds the boot-time entries in the given order. It may only be
// called once.
func (p *Pipeline) Install(entries ...Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.installed {
		return ErrAlreadyInstalled
	}
	if err := validateEntries(entries); err != nil {
		return err
	}

	p.installed = true
	p.publish(entries)
	return nil
}

// Append adds entries after everything already in the pipeline. Requests
// that start after Append returns run the new entries last.
func (p *Pipeline) Append(entries ...Entry) error {
	if err := validateEntries(entries); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.publish(entries)
	return nil
}

// publish builds and stores the next snapshot. Callers hold p.mu.
func (p *Pipeline) publish(added []Entry) {
	prev := p.current.Load()

	entries := make([]Entry, 0, len(prev.entries)+len(added))
	entries = append(entries, prev.entries...)
	entries = append(entries, added...)

	handler := p.terminal
	for i := len(entries) - 1; i >= 0; i-- {
		handler = mount(entries[i], handler)
	}

	p.current.Store(&Snapshot{entries: entries, handler: handler})

	for _, e := range added {
		p.logger.Debug("middleware added", "name", e.Name, "prefix", e.Prefix, "position", len(entries))
	}
	if p.onChange != nil {
		p.onChange(len(entries))
	}
}

// Snapshot returns the current immutable view of the pipeline.
func (p *Pipeline) Snapshot() *Snapshot {
	return p.current.Load()
}

// ServeHTTP dispatches the request against the current snapshot.
func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.current.Load().ServeHTTP(w, r)
}

// Installed reports whether Install has completed.
func (p *Pipeline) Installed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.installed
}

// Len returns the number of entries in the current snapshot.
func (p *Pipeline) Len() int {
	return len(p.current.Load().entries)
}

// Names returns entry names in execution order.
func (p *Pipeline) Names() []string {
	entries := p.current.Load().entries
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func validateEntries(entries []Entry) error {
	for i, e := range entries {
		if e.Middleware == nil {
			return fmt.Errorf("entry %d (%q): %w", i, e.Name, ErrNilMiddleware)
		}
		if e.Prefix != "" && !strings.HasPrefix(e.Prefix, "/") {
			return fmt.Errorf("entry %d (%q): prefix %q must start with /", i, e.Name, e.Prefix)
		}
	}
	return nil
}

// mountKey carries the unstripped URL of a request into a mounted entry's
// downstream handler.
type mountKey struct{ prefix string }

// mount wraps next with the entry's middleware. For a prefixed entry the
// middleware sees the path with the prefix removed, and next sees the
// original path again.
func mount(e Entry, next http.Handler) http.Handler {
	prefix := strings.TrimRight(e.Prefix, "/")
	if prefix == "" {
		return e.Middleware(next)
	}

	key := mountKey{prefix: prefix}
	restore := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if orig, ok := r.Context().Value(key).(*url.URL); ok {
			r = r.WithContext(r.Context())
			r.URL = orig
		}
		next.ServeHTTP(w, r)
	})
	inner := e.Middleware(restore)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !matchesPrefix(r.URL.Path, prefix) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), key, r.URL)
		stripped := r.WithContext(ctx)
		u := *r.URL
		u.Path = stripPrefix(r.URL.Path, prefix)
		u.RawPath = ""
		stripped.URL = &u

		inner.ServeHTTP(w, stripped)
	})
}

func matchesPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func stripPrefix(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" {
		return "/"
	}
	return rest
}
