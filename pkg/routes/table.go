package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/mux"

	"mercator-hq/portico/pkg/middleware"
)

// MethodAll registers a route for every HTTP method.
const MethodAll = "ALL"

// DefaultAPIPrefix is the namespace for externally registered routes.
const DefaultAPIPrefix = "/api/"

// ErrStaticInstalled is returned when InstallStatic is called twice.
var ErrStaticInstalled = errors.New("static routes already installed")

// Route is one registered route.
type Route struct {
	Method   string
	Path     string
	Handler  http.Handler
	External bool
}

// Table maps (method, path pattern) to handlers.
//
// Each mutation builds a fresh gorilla/mux router and publishes it
// atomically, so a request is matched against either the routes before a
// registration or after it.
type Table struct {
	apiPrefix string
	logger    *slog.Logger
	onChange  func(size int)

	mu              sync.Mutex
	routes          []Route
	taken           map[string]map[string]string // shape -> method -> path
	staticInstalled bool

	router atomic.Pointer[mux.Router]
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger used to report registrations and conflicts.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithSizeObserver registers fn to be called with the route count after
// every registration.
func WithSizeObserver(fn func(size int)) Option {
	return func(t *Table) {
		t.onChange = fn
	}
}

// NewTable creates an empty table mounting external routes under apiPrefix.
func NewTable(apiPrefix string, opts ...Option) *Table {
	if apiPrefix == "" {
		apiPrefix = DefaultAPIPrefix
	}
	t := &Table{
		apiPrefix: apiPrefix,
		logger:    slog.Default().With("component", "routes"),
		taken:     make(map[string]map[string]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.router.Store(t.build(nil))
	return t
}

// InstallStatic registers the boot routes: the root document and the
// partial-view lookup with and without a directory segment. These routes
// are not namespaced. It may only be called once.
func (t *Table) InstallStatic(views *ViewResolver) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.staticInstalled {
		return ErrStaticInstalled
	}

	boot := []Route{
		{Method: http.MethodGet, Path: "/", Handler: views.IndexHandler()},
		{Method: http.MethodGet, Path: "/partials/{dir}/{name}", Handler: views.PartialHandler()},
		{Method: http.MethodGet, Path: "/partials/{name}", Handler: views.PartialHandler()},
	}
	for _, r := range boot {
		if err := t.check(r); err != nil {
			return err
		}
	}

	t.staticInstalled = true
	t.add(boot...)
	return nil
}

// Register adds an unprefixed route. It is used for the server's own
// endpoints such as health checks.
func (t *Table) Register(method, path string, handler http.Handler) error {
	return t.register(Route{Method: method, Path: path, Handler: handler})
}

// RegisterExternal mounts a route under the API prefix. Express-style
// ":param" segments are accepted. The method is case-insensitive; "all"
// matches every method.
func (t *Table) RegisterExternal(method, path string, handler http.Handler) error {
	return t.register(Route{
		Method:   method,
		Path:     t.ResolveExternal(path),
		Handler:  handler,
		External: true,
	})
}

// RegisterExternalSet registers a path -> method -> handler map. Every
// route that does not conflict is added; the errors of the others are
// joined into the returned error. Paths are registered in sorted order.
func (t *Table) RegisterExternalSet(set map[string]map[string]http.Handler) error {
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var errs []error
	for _, p := range paths {
		methods := make([]string, 0, len(set[p]))
		for m := range set[p] {
			methods = append(methods, m)
		}
		sort.Strings(methods)

		for _, m := range methods {
			if err := t.RegisterExternal(m, p, set[p][m]); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// ResolveExternal returns the full path an external route is mounted at:
// the API prefix and path joined by exactly one slash, with ":param"
// segments rewritten to "{param}".
func (t *Table) ResolveExternal(path string) string {
	return strings.TrimRight(t.apiPrefix, "/") + "/" + strings.TrimLeft(convertParams(path), "/")
}

var expressParam = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

func convertParams(path string) string {
	return expressParam.ReplaceAllString(path, "{$1}")
}

func (t *Table) register(r Route) error {
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(r); err != nil {
		var conflict *RouteConflictError
		if errors.As(err, &conflict) {
			t.logger.Warn("route registration rejected",
				"method", conflict.Method,
				"route", conflict.Path,
				"existing", conflict.Existing,
			)
		} else {
			t.logger.Error("invalid route", "method", r.Method, "route", r.Path, "error", err)
		}
		return err
	}

	t.add(r)
	t.logger.Debug("route registered", "method", r.Method, "route", r.Path, "external", r.External)
	return nil
}

// check validates r and detects collisions. Callers hold t.mu.
func (t *Table) check(r Route) error {
	if r.Method == "" {
		return &InvalidRouteError{Method: r.Method, Path: r.Path, Err: errors.New("method is required")}
	}
	if r.Handler == nil {
		return &InvalidRouteError{Method: r.Method, Path: r.Path, Err: errors.New("handler is required")}
	}
	if !strings.HasPrefix(r.Path, "/") {
		return &InvalidRouteError{Method: r.Method, Path: r.Path, Err: errors.New("path must start with /")}
	}
	if err := mux.NewRouter().Path(r.Path).GetError(); err != nil {
		return &InvalidRouteError{Method: r.Method, Path: r.Path, Err: err}
	}

	methods := t.taken[routeShape(r.Path)]
	if existing, ok := methods[r.Method]; ok {
		return &RouteConflictError{Method: r.Method, Path: r.Path, Existing: existing}
	}
	if existing, ok := methods[MethodAll]; ok {
		return &RouteConflictError{Method: r.Method, Path: r.Path, Existing: existing}
	}
	// GET routes also answer HEAD.
	if existing, ok := methods[http.MethodGet]; ok && r.Method == http.MethodHead {
		return &RouteConflictError{Method: r.Method, Path: r.Path, Existing: existing}
	}
	if r.Method == MethodAll {
		for _, existing := range methods {
			return &RouteConflictError{Method: r.Method, Path: r.Path, Existing: existing}
		}
	}
	return nil
}

// add records routes and publishes a new router. Callers hold t.mu.
func (t *Table) add(rs ...Route) {
	for _, r := range rs {
		shape := routeShape(r.Path)
		if t.taken[shape] == nil {
			t.taken[shape] = make(map[string]string)
		}
		t.taken[shape][r.Method] = r.Path
	}
	t.routes = append(t.routes, rs...)
	t.router.Store(t.build(t.routes))

	if t.onChange != nil {
		t.onChange(len(t.routes))
	}
}

var varPattern = regexp.MustCompile(`\{[^{}]*\}`)

// routeShape erases variable names so that /users/{id} and /users/{uid}
// are treated as the same path.
func routeShape(path string) string {
	return varPattern.ReplaceAllString(path, "{}")
}

func (t *Table) build(routes []Route) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	for _, r := range routes {
		route := router.Handle(r.Path, labelled(r.Path, r.Handler))
		switch r.Method {
		case MethodAll:
		case http.MethodGet:
			route.Methods(http.MethodGet, http.MethodHead)
		default:
			route.Methods(r.Method)
		}
	}
	return router
}

func labelled(pattern string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.SetRoutePattern(r.Context(), pattern)
		h.ServeHTTP(w, r)
	})
}

// ServeHTTP dispatches against the current router snapshot.
func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.router.Load().ServeHTTP(w, r)
}

// Routes returns the registered routes in registration order.
func (t *Table) Routes() []Route {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.routes)
}

// String lists the routes, one per line.
func (t *Table) String() string {
	var b strings.Builder
	for _, r := range t.Routes() {
		fmt.Fprintf(&b, "%-7s %s\n", r.Method, r.Path)
	}
	return b.String()
}
