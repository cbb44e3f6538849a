package routes

import "fmt"

// RouteConflictError reports a registration for a method and path that is
// already taken. The earlier registration stays in place.
type RouteConflictError struct {
	Method   string
	Path     string
	Existing string
}

func (e *RouteConflictError) Error() string {
	if e.Existing != "" && e.Existing != e.Path {
		return fmt.Sprintf("route conflict: %s %s collides with %s", e.Method, e.Path, e.Existing)
	}
	return fmt.Sprintf("route conflict: %s %s is already registered", e.Method, e.Path)
}

// InvalidViewPathError reports a partial-view segment that could escape the
// views root.
type InvalidViewPathError struct {
	Segment string
	Reason  string
}

func (e *InvalidViewPathError) Error() string {
	return fmt.Sprintf("invalid view path segment %q: %s", e.Segment, e.Reason)
}

// InvalidRouteError reports a route that cannot be registered at all.
type InvalidRouteError struct {
	Method string
	Path   string
	Err    error
}

func (e *InvalidRouteError) Error() string {
	return fmt.Sprintf("invalid route %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *InvalidRouteError) Unwrap() error {
	return e.Err
}
