package routes

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"mercator-hq/portico/pkg/middleware"
)

// ViewExtension is appended to every resolved view name.
const ViewExtension = ".html"

// ViewResolver maps partial-view names to files under a views root.
type ViewResolver struct {
	root     string
	logger   *slog.Logger
	openFile func(name string) (*os.File, error)
}

// NewViewResolver creates a resolver for the given views root.
func NewViewResolver(root string, logger *slog.Logger) *ViewResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewResolver{root: root, logger: logger, openFile: os.Open}
}

// Root returns the views root.
func (v *ViewResolver) Root() string {
	return v.root
}

// Resolve returns <root>/<dir>/<name>.html, or <root>/<name>.html when dir
// is empty. Segments that could leave the root fail with
// *InvalidViewPathError; Resolve never touches the file system.
func (v *ViewResolver) Resolve(dir, name string) (string, error) {
	if err := validateSegment(name); err != nil {
		return "", err
	}
	if dir == "" {
		return filepath.Join(v.root, name+ViewExtension), nil
	}
	if err := validateSegment(dir); err != nil {
		return "", err
	}
	return filepath.Join(v.root, dir, name+ViewExtension), nil
}

func validateSegment(s string) error {
	switch {
	case s == "":
		return &InvalidViewPathError{Segment: s, Reason: "empty segment"}
	case strings.ContainsRune(s, 0):
		return &InvalidViewPathError{Segment: s, Reason: "contains NUL"}
	case strings.Contains(s, ".."):
		return &InvalidViewPathError{Segment: s, Reason: "contains traversal sequence"}
	case strings.ContainsAny(s, `/\`):
		return &InvalidViewPathError{Segment: s, Reason: "contains path separator"}
	case filepath.IsAbs(s) || filepath.VolumeName(s) != "":
		return &InvalidViewPathError{Segment: s, Reason: "absolute path"}
	case s == ".":
		return &InvalidViewPathError{Segment: s, Reason: "refers to the views root"}
	}
	return nil
}

// IndexHandler serves <root>/index.html.
func (v *ViewResolver) IndexHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v.serveFile(w, r, filepath.Join(v.root, "index"+ViewExtension))
	})
}

// PartialHandler serves the view named by the route's {dir} and {name}
// variables.
func (v *ViewResolver) PartialHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		name, err := v.Resolve(vars["dir"], vars["name"])
		if err != nil {
			var invalid *InvalidViewPathError
			if errors.As(err, &invalid) {
				v.logger.WarnContext(r.Context(), "rejected partial view path",
					"segment", invalid.Segment,
					"reason", invalid.Reason,
				)
			}
			middleware.WriteError(w, r, http.StatusBadRequest, "invalid view path")
			return
		}

		v.serveFile(w, r, name)
	})
}

func (v *ViewResolver) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	f, err := v.openFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			middleware.WriteError(w, r, http.StatusNotFound, "view not found")
			return
		}
		v.logger.ErrorContext(r.Context(), "failed to open view", "path", name, "error", err)
		middleware.WriteError(w, r, http.StatusInternalServerError, "view unavailable")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		middleware.WriteError(w, r, http.StatusNotFound, "view not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
