package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Static serves regular files below root for GET and HEAD requests. A
// request for a directory serves its index.html when present. Anything
// that does not resolve to a file falls through to the next handler.
//
// Mount it with an Entry prefix to serve root under that path.
func Static(root string, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	fileServer := http.FileServer(http.Dir(root))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			name, ok := resolveStatic(root, r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			info, err := os.Stat(name)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if info.IsDir() {
				index := filepath.Join(name, "index.html")
				if fi, err := os.Stat(index); err != nil || !fi.Mode().IsRegular() {
					next.ServeHTTP(w, r)
					return
				}
			} else if !info.Mode().IsRegular() {
				next.ServeHTTP(w, r)
				return
			}

			SetRoutePattern(r.Context(), "static")
			logger.DebugContext(r.Context(), "serving static file", "root", root, "path", r.URL.Path)
			fileServer.ServeHTTP(w, r)
		})
	}
}

// resolveStatic maps a URL path to a file below root. Cleaning the path as
// rooted removes any dot-dot segments.
func resolveStatic(root, urlPath string) (string, bool) {
	if strings.Contains(urlPath, "\x00") {
		return "", false
	}
	clean := path.Clean("/" + urlPath)
	return filepath.Join(root, filepath.FromSlash(clean)), true
}
