package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Registrar is the part of the route table the endpoints are mounted on.
type Registrar interface {
	Register(method, path string, handler http.Handler) error
}

// Mount registers GET /health, /ready and /version on r.
func Mount(r Registrar, c *Checker, info VersionInfo) error {
	return errors.Join(
		r.Register(http.MethodGet, "/health", c.LivenessHandler()),
		r.Register(http.MethodGet, "/ready", c.ReadinessHandler()),
		r.Register(http.MethodGet, "/version", VersionHandler(info)),
	)
}

// LivenessHandler returns the /health handler.
//
// Example response:
//
//	{"status": "ok", "timestamp": "2026-10-18T10:30:00Z"}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, c.Liveness(r.Context()))
	}
}

// ReadinessHandler returns the /ready handler: 200 when ready, 503 when
// any check fails.
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "lifecycle": {"status": "unhealthy", "message": "server is Failed, not Listening"},
//	        "sessions": {"status": "ok", "duration_ms": 0.4}
//	    },
//	    "timestamp": "2026-10-18T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Readiness(r.Context())

		status := http.StatusOK
		if report.Status != StatusReady {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, r, status, report)
	}
}

// VersionHandler returns the /version handler. GoVersion is filled in
// when empty.
func VersionHandler(info VersionInfo) http.HandlerFunc {
	if info.GoVersion == "" {
		info.GoVersion = runtime.Version()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, info)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(v)
	}
}
