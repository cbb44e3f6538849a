// Package health provides the health, readiness and version endpoints.
//
// # Endpoints
//
//   - /health: liveness, 200 whenever the process can answer
//   - /ready: readiness, 200 when every registered check passes, 503 otherwise
//   - /version: build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("lifecycle", health.StateCheck(srv.StateName, "Listening"))
//
//	if err := health.Mount(table, checker, health.VersionInfo{Version: version}); err != nil {
//	    return err
//	}
//
// Checks run concurrently, each bounded by the checker timeout. A check that
// times out is reported unhealthy.
package health
