// Package telemetry groups the observability packages of the Portico server.
//
// # Components
//
//   - logging: structured slog loggers with secret redaction and request IDs
//   - metrics: Prometheus collectors for requests, lifecycle stages and the
//     extension bus
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json", Redact: true})
//	if err != nil {
//	    return err
//	}
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("sessions", backend.Ping)
//
// The server wires all three; see package server.
package telemetry
