// Package metrics provides Prometheus metrics collection for Portico.
//
// # Overview
//
// The collector owns a private Prometheus registry and records:
//
//   - Request metrics: request count and latency by method, route pattern and status
//   - Lifecycle metrics: the current server state and per-stage durations
//   - Extension metrics: bus events by topic and outcome, pipeline and route table sizes
//
// Go runtime and process collectors are registered alongside.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// The collector satisfies middleware.RequestObserver and extension.Observer.
//	logging := middleware.Logging(logger, collector)
//	bus := extension.NewBus(extension.WithObserver(collector))
//
//	table.Register(http.MethodGet, "/metrics", collector.Handler())
//
// # Cardinality
//
// Route labels come from registered route patterns, never from raw request
// paths, so request metrics stay bounded. A limiter still caps the number of
// distinct label sets; overflow is aggregated into route "other".
package metrics
