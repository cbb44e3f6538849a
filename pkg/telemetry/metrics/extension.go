package metrics

import (
	"mercator-hq/portico/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ExtensionMetrics tracks runtime registration through the extension bus.
//
// Metrics:
//   - portico_extension_events_total: bus events by topic and outcome
//   - portico_pipeline_entries: installed middleware entries
//   - portico_routes: registered routes
type ExtensionMetrics struct {
	eventsTotal     *prometheus.CounterVec
	pipelineEntries prometheus.Gauge
	routes          prometheus.Gauge
}

// NewExtensionMetrics creates and registers extension metrics with the provided registry.
func NewExtensionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExtensionMetrics {
	em := &ExtensionMetrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "extension",
				Name:      "events_total",
				Help:      "Total number of extension bus events by outcome",
			},
			[]string{"topic", "outcome"},
		),
		pipelineEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "pipeline_entries",
			Help:      "Number of installed middleware pipeline entries",
		}),
		routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "routes",
			Help:      "Number of registered routes",
		}),
	}

	registry.MustRegister(em.eventsTotal, em.pipelineEntries, em.routes)

	return em
}

// RecordEvent counts one bus event.
func (em *ExtensionMetrics) RecordEvent(topic, outcome string) {
	em.eventsTotal.WithLabelValues(topic, outcome).Inc()
}
