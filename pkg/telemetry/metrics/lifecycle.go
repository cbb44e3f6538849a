package metrics

import (
	"sync"
	"time"

	"mercator-hq/portico/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics tracks the server state machine.
//
// Metrics:
//   - portico_lifecycle_state: 1 for the current state, 0 for states left behind
//   - portico_lifecycle_stage_duration_seconds: stage duration by stage and outcome
type LifecycleMetrics struct {
	state         *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec

	mu      sync.Mutex
	current string
}

// NewLifecycleMetrics creates and registers lifecycle metrics with the provided registry.
func NewLifecycleMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LifecycleMetrics {
	lm := &LifecycleMetrics{
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "lifecycle",
				Name:      "state",
				Help:      "Current server lifecycle state (1 = current)",
			},
			[]string{"state"},
		),

		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "lifecycle",
				Name:      "stage_duration_seconds",
				Help:      "Duration of server startup stages in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8), // 0.5ms to ~8s
			},
			[]string{"stage", "outcome"},
		),
	}

	registry.MustRegister(lm.state, lm.stageDuration)

	return lm
}

// SetState moves the state gauge to state.
func (lm *LifecycleMetrics) SetState(state string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if lm.current != "" {
		lm.state.WithLabelValues(lm.current).Set(0)
	}
	lm.state.WithLabelValues(state).Set(1)
	lm.current = state
}

// RecordStage records the duration of one stage.
func (lm *LifecycleMetrics) RecordStage(stage, outcome string, duration time.Duration) {
	lm.stageDuration.WithLabelValues(stage, outcome).Observe(duration.Seconds())
}
