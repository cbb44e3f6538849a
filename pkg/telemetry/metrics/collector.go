package metrics

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"mercator-hq/portico/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector records Portico's Prometheus metrics. It implements
// middleware.RequestObserver and extension.Observer.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics   *RequestMetrics
	lifecycleMetrics *LifecycleMetrics
	extensionMetrics *ExtensionMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector for cfg. If registry is nil a new
// private registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:             *cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}
	if c.config.Namespace == "" {
		c.config.Namespace = config.DefaultMetricsNamespace
	}
	if len(c.config.RequestDurationBuckets) == 0 {
		c.config.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	c.requestMetrics = NewRequestMetrics(&c.config, registry)
	c.lifecycleMetrics = NewLifecycleMetrics(&c.config, registry)
	c.extensionMetrics = NewExtensionMetrics(&c.config, registry)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// ObserveRequest records a completed request. route is the matched route
// pattern, "static" or "unmatched".
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	if !c.cardinalityLimiter.Allow(fmt.Sprintf("%s:%s", method, route)) {
		route = "other"
	}
	c.requestMetrics.RecordRequest(method, route, strconv.Itoa(status), duration)
}

// ObserveEvent records an extension bus event outcome.
func (c *Collector) ObserveEvent(topic, outcome string) {
	if !c.config.Enabled {
		return
	}
	c.extensionMetrics.RecordEvent(topic, outcome)
}

// SetState marks state as the current lifecycle state.
func (c *Collector) SetState(state string) {
	if !c.config.Enabled {
		return
	}
	c.lifecycleMetrics.SetState(state)
}

// ObserveStage records how long a lifecycle stage took and whether it
// succeeded.
func (c *Collector) ObserveStage(stage string, err error, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.lifecycleMetrics.RecordStage(stage, outcome, duration)
}

// SetPipelineSize updates the middleware pipeline entry gauge.
func (c *Collector) SetPipelineSize(n int) {
	if !c.config.Enabled {
		return
	}
	c.extensionMetrics.pipelineEntries.Set(float64(n))
}

// SetRouteCount updates the registered route gauge.
func (c *Collector) SetRouteCount(n int) {
	if !c.config.Enabled {
		return
	}
	c.extensionMetrics.routes.Set(float64(n))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet may be recorded: it is already known or
// the limit has not been reached.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
