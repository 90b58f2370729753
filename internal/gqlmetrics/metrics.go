// Package gqlmetrics exposes Prometheus counters/histograms for the
// GraphQL runtime itself — requests, field resolutions, and entity
// resolutions — generalized from the teacher's much broader
// application-wide MetricsCollector down to what a GraphQL engine
// actually has an opinion about.
package gqlmetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the metric vectors for the runtime. gqlhttp.Handler
// records into the request vectors through ObserveRequest; nothing in
// this module calls ObserveField, ObserveEntityResolution, or
// Inc/DecSubscriptions.
type Collector struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	fieldDuration     *prometheus.HistogramVec
	fieldErrors       *prometheus.CounterVec
	entityResolutions *prometheus.CounterVec
	activeSubscriptions prometheus.Gauge
}

// Config names the metric namespace/subsystem, matching the teacher's
// MetricsConfig shape trimmed to the two fields a GraphQL runtime
// actually needs to pick.
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig returns the namespace/subsystem this module publishes
// under absent an explicit override.
func DefaultConfig() Config {
	return Config{Namespace: "gqlrt", Subsystem: "graphql"}
}

// New registers every metric against the default Prometheus registry
// via promauto, matching the teacher's own registration style.
func New(cfg Config) *Collector {
	return &Collector{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "requests_total",
			Help:      "Total number of GraphQL requests by operation name and whether they errored.",
		}, []string{"operation_name", "has_errors"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "request_duration_seconds",
			Help:      "Time spent executing a GraphQL request end to end.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation_name"}),

		fieldDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "field_duration_seconds",
			Help:      "Time spent resolving a single field.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type_name", "field_name"}),

		fieldErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "field_errors_total",
			Help:      "Total number of field resolver errors by type and field name.",
		}, []string{"type_name", "field_name"}),

		entityResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "entity_resolutions_total",
			Help:      "Total number of _entities reference resolutions by typename and outcome.",
		}, []string{"typename", "outcome"}),

		activeSubscriptions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "active_subscriptions",
			Help:      "Number of currently open subscription operations across all transports.",
		}),
	}
}

// ObserveRequest records one completed Execute call.
func (c *Collector) ObserveRequest(operationName string, hasErrors bool, duration time.Duration) {
	label := "false"
	if hasErrors {
		label = "true"
	}
	c.requestsTotal.WithLabelValues(operationName, label).Inc()
	c.requestDuration.WithLabelValues(operationName).Observe(duration.Seconds())
}

// ObserveField records one field resolution.
func (c *Collector) ObserveField(typeName, fieldName string, duration time.Duration, err error) {
	c.fieldDuration.WithLabelValues(typeName, fieldName).Observe(duration.Seconds())
	if err != nil {
		c.fieldErrors.WithLabelValues(typeName, fieldName).Inc()
	}
}

// ObserveEntityResolution records one _entities representation outcome
// ("resolved", "not_found", or "error").
func (c *Collector) ObserveEntityResolution(typename, outcome string) {
	c.entityResolutions.WithLabelValues(typename, outcome).Inc()
}

// IncSubscriptions/DecSubscriptions track open subscription operations.
func (c *Collector) IncSubscriptions() { c.activeSubscriptions.Inc() }
func (c *Collector) DecSubscriptions() { c.activeSubscriptions.Dec() }

// Handler returns the standard Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
