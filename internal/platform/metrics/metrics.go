package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	ChildrenRegistered   prometheus.Counter
	IdentifierLookups    *prometheus.CounterVec
	Regenerations        prometheus.Counter
	AdminReassignments   prometheus.Counter
	CollisionRetries     prometheus.Counter
	OutboxPublished      prometheus.Counter
	OutboxPublishErrors  prometheus.Counter
	CacheHits            prometheus.Counter
	CacheMisses          prometheus.Counter
	RequestDurationSecs  *prometheus.HistogramVec
	NotificationFailures prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		ChildrenRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_children_registered_total",
			Help: "Total number of child records registered.",
		}),
		IdentifierLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cradle_identifier_lookups_total",
			Help: "Identifier lookups by outcome.",
		}, []string{"outcome"}),
		Regenerations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_identifier_regenerations_total",
			Help: "Successful self-service identifier regenerations.",
		}),
		AdminReassignments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_admin_reassignments_total",
			Help: "Successful administrative reassignments.",
		}),
		CollisionRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_identifier_collision_retries_total",
			Help: "Generation retries caused by a unique-constraint collision.",
		}),
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_outbox_published_total",
			Help: "Lifecycle events relayed from the outbox to Kafka.",
		}),
		OutboxPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_outbox_publish_errors_total",
			Help: "Failed outbox relay attempts.",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_lookup_cache_hits_total",
			Help: "Identifier lookups served from the Redis cache.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_lookup_cache_misses_total",
			Help: "Identifier lookups that fell through to the store.",
		}),
		RequestDurationSecs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cradle_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"route", "status"}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_notification_failures_total",
			Help: "Guardian notifications that failed to send (never retried).",
		}),
	}
}
