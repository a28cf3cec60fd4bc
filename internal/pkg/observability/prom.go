package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "gwadmin"
)

var (
	StatsQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "stats", "query_duration_seconds"),
		Help:    "Duration of a complete statistics query (all response classes) in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"granularity"})
	StatsQueryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "stats", "query_failures_total"),
		Help: "Statistics queries that failed, by error kind",
	}, []string{"kind"})
	StatsBatchKeys = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "stats", "batch_keys"),
		Help:    "Number of storage keys requested in a single batch read",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"response_class"})
	StorageBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "storage", "breaker_state"),
		Help: "Circuit breaker state of the statistics storage reader (0 closed, 1 half-open, 2 open)",
	}, []string{"breaker"})
)
