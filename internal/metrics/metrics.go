package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "novelpedia"

// Recompute kinds.
const (
	RecomputeWordCount = "word_count"
	RecomputeRating    = "rating"
)

var (
	// recomputations counts derived-metric rewrites.
	// Labels: kind (word_count, rating)
	recomputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "aggregate",
		Name:      "recomputations_total",
		Help:      "Derived metric recomputations by kind",
	}, []string{"kind"})

	// federationOutcomes counts OAuth logins.
	// Labels: provider, outcome (success or a failure reason)
	federationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "federation",
		Name:      "logins_total",
		Help:      "External identity logins by outcome",
	}, []string{"provider", "outcome"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func RecordRecompute(kind string) {
	recomputations.WithLabelValues(kind).Inc()
}

func RecordFederation(provider, outcome string) {
	federationOutcomes.WithLabelValues(provider, outcome).Inc()
}

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
