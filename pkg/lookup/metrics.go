package lookup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	groups   prometheus.Histogram
}

func newMetrics(namespace string, registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)
	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "requests_total",
			Help:      "Category attribute lookups by response status.",
		}, []string{"status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "request_duration_seconds",
			Help:      "Category attribute lookup latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		groups: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "attributes_returned",
			Help:      "Attributes returned per successful lookup.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}),
	}
}
