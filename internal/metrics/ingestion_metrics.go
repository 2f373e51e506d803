package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream fetch metrics
var (
	FetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_fetches_total",
		Help:      "Total fetches from external sources by outcome",
	}, []string{"source", "outcome"})
	FetchRetriesExhaustedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_retries_exhausted_total",
		Help:      "Total fetches that failed after every retry",
	}, []string{"source"})
	FetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "source_fetch_duration_seconds",
		Help:      "Duration of source fetches including retries",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
	}, []string{"source"})
)

// RecordFetch records one fetch from source. exhausted marks a fetch that
// ran out of retries.
func RecordFetch(source string, elapsed time.Duration, err error, exhausted bool) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	FetchesTotal.WithLabelValues(source, outcome).Inc()
	FetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if exhausted {
		FetchRetriesExhaustedTotal.WithLabelValues(source).Inc()
	}
}
