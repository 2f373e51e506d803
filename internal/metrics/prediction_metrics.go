package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prediction metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total regressor calls by transport and outcome",
	}, []string{"transport", "outcome"})
	PredictionCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_cache_hits_total",
		Help:      "Total predictions served from cache",
	})
	PredictionLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_latency_seconds",
		Help:      "Latency of regressor calls in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"transport"})
)

// RecordPrediction records one regressor call.
func RecordPrediction(transport string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	PredictionsTotal.WithLabelValues(transport, outcome).Inc()
	PredictionLatency.WithLabelValues(transport).Observe(elapsed.Seconds())
}

// RecordPredictionCacheHit counts a cached prediction.
func RecordPredictionCacheHit() {
	PredictionCacheHitsTotal.Inc()
}
