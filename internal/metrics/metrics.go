// Package metrics provides the centralized Prometheus registry for feature
// builds, ingestion and predictions.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hoopslines"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Pipeline counters
var (
	PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Total number of pipeline runs by kind and outcome",
	}, []string{"kind", "outcome"})
	RowsProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_processed_total",
		Help:      "Total rows produced per pipeline stage",
	}, []string{"stage"})
	RowsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_skipped_total",
		Help:      "Total rows skipped by reason",
	}, []string{"reason"})
	RowsWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_written_total",
		Help:      "Total rows written per output table",
	}, []string{"table"})
)

// Pipeline gauges
var (
	LastRunTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last completed run by kind",
	}, []string{"kind"})
	TeamsReported = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "teams_reported",
		Help:      "Number of teams in the latest analytics report",
	}, []string{"report"})
)

// Pipeline histograms
var (
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of pipeline stages in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"stage"})
	RunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of whole runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	}, []string{"kind"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PipelineRunsTotal)
		registry.MustRegister(RowsProcessedTotal)
		registry.MustRegister(RowsSkippedTotal)
		registry.MustRegister(RowsWrittenTotal)
		registry.MustRegister(LastRunTimestamp)
		registry.MustRegister(TeamsReported)
		registry.MustRegister(StageDuration)
		registry.MustRegister(RunDuration)

		registry.MustRegister(FetchesTotal)
		registry.MustRegister(FetchRetriesExhaustedTotal)
		registry.MustRegister(FetchDuration)

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionCacheHitsTotal)
		registry.MustRegister(PredictionLatency)

		registry.MustRegister(prometheus.NewGoCollector())
		registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// ObserveStage records the duration and output size of a pipeline stage.
func ObserveStage(stage string, elapsed time.Duration, rows int) {
	StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	RowsProcessedTotal.WithLabelValues(stage).Add(float64(rows))
}

// RecordSkipped counts rows skipped for a reason such as "data_gap".
func RecordSkipped(reason string, n int) {
	if n > 0 {
		RowsSkippedTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordTableWrite counts rows written to an output table.
func RecordTableWrite(table string, rows int64) {
	RowsWrittenTotal.WithLabelValues(table).Add(float64(rows))
}

// RecordRun records the outcome and duration of a run.
func RecordRun(kind string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	PipelineRunsTotal.WithLabelValues(kind, outcome).Inc()
	RunDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if err == nil {
		LastRunTimestamp.WithLabelValues(kind).SetToCurrentTime()
	}
}

// UpdateTeamsReported sets the team count of a report.
func UpdateTeamsReported(report string, teams int) {
	TeamsReported.WithLabelValues(report).Set(float64(teams))
}
