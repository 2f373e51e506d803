package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestObserveStage(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(RowsProcessedTotal.WithLabelValues("rollup_test"))

	ObserveStage("rollup_test", 20*time.Millisecond, 12)

	assert.Equal(t, before+12, testutil.ToFloat64(RowsProcessedTotal.WithLabelValues("rollup_test")))
}

func TestRecordSkippedIgnoresZero(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(RowsSkippedTotal.WithLabelValues("skip_test"))

	RecordSkipped("skip_test", 0)
	assert.Equal(t, before, testutil.ToFloat64(RowsSkippedTotal.WithLabelValues("skip_test")))

	RecordSkipped("skip_test", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(RowsSkippedTotal.WithLabelValues("skip_test")))
}

func TestRecordRun(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name    string
		err     error
		outcome string
	}{
		{"success", nil, "success"},
		{"failure", errors.New("boom"), "failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := PipelineRunsTotal.WithLabelValues("run_test", tt.outcome)
			before := testutil.ToFloat64(c)
			RecordRun("run_test", time.Second, tt.err)
			assert.Equal(t, before+1, testutil.ToFloat64(c))
		})
	}
	assert.Greater(t, testutil.ToFloat64(LastRunTimestamp.WithLabelValues("run_test")), 0.0)
}

func TestRecordFetch(t *testing.T) {
	InitRegistry()
	exhausted := FetchRetriesExhaustedTotal.WithLabelValues("fetch_test")
	before := testutil.ToFloat64(exhausted)

	RecordFetch("fetch_test", time.Second, nil, false)
	RecordFetch("fetch_test", time.Second, errors.New("timeout"), true)

	assert.Equal(t, before+1, testutil.ToFloat64(exhausted))
	assert.Equal(t, 1.0, testutil.ToFloat64(FetchesTotal.WithLabelValues("fetch_test", "failure")))
}

func TestRecordPrediction(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PredictionCacheHitsTotal)

	RecordPrediction("grpc_test", 10*time.Millisecond, nil)
	RecordPredictionCacheHit()

	assert.Equal(t, 1.0, testutil.ToFloat64(PredictionsTotal.WithLabelValues("grpc_test", "success")))
	assert.Equal(t, before+1, testutil.ToFloat64(PredictionCacheHitsTotal))
}

func TestHandlerServesMetrics(t *testing.T) {
	RecordTableWrite("handler_test", 5)
	UpdateTeamsReported("coverage_summary", 30)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hoopslines_rows_written_total{table="handler_test"} 5`)
	assert.Contains(t, rec.Body.String(), `hoopslines_teams_reported{report="coverage_summary"} 30`)
}
