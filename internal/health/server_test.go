package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hoopslines/internal/metrics"
)

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	next := time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)
	s := NewServer(Config{
		ServiceName: "lines",
		Version:     "1.0.0",
		Logger:      quiet(),
		NextRun:     func() time.Time { return next },
	})

	rec := get(t, s.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "lines", body.Service)
	assert.Equal(t, "2024-01-02T06:00:00Z", body.NextRun)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		db         DatabasePinger
		checks     map[string]CheckFunc
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "not marked ready",
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "not_ready"},
		},
		{
			name:       "all healthy",
			ready:      true,
			db:         fakeDB{},
			checks:     map[string]CheckFunc{"predictor": func(context.Context) error { return nil }},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"service": "ok", "database": "ok", "predictor": "ok"},
		},
		{
			name:       "database down",
			ready:      true,
			db:         fakeDB{err: errors.New("refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "ok", "database": "error: refused"},
		},
		{
			name:       "predictor down",
			ready:      true,
			checks:     map[string]CheckFunc{"predictor": func(context.Context) error { return errors.New("NOT_SERVING") }},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "ok", "predictor": "error: NOT_SERVING"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{ServiceName: "lines", Logger: quiet(), Checks: tt.checks}
			if tt.db != nil {
				cfg.DB = tt.db
			}
			s := NewServer(cfg)
			s.SetReady(tt.ready)

			rec := get(t, s.Handler(), "/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ReadyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	metrics.RecordSkipped("gap", 2)
	s := NewServer(Config{Logger: quiet(), MetricsPath: "/metrics", Metrics: metrics.Handler()})

	rec := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "hoopslines_rows_skipped_total"))

	bare := NewServer(Config{Logger: quiet()})
	assert.Equal(t, http.StatusNotFound, get(t, bare.Handler(), "/metrics").Code)
}
