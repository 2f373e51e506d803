package predictor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(next Predictor) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(next, CircuitBreakerConfig{
		MaxFailureCount:   2,
		FailureTimeWindow: time.Minute,
		CooldownPeriod:    30 * time.Second,
	}, quietLogger())
	cb.now = clock.now
	return cb, clock
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	next := &mockPredictor{}
	down := errors.New("connection refused")
	next.On("Predict", mock.Anything, mock.Anything).Return(Prediction{}, down).Twice()

	cb, clock := newTestBreaker(next)
	ctx := context.Background()

	_, err := cb.Predict(ctx, vector())
	assert.ErrorIs(t, err, down)
	assert.Equal(t, CircuitClosed, cb.State())

	_, err = cb.Predict(ctx, vector())
	assert.ErrorIs(t, err, down)
	assert.Equal(t, CircuitOpen, cb.State())

	_, err = cb.Predict(ctx, vector())
	assert.ErrorIs(t, err, ErrPredictorUnavailable)
	assert.ErrorIs(t, cb.HealthCheck(ctx), ErrPredictorUnavailable)
	next.AssertNumberOfCalls(t, "Predict", 2)

	clock.advance(31 * time.Second)
	next.On("Predict", mock.Anything, mock.Anything).Return(Prediction{PointTotal: 210}, nil).Once()
	p, err := cb.Predict(ctx, vector())
	require.NoError(t, err)
	assert.Equal(t, 210.0, p.PointTotal)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerFailedTrialReopens(t *testing.T) {
	next := &mockPredictor{}
	next.On("Predict", mock.Anything, mock.Anything).Return(Prediction{}, errors.New("down"))

	cb, clock := newTestBreaker(next)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, _ = cb.Predict(ctx, vector())
	}
	require.Equal(t, CircuitOpen, cb.State())

	clock.advance(2 * time.Minute)
	_, err := cb.Predict(ctx, vector())
	assert.NotErrorIs(t, err, ErrPredictorUnavailable)
	assert.Equal(t, CircuitOpen, cb.State())
	next.AssertNumberOfCalls(t, "Predict", 3)
}

func TestCircuitBreakerIgnoresInvalidResponses(t *testing.T) {
	next := &mockPredictor{}
	next.On("Predict", mock.Anything, mock.Anything).Return(Prediction{}, ErrInvalidPrediction)

	cb, _ := newTestBreaker(next)
	for i := 0; i < 5; i++ {
		_, err := cb.Predict(context.Background(), vector())
		assert.ErrorIs(t, err, ErrInvalidPrediction)
	}
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerFailuresOutsideWindowReset(t *testing.T) {
	next := &mockPredictor{}
	next.On("Predict", mock.Anything, mock.Anything).Return(Prediction{}, errors.New("down"))

	cb, clock := newTestBreaker(next)
	_, _ = cb.Predict(context.Background(), vector())
	clock.advance(2 * time.Minute)
	_, _ = cb.Predict(context.Background(), vector())
	assert.Equal(t, CircuitClosed, cb.State())

	cb.Reset()
	assert.Equal(t, CircuitClosed, cb.State())
}
