package predictor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed passes every call through
	CircuitClosed CircuitState = iota
	// CircuitHalfOpen lets one trial call through after the cooldown
	CircuitHalfOpen
	// CircuitOpen rejects calls until the cooldown ends
	CircuitOpen
)

// String returns string representation of circuit state
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	case CircuitOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreakerConfig defines circuit breaker thresholds
type CircuitBreakerConfig struct {
	MaxFailureCount   int
	FailureTimeWindow time.Duration
	CooldownPeriod    time.Duration
}

// CircuitBreaker stops calling the regressor after repeated failures and
// retries it once the cooldown has passed.
type CircuitBreaker struct {
	next            Predictor
	config          CircuitBreakerConfig
	state           CircuitState
	failureCount    int
	lastFailureTime time.Time
	openedAt        time.Time
	trial           bool
	mu              sync.Mutex
	logger          *logrus.Logger
	now             func() time.Time
}

// NewCircuitBreaker wraps next with a circuit breaker.
func NewCircuitBreaker(next Predictor, config CircuitBreakerConfig, logger *logrus.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		next:   next,
		config: config,
		state:  CircuitClosed,
		logger: logger,
		now:    time.Now,
	}
}

// Predict fails fast with ErrPredictorUnavailable while the circuit is open.
func (cb *CircuitBreaker) Predict(ctx context.Context, v FeatureVector) (Prediction, error) {
	if err := cb.allow(); err != nil {
		return Prediction{}, err
	}
	p, err := cb.next.Predict(ctx, v)
	switch {
	case err == nil:
		cb.recordSuccess()
	case errors.Is(err, ErrInvalidPrediction), ctx.Err() != nil:
		// the service answered or the caller gave up
		cb.release()
	default:
		cb.recordFailure(err)
	}
	return p, err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && cb.now().Sub(cb.openedAt) >= cb.config.CooldownPeriod {
		cb.state = CircuitHalfOpen
		cb.logger.Info("Circuit breaker entering half-open state after cooldown")
	}
	switch cb.state {
	case CircuitOpen:
		return fmt.Errorf("%w: circuit open", ErrPredictorUnavailable)
	case CircuitHalfOpen:
		if cb.trial {
			return fmt.Errorf("%w: circuit half-open", ErrPredictorUnavailable)
		}
		cb.trial = true
	}
	return nil
}

func (cb *CircuitBreaker) release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.trial = false
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitClosed {
		cb.logger.WithField("old_state", cb.state.String()).Info("Circuit breaker closed")
	}
	cb.state = CircuitClosed
	cb.failureCount = 0
	cb.trial = false
}

// recordFailure increments the failure count and opens the circuit at the
// threshold. A failed half-open trial reopens it immediately.
func (cb *CircuitBreaker) recordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	if now.Sub(cb.lastFailureTime) > cb.config.FailureTimeWindow {
		cb.failureCount = 0
	}
	cb.failureCount++
	cb.lastFailureTime = now
	cb.trial = false

	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.config.MaxFailureCount {
		cb.open(fmt.Sprintf("%d failures within %v", cb.failureCount, cb.config.FailureTimeWindow), err)
	}
}

func (cb *CircuitBreaker) open(reason string, err error) {
	old := cb.state
	cb.state = CircuitOpen
	cb.openedAt = cb.now()
	cb.logger.WithFields(logrus.Fields{
		"old_state":       old.String(),
		"reason":          reason,
		"error":           err.Error(),
		"cooldown_period": cb.config.CooldownPeriod,
	}).Error("Circuit breaker opened")
}

// State returns current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the circuit
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = CircuitClosed
	cb.failureCount = 0
	cb.trial = false
}

// HealthCheck reports an open circuit, then checks the wrapped predictor.
func (cb *CircuitBreaker) HealthCheck(ctx context.Context) error {
	if cb.State() == CircuitOpen {
		return fmt.Errorf("%w: circuit open", ErrPredictorUnavailable)
	}
	return HealthCheck(ctx, cb.next)
}

// Close closes the wrapped predictor.
func (cb *CircuitBreaker) Close() error {
	return cb.next.Close()
}
