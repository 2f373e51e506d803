package predictor

import (
	"context"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/metrics"
)

// CachedPredictor memoizes predictions by vector fingerprint.
type CachedPredictor struct {
	next   Predictor
	cache  *cache.Cache
	logger *logrus.Logger
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedPredictor wraps next with a cache of the given TTL.
func NewCachedPredictor(next Predictor, ttl time.Duration, logger *logrus.Logger) *CachedPredictor {
	return &CachedPredictor{
		next:   next,
		cache:  cache.New(ttl, ttl*2),
		logger: logger,
	}
}

// Predict serves repeated vectors from the cache. Errors are not cached.
func (c *CachedPredictor) Predict(ctx context.Context, v FeatureVector) (Prediction, error) {
	key := v.Fingerprint()
	if cached, found := c.cache.Get(key); found {
		if p, ok := cached.(Prediction); ok {
			c.hits.Add(1)
			metrics.RecordPredictionCacheHit()
			c.logger.WithField("game", v.Game.String()).Debug("Cache hit for prediction")
			return p, nil
		}
	}

	c.misses.Add(1)
	p, err := c.next.Predict(ctx, v)
	if err != nil {
		return Prediction{}, err
	}
	c.cache.SetDefault(key, p)
	return p, nil
}

// Stats returns cache statistics
func (c *CachedPredictor) Stats() (hits, misses uint64, ratio float64) {
	hits, misses = c.hits.Load(), c.misses.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return hits, misses, ratio
}

// Clear flushes the entire cache
func (c *CachedPredictor) Clear() {
	c.cache.Flush()
}

// Close closes the wrapped predictor.
func (c *CachedPredictor) Close() error {
	return c.next.Close()
}

// HealthCheck checks the wrapped predictor when it supports health checks.
func (c *CachedPredictor) HealthCheck(ctx context.Context) error {
	return HealthCheck(ctx, c.next)
}
