// Package logger provides predictor-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for regressor calls.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "predictor"),
	}
}

// LogPredictionRequest logs a completed prediction request.
func (pl *PredictionLogger) LogPredictionRequest(target string, featuresCount int, cacheHit bool, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"target":         target,
		"features_count": featuresCount,
		"cache_hit":      cacheHit,
		"latency_ms":     latencyMs,
	}).Info("Prediction request completed")
}

// LogPrediction logs the model outputs for one upcoming game.
func (pl *PredictionLogger) LogPrediction(gameDate, homeTeam, awayTeam string, pointTotal, margin float64) {
	pl.WithFields(logrus.Fields{
		"game_date":   gameDate,
		"home_team":   homeTeam,
		"away_team":   awayTeam,
		"point_total": pointTotal,
		"margin":      margin,
	}).Info("Game prediction")
}

// LogPredictionError logs a failed prediction call.
func (pl *PredictionLogger) LogPredictionError(target string, err error) {
	pl.WithFields(logrus.Fields{
		"target": target,
	}).WithError(err).Error("Prediction request failed")
}
