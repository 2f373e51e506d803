// Package logger provides feature pipeline logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for feature and analytics runs.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// WithRun scopes the logger to a single run.
func (pl *PipelineLogger) WithRun(runID string) *PipelineLogger {
	return &PipelineLogger{Entry: pl.WithField("run_id", runID)}
}

// LogStageCompleted logs the end of one pipeline stage.
func (pl *PipelineLogger) LogStageCompleted(stage string, rowsIn, rowsOut int, elapsed time.Duration) {
	pl.WithFields(logrus.Fields{
		"stage":      stage,
		"rows_in":    rowsIn,
		"rows_out":   rowsOut,
		"elapsed_ms": elapsed.Milliseconds(),
	}).Info("Pipeline stage completed")
}

// LogDataGap logs a non-fatal missing-data condition.
func (pl *PipelineLogger) LogDataGap(gameID, team, reason string) {
	pl.WithFields(logrus.Fields{
		"game_id": gameID,
		"team":    team,
		"reason":  reason,
	}).Warn("Data gap")
}

// LogJoinMismatch logs a game or line record that found no partner.
func (pl *PipelineLogger) LogJoinMismatch(side, date, homeTeam, awayTeam string) {
	pl.WithFields(logrus.Fields{
		"side":      side,
		"date":      date,
		"home_team": homeTeam,
		"away_team": awayTeam,
	}).Debug("Join mismatch")
}

// LogRunSummary logs the counters of a completed run.
func (pl *PipelineLogger) LogRunSummary(processed, skippedGap, skippedJoin, fetchFailures int, elapsed time.Duration) {
	entry := pl.WithFields(logrus.Fields{
		"processed":      processed,
		"skipped_gap":    skippedGap,
		"skipped_join":   skippedJoin,
		"fetch_failures": fetchFailures,
		"duration_ms":    elapsed.Milliseconds(),
	})
	if skippedGap > 0 || skippedJoin > 0 || fetchFailures > 0 {
		entry.Warn("Run completed with skipped records")
		return
	}
	entry.Info("Run completed")
}
