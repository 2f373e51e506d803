// Package features builds rolling per-entity statistics and rolls them up
// into one feature row per game.
package features

import (
	"fmt"

	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/stats"
)

// Window computes trailing-n and season-to-date statistics for each position
// of one ordered partition. In historical mode position k sees values[:k]; in
// as-of mode it sees values[:k+1].
func Window(values []float64, n int, mode models.WindowMode) ([]models.RollingStats, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidWindow, n)
	}
	if _, err := models.ParseWindowMode(string(mode)); err != nil {
		return nil, err
	}

	out := make([]models.RollingStats, len(values))
	for k := range values {
		end := k
		if mode == models.WindowAsOf {
			end = k + 1
		}
		out[k] = Summarize(values[:end], n)
	}
	return out, nil
}

// Summarize returns the statistics of an already-selected history: the whole
// slice for the season figures and its last n entries for the trailing ones.
func Summarize(history []float64, n int) models.RollingStats {
	start := len(history) - n
	if start < 0 {
		start = 0
	}
	trailing := history[start:]
	return models.RollingStats{
		LastNMean:    stats.RoundPtr(stats.Mean(trailing), stats.FeaturePlaces),
		LastNStdDev:  stats.RoundPtr(stats.SampleStdDev(trailing), stats.FeaturePlaces),
		SeasonMean:   stats.RoundPtr(stats.Mean(history), stats.FeaturePlaces),
		SeasonStdDev: stats.RoundPtr(stats.SampleStdDev(history), stats.FeaturePlaces),
	}
}
