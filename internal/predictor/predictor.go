// Package predictor adapts feature vectors of upcoming games to an external
// regressor that returns a point total and a home margin.
package predictor

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/config"
	"github.com/yourusername/hoopslines/internal/models"
)

// Target names a regression model.
type Target string

const (
	// TargetTotal predicts GAME_TOTAL_PTS and reads OVER_UNDER.
	TargetTotal Target = "ou"
	// TargetMargin predicts DIFF and reads LINE.
	TargetMargin Target = "lines"
)

// Extra inputs appended to the feature columns.
const (
	ColumnOverUnder = "OVER_UNDER"
	ColumnLine      = "LINE"
)

// FeatureVector is the regressor input for one game. Values are keyed by
// column name; nil marks a missing feature.
type FeatureVector struct {
	Game   models.GameKey
	Values map[string]*float64
}

// Prediction is the regressor output for one game.
type Prediction struct {
	PointTotal float64 `json:"point_total"`
	Margin     float64 `json:"margin"`
}

// Predictor calls an external regressor.
type Predictor interface {
	Predict(ctx context.Context, v FeatureVector) (Prediction, error)
	Close() error
}

// NewFeatureVector builds the regressor input of an upcoming game from its
// feature row and current line.
func NewFeatureVector(row *models.GameFeatureRow, game *models.UpcomingGame) FeatureVector {
	values := row.Features()
	values[ColumnOverUnder] = models.Float64Ptr(game.OverUnder.InexactFloat64())
	values[ColumnLine] = models.Float64Ptr(game.Line.InexactFloat64())
	return FeatureVector{Game: game.Key(), Values: values}
}

// Columns returns the vector's column names in sorted order.
func (v FeatureVector) Columns() []string {
	cols := make([]string, 0, len(v.Values))
	for k := range v.Values {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Payload returns the values as plain JSON-compatible data.
func (v FeatureVector) Payload() map[string]any {
	out := make(map[string]any, len(v.Values))
	for k, p := range v.Values {
		if p == nil {
			out[k] = nil
			continue
		}
		out[k] = *p
	}
	return out
}

// Fingerprint identifies the vector by game and values.
func (v FeatureVector) Fingerprint() string {
	var b strings.Builder
	b.WriteString(v.Game.String())
	for _, col := range v.Columns() {
		b.WriteByte('|')
		b.WriteString(col)
		b.WriteByte('=')
		if p := v.Values[col]; p != nil {
			b.WriteString(strconv.FormatFloat(*p, 'g', -1, 64))
		} else {
			b.WriteString("null")
		}
	}
	return b.String()
}

// ToGamePrediction stamps a prediction with the game it was made for.
func ToGamePrediction(game *models.UpcomingGame, p Prediction, at time.Time) models.GamePrediction {
	return models.GamePrediction{
		GameDate:    game.GameDate,
		HomeTeam:    game.HomeTeam,
		AwayTeam:    game.AwayTeam,
		PointTotal:  p.PointTotal,
		Margin:      p.Margin,
		OverUnder:   game.OverUnder,
		Line:        game.Line,
		PredictedAt: at,
	}
}

// New returns the configured predictor, behind a circuit breaker when a
// failure threshold is set and a cache when a TTL is set.
func New(cfg config.PredictorConfig, logger *logrus.Logger) (Predictor, error) {
	if !cfg.Enabled {
		return nil, ErrPredictorDisabled
	}

	var (
		p   Predictor
		err error
	)
	switch cfg.Transport {
	case "http":
		p = NewHTTPPredictor(cfg, logger)
	case "grpc", "":
		p, err = NewGRPCPredictor(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown predictor transport %q", cfg.Transport)
	}
	if err != nil {
		return nil, err
	}

	if cfg.BreakerFailures > 0 {
		p = NewCircuitBreaker(p, CircuitBreakerConfig{
			MaxFailureCount:   cfg.BreakerFailures,
			FailureTimeWindow: time.Duration(cfg.BreakerWindowSeconds) * time.Second,
			CooldownPeriod:    time.Duration(cfg.BreakerCooldownSeconds) * time.Second,
		}, logger)
	}
	if cfg.CacheTTLSeconds > 0 {
		p = NewCachedPredictor(p, time.Duration(cfg.CacheTTLSeconds)*time.Second, logger)
	}
	return p, nil
}

func timeout(cfg config.PredictorConfig) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// Edge is the margin and total differences against the listed numbers.
type Edge struct {
	// Spread is the predicted home margin plus the listed home line.
	Spread decimal.Decimal
	// Total is the predicted total minus the listed total.
	Total decimal.Decimal
}

// EdgeOf compares a prediction with the listed line of a game. Line is the
// favorite's spread, negative, so the home line is Line when the home team
// is favored and -Line otherwise.
func EdgeOf(game *models.UpcomingGame, p Prediction) Edge {
	homeLine := game.Line
	if game.Favorite != "" && game.Favorite != game.HomeTeam {
		homeLine = homeLine.Neg()
	}
	return Edge{
		Spread: decimal.NewFromFloat(p.Margin).Add(homeLine).Round(2),
		Total:  decimal.NewFromFloat(p.PointTotal).Sub(game.OverUnder).Round(2),
	}
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheck reports whether p is serving. Predictors without a health
// endpoint are assumed healthy.
func HealthCheck(ctx context.Context, p Predictor) error {
	if hc, ok := p.(healthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
