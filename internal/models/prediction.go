package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GamePrediction is the regressor output for one upcoming game.
type GamePrediction struct {
	GameDate    time.Time       `db:"game_date" json:"game_date"`
	HomeTeam    string          `db:"home_team" json:"home_team"`
	AwayTeam    string          `db:"away_team" json:"away_team"`
	PointTotal  float64         `db:"point_total" json:"point_total"`
	Margin      float64         `db:"margin" json:"margin"`
	OverUnder   decimal.Decimal `db:"over_under" json:"over_under"`
	Line        decimal.Decimal `db:"line" json:"line"`
	PredictedAt time.Time       `db:"predicted_at" json:"predicted_at"`
}

// GamePredictionColumns lists the stored prediction columns.
var GamePredictionColumns = []string{
	"game_date", "home_team", "away_team", "point_total", "margin",
	"over_under", "line", "predicted_at",
}

// Record returns the values in GamePredictionColumns order.
func (p *GamePrediction) Record() []any {
	return []any{
		p.GameDate, p.HomeTeam, p.AwayTeam, p.PointTotal, p.Margin,
		p.OverUnder, p.Line, p.PredictedAt,
	}
}

// PicksOver reports whether the predicted total clears the listed total.
func (p *GamePrediction) PicksOver() bool {
	return decimal.NewFromFloat(p.PointTotal).GreaterThan(p.OverUnder)
}

// UpcomingGame is a scheduled game with its current line.
type UpcomingGame struct {
	GameDate  time.Time       `json:"game_date"`
	HomeTeam  string          `json:"home_team" validate:"required,nefield=AwayTeam"`
	AwayTeam  string          `json:"away_team" validate:"required"`
	Favorite  string          `json:"favorite"`
	Line      decimal.Decimal `json:"line"`
	OverUnder decimal.Decimal `json:"over_under"`
}

// Key returns the join key of the game.
func (u *UpcomingGame) Key() GameKey {
	return NewGameKey(u.GameDate, u.HomeTeam, u.AwayTeam)
}
