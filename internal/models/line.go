package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineOutcomeRecord is the closing betting line of a game and how it settled.
type LineOutcomeRecord struct {
	GameDate        time.Time       `db:"game_date" json:"game_date" validate:"required"`
	HomeTeam        string          `db:"home_team" json:"home_team" validate:"required,nefield=AwayTeam"`
	AwayTeam        string          `db:"away_team" json:"away_team" validate:"required"`
	Favorite        string          `db:"favorite" json:"favorite" validate:"required"`
	Underdog        string          `db:"underdog" json:"underdog"`
	Line            decimal.Decimal `db:"line" json:"line"`
	OverUnder       decimal.Decimal `db:"over_under" json:"over_under"`
	TotalPoints     int             `db:"total_points" json:"total_points" validate:"gte=0"`
	HomeScore       int             `db:"home_score" json:"home_score" validate:"gte=0"`
	AwayScore       int             `db:"away_score" json:"away_score" validate:"gte=0"`
	FavoriteCovered bool            `db:"favorite_covered" json:"favorite_covered"`
	UnderdogCovered bool            `db:"underdog_covered" json:"underdog_covered"`
	OverHit         bool            `db:"over_hit" json:"over_hit"`
	UnderHit        bool            `db:"under_hit" json:"under_hit"`
}

// LineOutcomeColumns lists the stored columns of a line record, in order.
var LineOutcomeColumns = []string{
	"game_date", "home_team", "away_team", "favorite", "underdog", "line",
	"over_under", "total_points", "home_score", "away_score",
	"favorite_covered", "underdog_covered", "over_hit", "under_hit",
}

// Key returns the join key of the record.
func (l *LineOutcomeRecord) Key() GameKey {
	return NewGameKey(l.GameDate, l.HomeTeam, l.AwayTeam)
}

// Record returns the stored values in LineOutcomeColumns order.
func (l *LineOutcomeRecord) Record() []any {
	return []any{
		l.GameDate, l.HomeTeam, l.AwayTeam, l.Favorite, l.Underdog, l.Line,
		l.OverUnder, l.TotalPoints, l.HomeScore, l.AwayScore,
		l.FavoriteCovered, l.UnderdogCovered, l.OverHit, l.UnderHit,
	}
}

// DeriveUnderdog returns the team in the game that is not the favorite. It
// reports false when the favorite is neither the home nor the away team.
func (l *LineOutcomeRecord) DeriveUnderdog() (string, bool) {
	switch l.Favorite {
	case l.HomeTeam:
		return l.AwayTeam, true
	case l.AwayTeam:
		return l.HomeTeam, true
	default:
		return "", false
	}
}

// FavoriteIsHome reports whether the favorite played at home.
func (l *LineOutcomeRecord) FavoriteIsHome() bool {
	return l.Favorite == l.HomeTeam
}

// Settle derives the total and the cover and over/under flags from the final
// scores. The spread is taken by magnitude regardless of the sign convention
// of the provider. A result landing exactly on the number sets neither flag.
func (l *LineOutcomeRecord) Settle() {
	l.TotalPoints = l.HomeScore + l.AwayScore

	favScore, dogScore := l.HomeScore, l.AwayScore
	if !l.FavoriteIsHome() {
		favScore, dogScore = dogScore, favScore
	}
	margin := decimal.NewFromInt(int64(favScore - dogScore))
	spread := l.Line.Abs()
	l.FavoriteCovered = margin.GreaterThan(spread)
	l.UnderdogCovered = margin.LessThan(spread)

	total := decimal.NewFromInt(int64(l.TotalPoints))
	l.OverHit = total.GreaterThan(l.OverUnder)
	l.UnderHit = total.LessThan(l.OverUnder)
}
