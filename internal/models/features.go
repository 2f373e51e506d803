package models

import (
	"fmt"
	"time"
)

// WindowMode selects whether a rolling window includes the current event.
type WindowMode string

const (
	// WindowHistorical uses only events strictly before the current one.
	WindowHistorical WindowMode = "historical"
	// WindowAsOf includes the current event.
	WindowAsOf WindowMode = "as_of"
)

// ParseWindowMode validates a window mode name.
func ParseWindowMode(s string) (WindowMode, error) {
	switch WindowMode(s) {
	case WindowHistorical, WindowAsOf:
		return WindowMode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWindowMode, s)
	}
}

// RollingStats holds trailing and season-to-date statistics of one series.
// Means are nil with no observations, standard deviations with fewer than two.
type RollingStats struct {
	LastNMean    *float64 `json:"last_n_mean"`
	LastNStdDev  *float64 `json:"last_n_stddev"`
	SeasonMean   *float64 `json:"season_mean"`
	SeasonStdDev *float64 `json:"season_stddev"`
}

// RollingFeatureRow is a game event annotated with rolling scoring statistics.
type RollingFeatureRow struct {
	GameEvent
	PointStats RollingStats `json:"point_stats"`
	Window     int          `json:"window"`
	Mode       WindowMode   `json:"mode"`
}

// RollingFeatureColumns returns the stored column names for a window size.
func RollingFeatureColumns(window int) []string {
	cols := append([]string{}, GameEventColumns...)
	return append(cols,
		fmt.Sprintf("last_%d_ppg", window),
		fmt.Sprintf("last_%d_ppg_stddev", window),
		"season_ppg",
		"season_points_stddev",
		"window_mode",
	)
}

// Record returns the stored values in RollingFeatureColumns order.
func (r *RollingFeatureRow) Record() []any {
	return append(r.GameEvent.Record(),
		r.PointStats.LastNMean, r.PointStats.LastNStdDev,
		r.PointStats.SeasonMean, r.PointStats.SeasonStdDev,
		string(r.Mode),
	)
}

// Side is the venue of a team within a game.
type Side string

const (
	SideHome Side = "HOME"
	SideAway Side = "AWAY"
)

// TeamGameRow aggregates every entity of one team in one game.
type TeamGameRow struct {
	Season   int       `json:"season"`
	GameID   string    `json:"game_id"`
	GameDate time.Time `json:"game_date"`
	Team     string    `json:"team"`
	Opponent string    `json:"opponent"`
	Side     Side      `json:"side"`
	Win      bool      `json:"win"`
	// Points is the sum of entity points; it is the team score.
	Points         int      `json:"points"`
	ActiveEntities int      `json:"active_entities"`
	LastNPPG       *float64 `json:"last_n_ppg"`
	LastNPPGStdDev *float64 `json:"last_n_ppg_stddev"`
	SeasonPPG      *float64 `json:"season_ppg"`
	SeasonStdDev   *float64 `json:"season_stddev"`
	HeightAvg      *float64 `json:"height_avg"`
	HeightStdDev   *float64 `json:"height_stddev"`
}

// TeamHistory is a team's record going into a game, built only from its
// earlier games.
type TeamHistory struct {
	GamesPlayed int      `json:"games_played"`
	Wins        int      `json:"wins"`
	Losses      int      `json:"losses"`
	WinPct      *float64 `json:"win_pct"`
	BackToBack  bool     `json:"back_to_back"`

	OppPPG            *float64 `json:"opp_ppg"`
	OppPPGStdDev      *float64 `json:"opp_ppg_stddev"`
	OppLastNPPG       *float64 `json:"opp_last_n_ppg"`
	OppLastNPPGStdDev *float64 `json:"opp_last_n_ppg_stddev"`

	// VenuePPG is the team's scoring in earlier games at the same venue type.
	VenuePPG      *float64 `json:"venue_ppg"`
	VenueLastNPPG *float64 `json:"venue_last_n_ppg"`
}

// SideFeatures is one side's block of a game feature row. Present is false
// when no entity rows were found for the side; the block is then left zero.
type SideFeatures struct {
	TeamGameRow
	TeamHistory
	Present bool `json:"present"`
}

// GameFeatureRow is the home and away feature blocks of one game.
type GameFeatureRow struct {
	Season   int          `json:"season"`
	GameID   string       `json:"game_id"`
	GameDate time.Time    `json:"game_date"`
	HomeTeam string       `json:"home_team"`
	AwayTeam string       `json:"away_team"`
	Window   int          `json:"window"`
	Home     SideFeatures `json:"home"`
	Away     SideFeatures `json:"away"`
}

// Key returns the join key of the game.
func (g *GameFeatureRow) Key() GameKey {
	return NewGameKey(g.GameDate, g.HomeTeam, g.AwayTeam)
}

// GameFeatureColumns returns the feature matrix column names for a window size.
func GameFeatureColumns(window int) []string {
	cols := []string{"SEASON", "GAME_ID", "GAME_DATE", "HOME_TEAM", "AWAY_TEAM", "HOME_PTS", "AWAY_PTS"}
	return append(cols, FeatureColumns(window)...)
}

// FeatureColumns returns only the predictor columns for a window size. The
// game's own scores are excluded.
func FeatureColumns(window int) []string {
	n := window
	var cols []string
	for _, side := range []Side{SideHome, SideAway} {
		s := string(side)
		cols = append(cols,
			fmt.Sprintf("%s_ACTIVE_PLAYERS_LAST_%d_PPG", s, n),
			fmt.Sprintf("%s_ACTIVE_PLAYERS_LAST_%d_PPG_STDDEV", s, n),
			fmt.Sprintf("%s_ACTIVE_PLAYERS_SEASON_PPG", s),
			fmt.Sprintf("%s_ACTIVE_PLAYERS_SEASON_POINTS_STDDEV", s),
			fmt.Sprintf("%s_TEAM_OPP_PPG", s),
			fmt.Sprintf("%s_TEAM_OPP_PPG_STDDEV", s),
			fmt.Sprintf("%s_TEAM_OPP_LAST_%d_PPG", s, n),
			fmt.Sprintf("%s_TEAM_OPP_LAST_%d_PPG_STDDEV", s, n),
		)
		if side == SideHome {
			cols = append(cols,
				"HOME_TEAM_PPG_AT_HOME",
				fmt.Sprintf("HOME_TEAM_LAST_%d_PPG_AT_HOME", n),
			)
		} else {
			cols = append(cols,
				"AWAY_TEAM_PPG_AWAY",
				fmt.Sprintf("AWAY_TEAM_LAST_%d_PPG_AWAY", n),
			)
		}
		cols = append(cols,
			fmt.Sprintf("%s_TEAM_2ND_OF_B2B", s),
			fmt.Sprintf("%s_AVG_HEIGHT_INCHES", s),
			fmt.Sprintf("%s_STDDEV_HEIGHT_INCHES", s),
			fmt.Sprintf("%s_TEAM_GAMES_PLAYED", s),
			fmt.Sprintf("%s_TEAM_WIN_PCT", s),
		)
	}
	return cols
}

// Record returns the values in GameFeatureColumns order.
func (g *GameFeatureRow) Record() []any {
	rec := []any{g.Season, g.GameID, g.GameDate, g.HomeTeam, g.AwayTeam, g.Home.Points, g.Away.Points}
	return append(rec, g.featureValues()...)
}

// Features returns the predictor values keyed by FeatureColumns name.
func (g *GameFeatureRow) Features() map[string]*float64 {
	names := FeatureColumns(g.Window)
	values := g.featureValues()
	out := make(map[string]*float64, len(names))
	for i, name := range names {
		switch v := values[i].(type) {
		case *float64:
			out[name] = v
		case int:
			out[name] = Float64Ptr(float64(v))
		}
	}
	return out
}

func (g *GameFeatureRow) featureValues() []any {
	var vals []any
	for _, sf := range []*SideFeatures{&g.Home, &g.Away} {
		vals = append(vals,
			sf.LastNPPG, sf.LastNPPGStdDev,
			sf.SeasonPPG, sf.SeasonStdDev,
			sf.OppPPG, sf.OppPPGStdDev,
			sf.OppLastNPPG, sf.OppLastNPPGStdDev,
			sf.VenuePPG, sf.VenueLastNPPG,
			boolToInt(sf.BackToBack),
			sf.HeightAvg, sf.HeightStdDev,
			sf.GamesPlayed, sf.WinPct,
		)
	}
	return vals
}

// TrainingRow is a game feature row joined to its betting line and outcome.
type TrainingRow struct {
	GameFeatureRow
	Line LineOutcomeRecord `json:"line"`
}

// Diff is the home margin of victory.
func (t *TrainingRow) Diff() int {
	return t.Line.HomeScore - t.Line.AwayScore
}

// TrainingColumns returns the training table column names for a window size.
func TrainingColumns(window int) []string {
	cols := GameFeatureColumns(window)
	return append(cols,
		"FAVORITE", "HOME_SCORE", "AWAY_SCORE", "LINE", "FAV_HIT", "DIFF",
		"OVER_UNDER", "GAME_TOTAL_PTS", "OVER_HIT",
	)
}

// Record returns the values in TrainingColumns order.
func (t *TrainingRow) Record() []any {
	l := &t.Line
	return append(t.GameFeatureRow.Record(),
		l.Favorite, l.HomeScore, l.AwayScore, l.Line.InexactFloat64(),
		boolToInt(l.FavoriteCovered), t.Diff(),
		l.OverUnder.InexactFloat64(), l.TotalPoints, boolToInt(l.OverHit),
	)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
