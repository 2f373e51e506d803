package features

import (
	"sort"
	"time"

	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/stats"
)

// teamGame is one team's appearance in one game. Points or Allowed are nil
// when the corresponding side had no entity rows.
type teamGame struct {
	Season  int
	Date    time.Time
	Side    models.Side
	Win     bool
	Points  *float64
	Allowed *float64
}

// TeamLedger indexes every team's games by date so that a team's history can
// be read as of any date.
type TeamLedger struct {
	window int
	games  map[string][]teamGame
	sorted bool
}

// NewTeamLedger returns an empty ledger using window for trailing figures.
func NewTeamLedger(window int) *TeamLedger {
	return &TeamLedger{window: window, games: make(map[string][]teamGame)}
}

// Add records a team's appearance in a game.
func (l *TeamLedger) Add(team string, g teamGame) {
	l.games[team] = append(l.games[team], g)
	l.sorted = false
}

// AddGame records both teams of a rolled-up game.
func (l *TeamLedger) AddGame(g *models.GameFeatureRow) {
	home, away := sidePoints(&g.Home), sidePoints(&g.Away)
	homeWin := g.Home.Win
	if !g.Home.Present {
		homeWin = g.Away.Present && !g.Away.Win
	}
	l.Add(g.HomeTeam, teamGame{Season: g.Season, Date: g.GameDate, Side: models.SideHome, Win: homeWin, Points: home, Allowed: away})
	l.Add(g.AwayTeam, teamGame{Season: g.Season, Date: g.GameDate, Side: models.SideAway, Win: !homeWin, Points: away, Allowed: home})
}

func sidePoints(sf *models.SideFeatures) *float64 {
	if !sf.Present {
		return nil
	}
	p := float64(sf.Points)
	return &p
}

func (l *TeamLedger) ensureSorted() {
	if l.sorted {
		return
	}
	for _, games := range l.games {
		sort.SliceStable(games, func(i, j int) bool { return games[i].Date.Before(games[j].Date) })
	}
	l.sorted = true
}

// History returns the record of team in season going into a game on date at
// the given venue. Only games strictly before date count.
func (l *TeamLedger) History(team string, season int, date time.Time, side models.Side) models.TeamHistory {
	l.ensureSorted()
	games := l.games[team]
	day := civilDay(date)
	i := sort.Search(len(games), func(i int) bool { return !civilDay(games[i].Date).Before(day) })

	var h models.TeamHistory
	if i > 0 {
		h.BackToBack = daysBetween(games[i-1].Date, date) == 1
	}

	var allowed, venue []float64
	start := i
	for start > 0 && games[start-1].Season == season {
		start--
	}
	for _, g := range games[start:i] {
		if g.Win {
			h.Wins++
		} else {
			h.Losses++
		}
		if g.Allowed != nil {
			allowed = append(allowed, *g.Allowed)
		}
		if g.Side == side && g.Points != nil {
			venue = append(venue, *g.Points)
		}
	}

	h.GamesPlayed = h.Wins + h.Losses
	h.WinPct = stats.RoundPtr(stats.SafeRatio(float64(h.Wins), float64(h.GamesPlayed)), stats.RatePlaces)

	opp := Summarize(allowed, l.window)
	h.OppPPG, h.OppPPGStdDev = opp.SeasonMean, opp.SeasonStdDev
	h.OppLastNPPG, h.OppLastNPPGStdDev = opp.LastNMean, opp.LastNStdDev

	ven := Summarize(venue, l.window)
	h.VenuePPG, h.VenueLastNPPG = ven.SeasonMean, ven.LastNMean
	return h
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	return int(civilDay(b).Sub(civilDay(a)).Hours() / 24)
}
