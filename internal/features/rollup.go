package features

import (
	"fmt"
	"sort"

	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/stats"
)

// RollupOptions configures RollUp.
type RollupOptions struct {
	Window int
}

// RollupResult is the output of RollUp.
type RollupResult struct {
	Games     []models.GameFeatureRow
	TeamGames []models.TeamGameRow
	Gaps      []*models.DataGapError
	// Ledger holds every team's games and answers history queries for
	// games not yet played.
	Ledger *TeamLedger
}

type gameGroup struct {
	id       string
	first    *models.RollingFeatureRow
	home     []*models.RollingFeatureRow
	away     []*models.RollingFeatureRow
	mismatch int
}

// RollUp combines entity rows into one feature row per game. Each side's
// scoring features are sums over that side's entities, and each team's
// history is attached from its earlier games. Games with rows for only one
// side are still emitted, with the empty side left zero, and reported as gaps.
func RollUp(rows []models.RollingFeatureRow, opts RollupOptions) (RollupResult, error) {
	if opts.Window <= 0 {
		return RollupResult{}, fmt.Errorf("%w: %d", models.ErrInvalidWindow, opts.Window)
	}

	var res RollupResult
	groups := groupByGame(rows)

	games := make([]models.GameFeatureRow, 0, len(groups))
	for _, g := range groups {
		game := models.GameFeatureRow{
			Season:   g.first.Season,
			GameID:   g.id,
			GameDate: g.first.GameDate,
			HomeTeam: g.first.HomeTeam(),
			AwayTeam: g.first.AwayTeam(),
			Window:   opts.Window,
		}
		if g.mismatch > 0 {
			res.Gaps = append(res.Gaps, &models.DataGapError{
				GameID: g.id,
				Reason: fmt.Sprintf("%d entity rows disagree with matchup %s", g.mismatch, game.Key()),
			})
		}

		game.Home = sideFeatures(&game, models.SideHome, g.home)
		game.Away = sideFeatures(&game, models.SideAway, g.away)
		for _, sf := range []*models.SideFeatures{&game.Home, &game.Away} {
			if !sf.Present {
				res.Gaps = append(res.Gaps, &models.DataGapError{
					GameID: g.id,
					Team:   sf.Team,
					Reason: fmt.Sprintf("no %s entity rows", sf.Side),
				})
				continue
			}
			res.TeamGames = append(res.TeamGames, sf.TeamGameRow)
		}
		games = append(games, game)
	}

	sort.SliceStable(games, func(i, j int) bool { return games[i].GameDate.Before(games[j].GameDate) })

	ledger := NewTeamLedger(opts.Window)
	for i := range games {
		ledger.AddGame(&games[i])
	}
	for i := range games {
		g := &games[i]
		if g.Home.Present {
			g.Home.TeamHistory = ledger.History(g.HomeTeam, g.Season, g.GameDate, models.SideHome)
		}
		if g.Away.Present {
			g.Away.TeamHistory = ledger.History(g.AwayTeam, g.Season, g.GameDate, models.SideAway)
		}
	}

	res.Games = games
	res.Ledger = ledger
	return res, nil
}

type matchup struct {
	home, away string
}

func rowMatchup(r *models.RollingFeatureRow) matchup {
	return matchup{home: r.HomeTeam(), away: r.AwayTeam()}
}

// groupByGame buckets rows by game id in order of first appearance and routes
// each row to its side. The game's matchup is the (home, away) pair most rows
// agree on, the earliest seen winning a tie. Rows that disagree with it are
// counted and dropped.
func groupByGame(rows []models.RollingFeatureRow) []*gameGroup {
	byID := make(map[string]*gameGroup)
	members := make(map[string][]*models.RollingFeatureRow)
	var groups []*gameGroup
	for i := range rows {
		r := &rows[i]
		g, ok := byID[r.GameID]
		if !ok {
			g = &gameGroup{id: r.GameID}
			byID[r.GameID] = g
			groups = append(groups, g)
		}
		members[r.GameID] = append(members[r.GameID], r)
	}

	for _, g := range groups {
		rs := members[g.id]
		counts := make(map[matchup]int)
		var order []matchup
		for _, r := range rs {
			m := rowMatchup(r)
			if counts[m] == 0 {
				order = append(order, m)
			}
			counts[m]++
		}
		best := order[0]
		for _, m := range order[1:] {
			if counts[m] > counts[best] {
				best = m
			}
		}

		for _, r := range rs {
			if rowMatchup(r) != best {
				g.mismatch++
				continue
			}
			if g.first == nil {
				g.first = r
			}
			if r.IsHome {
				g.home = append(g.home, r)
			} else {
				g.away = append(g.away, r)
			}
		}
	}
	return groups
}

// sideFeatures sums the entity rows of one side into its TeamGameRow.
func sideFeatures(game *models.GameFeatureRow, side models.Side, rows []*models.RollingFeatureRow) models.SideFeatures {
	team, opp := game.HomeTeam, game.AwayTeam
	if side == models.SideAway {
		team, opp = opp, team
	}
	sf := models.SideFeatures{
		TeamGameRow: models.TeamGameRow{
			Season:   game.Season,
			GameID:   game.GameID,
			GameDate: game.GameDate,
			Team:     team,
			Opponent: opp,
			Side:     side,
		},
		Present: len(rows) > 0,
	}
	if !sf.Present {
		return sf
	}

	var lastN, lastNSD, season, seasonSD []*float64
	var heights []float64
	for _, r := range rows {
		sf.Points += r.Points
		lastN = append(lastN, r.PointStats.LastNMean)
		lastNSD = append(lastNSD, r.PointStats.LastNStdDev)
		season = append(season, r.PointStats.SeasonMean)
		seasonSD = append(seasonSD, r.PointStats.SeasonStdDev)
		if r.HeightInches != nil {
			heights = append(heights, *r.HeightInches)
		}
	}
	sf.Win = rows[0].Win
	sf.ActiveEntities = len(rows)
	sf.LastNPPG = stats.RoundPtr(stats.SumPtrs(lastN), stats.FeaturePlaces)
	sf.LastNPPGStdDev = stats.RoundPtr(stats.SumPtrs(lastNSD), stats.FeaturePlaces)
	sf.SeasonPPG = stats.RoundPtr(stats.SumPtrs(season), stats.FeaturePlaces)
	sf.SeasonStdDev = stats.RoundPtr(stats.SumPtrs(seasonSD), stats.FeaturePlaces)
	sf.HeightAvg = stats.RoundPtr(stats.Mean(heights), stats.RatePlaces)
	sf.HeightStdDev = stats.RoundPtr(stats.SampleStdDev(heights), stats.RatePlaces)
	return sf
}
