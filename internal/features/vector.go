package features

import (
	"github.com/yourusername/hoopslines/internal/models"
)

// BuildFeatureVector assembles the feature row of an upcoming game from the
// latest as-of rows of each side's active entities and both teams' history.
// The game's own score columns stay zero.
func BuildFeatureVector(game models.UpcomingGame, season, window int, home, away []models.RollingFeatureRow, ledger *TeamLedger) models.GameFeatureRow {
	row := models.GameFeatureRow{
		Season:   season,
		GameDate: game.GameDate,
		HomeTeam: game.HomeTeam,
		AwayTeam: game.AwayTeam,
		Window:   window,
	}
	row.Home = upcomingSide(&row, models.SideHome, home)
	row.Away = upcomingSide(&row, models.SideAway, away)
	if ledger != nil {
		row.Home.TeamHistory = ledger.History(game.HomeTeam, season, game.GameDate, models.SideHome)
		row.Away.TeamHistory = ledger.History(game.AwayTeam, season, game.GameDate, models.SideAway)
	}
	return row
}

func upcomingSide(row *models.GameFeatureRow, side models.Side, rows []models.RollingFeatureRow) models.SideFeatures {
	ptrs := make([]*models.RollingFeatureRow, len(rows))
	for i := range rows {
		ptrs[i] = &rows[i]
	}
	sf := sideFeatures(row, side, ptrs)
	sf.Points = 0
	sf.Win = false
	return sf
}
