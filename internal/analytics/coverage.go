package analytics

import (
	"github.com/yourusername/hoopslines/internal/models"
)

// CoverageSummary returns every team's record against the spread as favorite
// and as underdog. A team appears if it held either role at least once;
// percentages over an empty role are nil.
func (a *Analyzer) CoverageSummary(spec SortSpec) ([]models.CoverageSummary, error) {
	byTeam := make(map[string]*models.CoverageSummary)
	get := func(team string) *models.CoverageSummary {
		c, ok := byTeam[team]
		if !ok {
			c = &models.CoverageSummary{Team: team}
			byTeam[team] = c
		}
		return c
	}

	for i := range a.records {
		r := &a.records[i]
		fav := get(r.Favorite)
		fav.TotalTimesFavorite++
		if r.FavoriteCovered {
			fav.CoveredAsFavorite++
		}
		dog := get(r.Underdog)
		dog.TotalTimesUnderdog++
		if r.UnderdogCovered {
			dog.CoveredAsDog++
		}
	}

	out := make([]models.CoverageSummary, 0, len(byTeam))
	for _, c := range byTeam {
		c.FavHitPercentage = pct(c.CoveredAsFavorite, c.TotalTimesFavorite)
		c.DogHitPercentage = pct(c.CoveredAsDog, c.TotalTimesUnderdog)
		c.OverallHitPercentage = pct(c.CoveredAsFavorite+c.CoveredAsDog, c.TotalTimesFavorite+c.TotalTimesUnderdog)
		out = append(out, *c)
	}

	err := sortRows(out, spec, ReportCoverage, models.CoverageSummaryColumns,
		func(c *models.CoverageSummary) string { return c.Team },
		(*models.CoverageSummary).Record)
	if err != nil {
		return nil, err
	}
	return out, nil
}
