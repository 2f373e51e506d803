package analytics

import (
	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/stats"
)

type venueTally struct {
	points, allowed, totals []float64
	over, under             int
}

func (t *venueTally) add(points, allowed int, r *models.LineOutcomeRecord) {
	t.points = append(t.points, float64(points))
	t.allowed = append(t.allowed, float64(allowed))
	t.totals = append(t.totals, r.OverUnder.InexactFloat64())
	if r.OverHit {
		t.over++
	}
	if r.UnderHit {
		t.under++
	}
}

func (t *venueTally) scoring() models.VenueScoring {
	games := len(t.points)
	vs := models.VenueScoring{
		Games:              games,
		PPG:                stats.RoundPtr(stats.Mean(t.points), stats.FeaturePlaces),
		OppPPG:             stats.RoundPtr(stats.Mean(t.allowed), stats.FeaturePlaces),
		AverageOverUnder:   stats.RoundPtr(stats.Mean(t.totals), stats.FeaturePlaces),
		OverHit:            t.over,
		OverHitPercentage:  pct(t.over, games),
		UnderHit:           t.under,
		UnderHitPercentage: pct(t.under, games),
	}
	combined := make([]float64, games)
	for i := range t.points {
		combined[i] = t.points[i] + t.allowed[i]
	}
	vs.CombinedPPG = stats.RoundPtr(stats.Mean(combined), stats.FeaturePlaces)
	return vs
}

// OverUnderSplits returns each team's scoring and over/under record at home
// and away. A team that only played at one venue has nil figures for the
// other.
func (a *Analyzer) OverUnderSplits(spec SortSpec) ([]models.OverUnderSplit, error) {
	type tally struct{ home, away venueTally }
	byTeam := make(map[string]*tally)
	get := func(team string) *tally {
		t, ok := byTeam[team]
		if !ok {
			t = &tally{}
			byTeam[team] = t
		}
		return t
	}

	for i := range a.records {
		r := &a.records[i]
		get(r.HomeTeam).home.add(r.HomeScore, r.AwayScore, r)
		get(r.AwayTeam).away.add(r.AwayScore, r.HomeScore, r)
	}

	out := make([]models.OverUnderSplit, 0, len(byTeam))
	for team, t := range byTeam {
		out = append(out, models.OverUnderSplit{
			Team: team,
			Home: t.home.scoring(),
			Away: t.away.scoring(),
		})
	}

	err := sortRows(out, spec, ReportOverUnder, models.OverUnderSplitColumns,
		func(o *models.OverUnderSplit) string { return o.Team },
		(*models.OverUnderSplit).Record)
	if err != nil {
		return nil, err
	}
	return out, nil
}
