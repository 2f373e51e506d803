package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hoopslines/internal/models"
)

var gameDay = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// settled builds a record with a five point spread and a 200.5 total.
func settled(n int, home, away, fav string, homeScore, awayScore int) models.LineOutcomeRecord {
	r := models.LineOutcomeRecord{
		GameDate:  gameDay.AddDate(0, 0, n),
		HomeTeam:  home,
		AwayTeam:  away,
		Favorite:  fav,
		Line:      decimal.NewFromFloat(-5),
		OverUnder: decimal.RequireFromString("200.5"),
		HomeScore: homeScore,
		AwayScore: awayScore,
	}
	r.Settle()
	return r
}

func coverageFixture() []models.LineOutcomeRecord {
	var recs []models.LineOutcomeRecord
	n := 0
	add := func(count int, home, away, fav string, hs, as int) {
		for i := 0; i < count; i++ {
			recs = append(recs, settled(n, home, away, fav, hs, as))
			n++
		}
	}
	add(6, "BOS", "NYK", "BOS", 110, 100) // BOS covers
	add(4, "BOS", "NYK", "BOS", 100, 98)  // NYK covers
	add(3, "NYK", "BOS", "NYK", 100, 99)  // BOS covers as dog
	add(2, "NYK", "BOS", "NYK", 110, 100) // NYK covers
	return recs
}

func val(t *testing.T, p *float64) float64 {
	t.Helper()
	require.NotNil(t, p)
	return *p
}

func TestCoverageSummary(t *testing.T) {
	a := NewAnalyzer(coverageFixture())

	rows, err := a.CoverageSummary(SortSpec{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	bos := rows[0]
	assert.Equal(t, "BOS", bos.Team)
	assert.Equal(t, 6, bos.CoveredAsFavorite)
	assert.Equal(t, 10, bos.TotalTimesFavorite)
	assert.Equal(t, 3, bos.CoveredAsDog)
	assert.Equal(t, 5, bos.TotalTimesUnderdog)
	assert.Equal(t, 60.0, val(t, bos.FavHitPercentage))
	assert.Equal(t, 60.0, val(t, bos.DogHitPercentage))
	assert.Equal(t, 60.0, val(t, bos.OverallHitPercentage))

	nyk := rows[1]
	assert.Equal(t, "NYK", nyk.Team)
	assert.Equal(t, 40.0, val(t, nyk.FavHitPercentage))
	assert.Equal(t, 40.0, val(t, nyk.DogHitPercentage))
	assert.Equal(t, 40.0, val(t, nyk.OverallHitPercentage))
}

func TestCoverageSummaryEmptyRoleIsNil(t *testing.T) {
	a := NewAnalyzer([]models.LineOutcomeRecord{
		settled(0, "MIA", "LAL", "LAL", 100, 110),
	})

	rows, err := a.CoverageSummary(SortSpec{Metric: "fav_hit_percentage"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "LAL", rows[0].Team)
	assert.Equal(t, 100.0, val(t, rows[0].FavHitPercentage))
	assert.Nil(t, rows[0].DogHitPercentage)

	assert.Equal(t, "MIA", rows[1].Team)
	assert.Nil(t, rows[1].FavHitPercentage)
	assert.Equal(t, 0.0, val(t, rows[1].DogHitPercentage))
}

func TestAnalyzerSetsAsideUnattributableRecords(t *testing.T) {
	recs := coverageFixture()
	bad := settled(99, "BOS", "NYK", "LAL", 100, 90)
	recs = append(recs, bad)

	a := NewAnalyzer(recs)
	require.Len(t, a.Invalid(), 1)
	assert.Equal(t, "LAL", a.Invalid()[0].Favorite)
	assert.Len(t, a.Records(), 15)
	for _, r := range a.Records() {
		assert.NotEmpty(t, r.Underdog)
		assert.NotEqual(t, r.Favorite, r.Underdog)
	}

	rows, err := a.CoverageSummary(SortSpec{})
	require.NoError(t, err)
	for _, r := range rows {
		assert.NotEqual(t, "LAL", r.Team)
	}
}

func TestFavoriteSplitByVenue(t *testing.T) {
	a := NewAnalyzer([]models.LineOutcomeRecord{
		settled(0, "BOS", "NYK", "BOS", 110, 100), // home, covered
		settled(1, "NYK", "BOS", "BOS", 100, 102), // away, not covered
		settled(2, "NYK", "BOS", "BOS", 90, 110),  // away, covered
	})

	rows, err := a.FavoriteSplit(SortSpec{Metric: MetricTeam, Ascending: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	bos := rows[0]
	assert.Equal(t, models.RoleFavorite, bos.Role)
	assert.Equal(t, 1, bos.Home.Covered)
	assert.Equal(t, 1, bos.Home.Total)
	assert.Equal(t, 100.0, val(t, bos.Home.HitPercentage))
	assert.Equal(t, 1, bos.Away.Covered)
	assert.Equal(t, 2, bos.Away.Total)
	assert.Equal(t, 50.0, val(t, bos.Away.HitPercentage))
}

func TestUnderdogSplitEmptyVenueIsNil(t *testing.T) {
	a := NewAnalyzer([]models.LineOutcomeRecord{
		settled(0, "BOS", "NYK", "BOS", 101, 100),
	})

	rows, err := a.UnderdogSplit(SortSpec{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	nyk := rows[0]
	assert.Equal(t, "NYK", nyk.Team)
	assert.Equal(t, models.RoleUnderdog, nyk.Role)
	assert.Equal(t, 1, nyk.Away.Covered)
	assert.Equal(t, 100.0, val(t, nyk.Away.HitPercentage))
	assert.Equal(t, 0, nyk.Home.Total)
	assert.Nil(t, nyk.Home.HitPercentage)
}

func TestOverUnderSplits(t *testing.T) {
	a := NewAnalyzer([]models.LineOutcomeRecord{
		settled(0, "BOS", "NYK", "BOS", 110, 100),
		settled(1, "BOS", "NYK", "BOS", 95, 100),
	})

	rows, err := a.OverUnderSplits(SortSpec{Metric: MetricTeam, Ascending: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	bos := rows[0]
	assert.Equal(t, "BOS", bos.Team)
	assert.Equal(t, 2, bos.Home.Games)
	assert.Equal(t, 102.5, val(t, bos.Home.PPG))
	assert.Equal(t, 100.0, val(t, bos.Home.OppPPG))
	assert.Equal(t, 202.5, val(t, bos.Home.CombinedPPG))
	assert.Equal(t, 200.5, val(t, bos.Home.AverageOverUnder))
	assert.Equal(t, 1, bos.Home.OverHit)
	assert.Equal(t, 50.0, val(t, bos.Home.OverHitPercentage))
	assert.Equal(t, 1, bos.Home.UnderHit)
	assert.Equal(t, 50.0, val(t, bos.Home.UnderHitPercentage))
	assert.Equal(t, 0, bos.Away.Games)
	assert.Nil(t, bos.Away.PPG)
	assert.Nil(t, bos.Away.OverHitPercentage)

	nyk := rows[1]
	assert.Equal(t, "NYK", nyk.Team)
	assert.Equal(t, 100.0, val(t, nyk.Away.PPG))
	assert.Equal(t, 102.5, val(t, nyk.Away.OppPPG))
	assert.Nil(t, nyk.Home.PPG)
}

func TestSortOrdering(t *testing.T) {
	recs := append(coverageFixture(), settled(50, "MIA", "LAL", "LAL", 100, 110))
	a := NewAnalyzer(recs)

	teamsOf := func(rows []models.CoverageSummary) []string {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r.Team
		}
		return out
	}

	tests := []struct {
		name string
		spec SortSpec
		want []string
	}{
		{"default descending", SortSpec{}, []string{"LAL", "BOS", "NYK", "MIA"}},
		{"ascending", SortSpec{Metric: "overall_hit_percentage", Ascending: true}, []string{"MIA", "NYK", "BOS", "LAL"}},
		{"team ascending", SortSpec{Metric: MetricTeam, Ascending: true}, []string{"BOS", "LAL", "MIA", "NYK"}},
		{"team descending", SortSpec{Metric: MetricTeam}, []string{"NYK", "MIA", "LAL", "BOS"}},
		{"integer column", SortSpec{Metric: "total_times_underdog"}, []string{"NYK", "BOS", "MIA", "LAL"}},
		{"nil last ascending", SortSpec{Metric: "dog_hit_percentage", Ascending: true}, []string{"MIA", "NYK", "BOS", "LAL"}},
		{"nil last descending", SortSpec{Metric: "fav_hit_percentage"}, []string{"LAL", "BOS", "NYK", "MIA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := a.CoverageSummary(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, teamsOf(rows))
		})
	}
}

func TestSortTiesKeepTeamOrder(t *testing.T) {
	var recs []models.LineOutcomeRecord
	for i, home := range []string{"PHX", "ATL", "DEN"} {
		recs = append(recs, settled(i, home, fmt.Sprintf("X%d", i), home, 110, 100))
	}
	rows, err := NewAnalyzer(recs).FavoriteSplit(SortSpec{Metric: "hit_percentage_as_favorite_home"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ATL", rows[0].Team)
	assert.Equal(t, "DEN", rows[1].Team)
	assert.Equal(t, "PHX", rows[2].Team)

	rows, err = NewAnalyzer(recs).FavoriteSplit(SortSpec{Metric: "hit_percentage_as_favorite_home", Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"ATL", "DEN", "PHX"}, []string{rows[0].Team, rows[1].Team, rows[2].Team})
}

func TestParseSortMetric(t *testing.T) {
	m, err := ParseSortMetric(ReportCoverage, "")
	require.NoError(t, err)
	assert.Equal(t, SortMetric("overall_hit_percentage"), m)

	m, err = ParseSortMetric(ReportUnderdogSplit, "")
	require.NoError(t, err)
	assert.Equal(t, SortMetric("hit_percentage_as_underdog_away"), m)

	m, err = ParseSortMetric(ReportOverUnder, "under_hit_away_percentage")
	require.NoError(t, err)
	assert.Equal(t, SortMetric("under_hit_away_percentage"), m)

	_, err = ParseSortMetric(ReportFavoriteSplit, "hit_percentage_as_underdog_home")
	assert.ErrorIs(t, err, ErrUnknownSortMetric)

	_, err = NewAnalyzer(coverageFixture()).CoverageSummary(SortSpec{Metric: "ppg_home"})
	assert.ErrorIs(t, err, ErrUnknownSortMetric)
}

func TestParseReport(t *testing.T) {
	r, err := ParseReport("over_under_splits")
	require.NoError(t, err)
	assert.Equal(t, ReportOverUnder, r)

	_, err = ParseReport("standings")
	assert.Error(t, err)
}

func TestTableFlattensEveryReport(t *testing.T) {
	a := NewAnalyzer(coverageFixture())
	for _, report := range Reports {
		t.Run(string(report), func(t *testing.T) {
			tbl, err := a.Table(report, SortSpec{})
			require.NoError(t, err)
			assert.Equal(t, report, tbl.Report)
			assert.NotEmpty(t, tbl.Rows)
			for _, row := range tbl.Rows {
				assert.Len(t, row, len(tbl.Columns))
			}
			assert.Equal(t, "team", tbl.Columns[0])
		})
	}

	_, err := a.Table("standings", SortSpec{})
	assert.Error(t, err)
}
