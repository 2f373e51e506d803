package features

import (
	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/teams"
)

// JoinOptions configures Join.
type JoinOptions struct {
	// Canonicalizer rewrites team codes on both inputs before matching.
	// Nil matches raw codes.
	Canonicalizer *teams.Canonicalizer
}

// JoinReport accounts for every input row of a join.
type JoinReport struct {
	Matched           int
	UnmatchedFeatures int
	UnmatchedLines    int
	Mismatches        []*models.JoinMismatchError
}

// Join pairs game feature rows with line records on (calendar date, home,
// away). Each line record is used at most once, so the output never exceeds
// the smaller input. Unpaired rows on either side are dropped and reported.
func Join(games []models.GameFeatureRow, lines []models.LineOutcomeRecord, opts JoinOptions) ([]models.TrainingRow, JoinReport) {
	canon := func(code string) string { return code }
	if opts.Canonicalizer != nil {
		canon = opts.Canonicalizer.Canonical
	}

	pending := make(map[models.GameKey][]int, len(lines))
	canonLines := make([]models.LineOutcomeRecord, len(lines))
	for i, l := range lines {
		l.HomeTeam, l.AwayTeam = canon(l.HomeTeam), canon(l.AwayTeam)
		l.Favorite, l.Underdog = canon(l.Favorite), canon(l.Underdog)
		canonLines[i] = l
		key := l.Key()
		pending[key] = append(pending[key], i)
	}

	var out []models.TrainingRow
	var report JoinReport
	for _, g := range games {
		g.HomeTeam, g.AwayTeam = canon(g.HomeTeam), canon(g.AwayTeam)
		key := g.Key()
		queue := pending[key]
		if len(queue) == 0 {
			report.UnmatchedFeatures++
			report.Mismatches = append(report.Mismatches, &models.JoinMismatchError{Side: models.JoinSideFeatures, Key: key})
			continue
		}
		pending[key] = queue[1:]
		out = append(out, models.TrainingRow{GameFeatureRow: g, Line: canonLines[queue[0]]})
		report.Matched++
	}

	for i := range canonLines {
		key := canonLines[i].Key()
		if len(pending[key]) > 0 && pending[key][0] == i {
			pending[key] = pending[key][1:]
			report.UnmatchedLines++
			report.Mismatches = append(report.Mismatches, &models.JoinMismatchError{Side: models.JoinSideLines, Key: key})
		}
	}
	return out, report
}
