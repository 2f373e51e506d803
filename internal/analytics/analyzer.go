// Package analytics summarizes settled betting lines by team: how often each
// team covered as favorite and underdog, split by venue, and how its games
// landed against the posted total.
package analytics

import (
	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/stats"
)

// Analyzer computes the analytics reports over one set of line records.
type Analyzer struct {
	records []models.LineOutcomeRecord
	invalid []models.LineOutcomeRecord
}

// NewAnalyzer derives the underdog of every record. Records whose favorite is
// neither the home nor the away team cannot be attributed and are set aside;
// see Invalid.
func NewAnalyzer(raw []models.LineOutcomeRecord) *Analyzer {
	a := &Analyzer{records: make([]models.LineOutcomeRecord, 0, len(raw))}
	for _, r := range raw {
		dog, ok := r.DeriveUnderdog()
		if !ok {
			r.Underdog = ""
			a.invalid = append(a.invalid, r)
			continue
		}
		r.Underdog = dog
		a.records = append(a.records, r)
	}
	return a
}

// Records returns the usable records with their derived underdog.
func (a *Analyzer) Records() []models.LineOutcomeRecord {
	return a.records
}

// Invalid returns the records that were excluded from every report.
func (a *Analyzer) Invalid() []models.LineOutcomeRecord {
	return a.invalid
}

func pct(part, whole int) *float64 {
	return stats.RoundPtr(stats.Percentage(part, whole), stats.FeaturePlaces)
}
