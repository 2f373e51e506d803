package analytics

import (
	"fmt"

	"github.com/yourusername/hoopslines/internal/models"
)

// Table is a report flattened to named columns.
type Table struct {
	Report  Report
	Columns []string
	Rows    [][]any
}

// Columns returns the column names of a report.
func Columns(report Report) []string {
	switch report {
	case ReportCoverage:
		return models.CoverageSummaryColumns
	case ReportFavoriteSplit:
		return models.RoleSplitColumns(models.RoleFavorite)
	case ReportUnderdogSplit:
		return models.RoleSplitColumns(models.RoleUnderdog)
	case ReportOverUnder:
		return models.OverUnderSplitColumns
	default:
		return nil
	}
}

// Table computes a report and flattens it.
func (a *Analyzer) Table(report Report, spec SortSpec) (Table, error) {
	t := Table{Report: report, Columns: Columns(report)}
	switch report {
	case ReportCoverage:
		rows, err := a.CoverageSummary(spec)
		if err != nil {
			return Table{}, err
		}
		for i := range rows {
			t.Rows = append(t.Rows, rows[i].Record())
		}
	case ReportFavoriteSplit, ReportUnderdogSplit:
		split := a.FavoriteSplit
		if report == ReportUnderdogSplit {
			split = a.UnderdogSplit
		}
		rows, err := split(spec)
		if err != nil {
			return Table{}, err
		}
		for i := range rows {
			t.Rows = append(t.Rows, rows[i].Record())
		}
	case ReportOverUnder:
		rows, err := a.OverUnderSplits(spec)
		if err != nil {
			return Table{}, err
		}
		for i := range rows {
			t.Rows = append(t.Rows, rows[i].Record())
		}
	default:
		return Table{}, fmt.Errorf("unknown report %q", report)
	}
	return t, nil
}
