package analytics

import (
	"errors"
	"fmt"
	"sort"
)

// Report names one of the analytics tables.
type Report string

const (
	ReportCoverage      Report = "coverage_summary"
	ReportFavoriteSplit Report = "favorite_split"
	ReportUnderdogSplit Report = "underdog_split"
	ReportOverUnder     Report = "over_under_splits"
)

// Reports lists every analytics table in export order.
var Reports = []Report{ReportCoverage, ReportFavoriteSplit, ReportUnderdogSplit, ReportOverUnder}

// SortMetric is a sortable column of a report. Metric names are the report's
// column names.
type SortMetric string

// MetricTeam sorts alphabetically by team code on every report.
const MetricTeam SortMetric = "team"

// SortSpec selects the ordering of a report. The zero value sorts by the
// report's primary hit percentage, highest first.
type SortSpec struct {
	Metric    SortMetric
	Ascending bool
}

// ErrUnknownSortMetric is returned for a metric that a report does not carry.
var ErrUnknownSortMetric = errors.New("unknown sort metric")

// ParseReport validates a report name.
func ParseReport(name string) (Report, error) {
	for _, r := range Reports {
		if string(r) == name {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown report %q", name)
}

// Metrics returns the sortable metrics of a report, team first.
func Metrics(report Report) []SortMetric {
	cols := Columns(report)
	out := make([]SortMetric, len(cols))
	for i, c := range cols {
		out[i] = SortMetric(c)
	}
	return out
}

// DefaultMetric returns the primary hit-percentage column of a report.
func DefaultMetric(report Report) SortMetric {
	switch report {
	case ReportFavoriteSplit:
		return "hit_percentage_as_favorite_away"
	case ReportUnderdogSplit:
		return "hit_percentage_as_underdog_away"
	case ReportOverUnder:
		return "over_hit_home_percentage"
	default:
		return "overall_hit_percentage"
	}
}

// ParseSortMetric validates name against the report's metrics. An empty name
// selects the default metric.
func ParseSortMetric(report Report, name string) (SortMetric, error) {
	if name == "" {
		return DefaultMetric(report), nil
	}
	for _, m := range Metrics(report) {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q for %s", ErrUnknownSortMetric, name, report)
}

// sortRows orders rows by team, then stably by the selected metric. Rows whose
// metric is nil always sort last. Rows tied on the metric keep team code
// order, ascending, in either direction; the caller's input order is not
// preserved.
func sortRows[T any](rows []T, spec SortSpec, report Report, columns []string, team func(*T) string, record func(*T) []any) error {
	metric, err := ParseSortMetric(report, string(spec.Metric))
	if err != nil {
		return err
	}

	sort.SliceStable(rows, func(i, j int) bool { return team(&rows[i]) < team(&rows[j]) })
	if metric == MetricTeam {
		if !spec.Ascending {
			sort.SliceStable(rows, func(i, j int) bool { return team(&rows[i]) > team(&rows[j]) })
		}
		return nil
	}

	col := -1
	for i, c := range columns {
		if c == string(metric) {
			col = i
			break
		}
	}
	if col < 0 {
		return fmt.Errorf("%w %q for %s", ErrUnknownSortMetric, metric, report)
	}

	vals := make([]*float64, len(rows))
	idx := make([]int, len(rows))
	for i := range rows {
		vals[i] = numeric(record(&rows[i])[col])
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := vals[idx[a]], vals[idx[b]]
		switch {
		case va == nil:
			return false
		case vb == nil:
			return true
		case spec.Ascending:
			return *va < *vb
		default:
			return *va > *vb
		}
	})

	sorted := make([]T, len(rows))
	for i, k := range idx {
		sorted[i] = rows[k]
	}
	copy(rows, sorted)
	return nil
}

func numeric(v any) *float64 {
	switch x := v.(type) {
	case *float64:
		return x
	case float64:
		return &x
	case int:
		f := float64(x)
		return &f
	default:
		return nil
	}
}
