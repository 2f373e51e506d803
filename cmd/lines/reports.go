package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/hoopslines/internal/analytics"
	"github.com/yourusername/hoopslines/internal/logger"
	"github.com/yourusername/hoopslines/internal/report"
)

var splitReports = map[string]analytics.Report{
	"favorite":   analytics.ReportFavoriteSplit,
	"underdog":   analytics.ReportUnderdogSplit,
	"over_under": analytics.ReportOverUnder,
}

// sortSpec validates --sort against the report's columns.
func sortSpec(r analytics.Report, metric string, asc bool) (analytics.SortSpec, error) {
	m, err := analytics.ParseSortMetric(r, metric)
	if err != nil {
		return analytics.SortSpec{}, fmt.Errorf("%w; valid metrics: %s", err, metricNames(r))
	}
	return analytics.SortSpec{Metric: m, Ascending: asc}, nil
}

func metricNames(r analytics.Report) string {
	ms := analytics.Metrics(r)
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func printReport(cmd *cobra.Command, r analytics.Report, metric string, asc bool) error {
	spec, err := sortSpec(r, metric, asc)
	if err != nil {
		return err
	}
	tbl, err := svc.Analytics.Report(cmd.Context(), r, spec)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", report.Title(r))
	return report.WriteConsole(cmd.OutOrStdout(), tbl)
}

func coverageCmd() *cobra.Command {
	var (
		metric string
		asc    bool
	)
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Show how often each team covered as favorite and underdog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printReport(cmd, analytics.ReportCoverage, metric, asc)
		},
	}
	cmd.Flags().StringVar(&metric, "sort", "", "Column to sort by (default overall_hit_percentage)")
	cmd.Flags().BoolVar(&asc, "asc", false, "Sort ascending")
	return cmd
}

func splitsCmd() *cobra.Command {
	var (
		metric string
		asc    bool
	)
	cmd := &cobra.Command{
		Use:       "splits favorite|underdog|over_under",
		Short:     "Show home and away splits for favorites, underdogs or totals",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"favorite", "underdog", "over_under"},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := splitReports[args[0]]
			if !ok {
				return fmt.Errorf("unknown split %q", args[0])
			}
			return printReport(cmd, r, metric, asc)
		},
	}
	cmd.Flags().StringVar(&metric, "sort", "", "Column to sort by (default the report's primary hit percentage)")
	cmd.Flags().BoolVar(&asc, "asc", false, "Sort ascending")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		dir     string
		format  string
		publish bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every analytics report to CSV or HTML files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = svc.Config.Export.Directory
			}
			if format == "" {
				format = svc.Config.Export.Format
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			tables, err := svc.Analytics.Reports(cmd.Context())
			if err != nil {
				return err
			}
			paths, err := report.NewExporter(dir, f, logger.NewAuditLogger(svc.Logger)).Export(tables)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}

			if publish {
				run, err := svc.Analytics.Publish(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), run.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&format, "format", "", "csv, html or both (default from config)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Also replace the analytics tables in the database")
	return cmd
}
