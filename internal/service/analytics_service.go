package service

import (
	"context"
	"fmt"

	"github.com/yourusername/hoopslines/internal/analytics"
	"github.com/yourusername/hoopslines/internal/config"
	"github.com/yourusername/hoopslines/internal/logger"
	"github.com/yourusername/hoopslines/internal/metrics"
	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/repository"
	"github.com/yourusername/hoopslines/internal/teams"
)

// AnalyticsService computes the line analytics reports from stored lines
type AnalyticsService struct {
	lines  repository.LineRepository
	writer repository.TableWriter
	canon  *teams.Canonicalizer
	schema string
	logger *logger.PipelineLogger
	audit  *logger.AuditLogger
}

// NewAnalyticsService creates an analytics service writing to the analytics
// schema of cfg
func NewAnalyticsService(
	repos *repository.Repositories,
	canon *teams.Canonicalizer,
	cfg *config.DatabaseConfig,
	pl *logger.PipelineLogger,
	audit *logger.AuditLogger,
) *AnalyticsService {
	if canon == nil {
		canon = teams.New(nil)
	}
	return &AnalyticsService{
		lines:  repos.Lines,
		writer: repos.Writer,
		canon:  canon,
		schema: cfg.AnalyticsSchema,
		logger: pl,
		audit:  audit,
	}
}

// Analyzer loads the stored lines into an analyzer. Team codes are
// canonicalized and the underdog re-derived first.
func (s *AnalyticsService) Analyzer(ctx context.Context) (*analytics.Analyzer, error) {
	lines, err := s.lines.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines: %w", err)
	}
	for i := range lines {
		l := &lines[i]
		l.HomeTeam = s.canon.Canonical(l.HomeTeam)
		l.AwayTeam = s.canon.Canonical(l.AwayTeam)
		l.Favorite = s.canon.Canonical(l.Favorite)
	}

	a := analytics.NewAnalyzer(lines)
	if invalid := a.Invalid(); len(invalid) > 0 {
		s.logger.WithField("records", len(invalid)).Warn("Set aside line records whose favorite is neither team")
	}
	return a, nil
}

// Report computes one report.
func (s *AnalyticsService) Report(ctx context.Context, report analytics.Report, spec analytics.SortSpec) (analytics.Table, error) {
	a, err := s.Analyzer(ctx)
	if err != nil {
		return analytics.Table{}, err
	}
	t, err := a.Table(report, spec)
	if err != nil {
		return analytics.Table{}, err
	}
	metrics.UpdateTeamsReported(string(report), len(t.Rows))
	return t, nil
}

// Reports computes every report with its default ordering.
func (s *AnalyticsService) Reports(ctx context.Context) ([]analytics.Table, error) {
	a, err := s.Analyzer(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]analytics.Table, 0, len(analytics.Reports))
	for _, r := range analytics.Reports {
		t, err := a.Table(r, analytics.SortSpec{})
		if err != nil {
			return nil, err
		}
		metrics.UpdateTeamsReported(string(r), len(t.Rows))
		out = append(out, t)
	}
	return out, nil
}

// Publish recomputes every report and replaces its table in the analytics
// schema.
func (s *AnalyticsService) Publish(ctx context.Context) (*models.RunReport, error) {
	report := models.NewRunReport(RunKindAnalytics)
	err := s.publish(ctx, report)
	report.Finish()
	metrics.RecordRun(RunKindAnalytics, report.Duration, err)
	if err != nil {
		return report, err
	}
	s.logger.WithRun(report.RunID.String()).LogRunSummary(report.Processed, report.SkippedGap, report.SkippedJoin, report.FetchFailures, report.Duration)
	return report, nil
}

func (s *AnalyticsService) publish(ctx context.Context, report *models.RunReport) error {
	tables, err := s.Reports(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		table := repository.Table{Schema: s.schema, Name: string(t.Report)}
		n, err := s.writer.Write(ctx, table, repository.WriteReplace, t.Columns, t.Rows)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", table, err)
		}
		metrics.RecordTableWrite(table.Name, n)
		s.audit.LogTableWrite(table.Schema, table.Name, string(repository.WriteReplace), n)
		report.Processed += len(t.Rows)
	}
	return nil
}
