package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/datasource"
	"github.com/yourusername/hoopslines/internal/logger"
	"github.com/yourusername/hoopslines/internal/metrics"
	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/repository"
)

// Run kinds reported by the services.
const (
	RunKindRefresh   = "refresh"
	RunKindFeatures  = "features"
	RunKindAnalytics = "analytics"
	RunKindPredict   = "predict"
)

// ErrNoData is returned when every source of a kind failed or returned nothing.
var ErrNoData = errors.New("no source returned data")

// IngestionService refreshes the stored game logs and lines from external
// sources
type IngestionService struct {
	gameLogs   []datasource.GameLogSource
	lineSrcs   []datasource.LineSource
	events     repository.GameEventRepository
	lines      repository.LineRepository
	validator  *DataValidator
	normalizer *DataNormalizer
	policy     datasource.RetryPolicy
	audit      *logger.AuditLogger
	logger     logrus.FieldLogger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	sources *datasource.Sources,
	events repository.GameEventRepository,
	lines repository.LineRepository,
	validator *DataValidator,
	normalizer *DataNormalizer,
	policy datasource.RetryPolicy,
	audit *logger.AuditLogger,
	log logrus.FieldLogger,
) *IngestionService {
	return &IngestionService{
		gameLogs:   sources.GameLogs,
		lineSrcs:   sources.Lines,
		events:     events,
		lines:      lines,
		validator:  validator,
		normalizer: normalizer,
		policy:     policy,
		audit:      audit,
		logger:     log,
	}
}

// Refresh re-fetches the season's game logs and the settled lines. Fetch
// failures are counted in the report; storage failures abort the run.
func (s *IngestionService) Refresh(ctx context.Context, season int) (*models.RunReport, error) {
	report := models.NewRunReport(RunKindRefresh)
	err := s.refresh(ctx, season, report)
	report.Finish()
	metrics.RecordRun(RunKindRefresh, report.Duration, err)
	return report, err
}

func (s *IngestionService) refresh(ctx context.Context, season int, report *models.RunReport) error {
	if len(s.gameLogs) > 0 {
		n, err := s.RefreshSeason(ctx, season, report)
		if err != nil && !errors.Is(err, ErrNoData) {
			return err
		}
		report.Processed += int(n)
	}
	if len(s.lineSrcs) > 0 {
		n, err := s.RefreshLines(ctx, report)
		if err != nil && !errors.Is(err, ErrNoData) {
			return err
		}
		report.Processed += int(n)
	}
	s.logger.WithField("report", report.String()).Info("Ingestion refresh complete")
	return nil
}

// RefreshSeason replaces the stored season with the first game log source
// that returns data. Sources are tried in configuration order.
func (s *IngestionService) RefreshSeason(ctx context.Context, season int, report *models.RunReport) (int64, error) {
	for _, src := range s.gameLogs {
		if !src.IsEnabled() {
			continue
		}
		stats := NewIngestionStats()

		start := time.Now()
		events, err := datasource.Retry(ctx, s.policy, src.Name(), func(ctx context.Context) ([]models.GameEvent, error) {
			return src.FetchGameLogs(ctx, season)
		})
		metrics.RecordFetch(src.Name(), time.Since(start), err, isExhausted(err))
		if err != nil {
			if fatal := s.recordFetchError(report, stats, src.Name(), err); fatal != nil {
				return 0, fatal
			}
			continue
		}
		stats.RecordFetched(len(events))

		events = s.normalizer.NormalizeGameEvents(events)
		valid, rejected := s.validator.FilterGameEvents(events)
		stats.RecordRejected(rejected)
		if len(valid) == 0 {
			s.logger.WithField("source", src.Name()).Warn("Source returned no usable game events")
			continue
		}

		stored, err := s.events.ReplaceSeason(ctx, season, valid)
		if err != nil {
			return 0, fmt.Errorf("failed to store season %d: %w", season, err)
		}
		stats.RecordStored(stored)
		stats.Finish()

		s.audit.LogSourceRefresh(src.Name(), season, stats.Fetched, int(stats.Stored), stats.Rejected, time.Now())
		s.logger.WithField("source", src.Name()).Info(stats.String())
		return stored, nil
	}
	return 0, ErrNoData
}

// RefreshLines merges the settled lines of every line source and replaces
// the stored lines. The first source to report a game wins. The stored lines
// are left untouched when no source returns data.
func (s *IngestionService) RefreshLines(ctx context.Context, report *models.RunReport) (int64, error) {
	stats := NewIngestionStats()
	seen := make(map[models.GameKey]bool)
	var merged []models.LineOutcomeRecord

	for _, src := range s.lineSrcs {
		if !src.IsEnabled() {
			continue
		}
		start := time.Now()
		lines, err := datasource.Retry(ctx, s.policy, src.Name(), func(ctx context.Context) ([]models.LineOutcomeRecord, error) {
			return src.FetchLines(ctx)
		})
		metrics.RecordFetch(src.Name(), time.Since(start), err, isExhausted(err))
		if err != nil {
			if fatal := s.recordFetchError(report, stats, src.Name(), err); fatal != nil {
				return 0, fatal
			}
			continue
		}
		stats.RecordFetched(len(lines))

		lines = s.normalizer.NormalizeLines(lines)
		valid, rejected := s.validator.FilterLines(lines)
		stats.RecordRejected(rejected)
		for _, l := range valid {
			key := l.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, l)
		}
	}

	if len(merged) == 0 {
		return 0, ErrNoData
	}

	stored, err := s.lines.Replace(ctx, merged)
	if err != nil {
		return 0, fmt.Errorf("failed to store lines: %w", err)
	}
	stats.RecordStored(stored)
	stats.Finish()

	s.audit.LogSourceRefresh("lines", 0, stats.Fetched, int(stats.Stored), stats.Rejected, time.Now())
	s.logger.Info(stats.String())
	return stored, nil
}

// FetchSlate returns the upcoming games of the first line source that
// answers, normalized and validated.
func (s *IngestionService) FetchSlate(ctx context.Context) ([]models.UpcomingGame, error) {
	var lastErr error = ErrNoData
	for _, src := range s.lineSrcs {
		if !src.IsEnabled() {
			continue
		}
		start := time.Now()
		games, err := datasource.Retry(ctx, s.policy, src.Name(), func(ctx context.Context) ([]models.UpcomingGame, error) {
			return src.FetchUpcoming(ctx)
		})
		metrics.RecordFetch(src.Name(), time.Since(start), err, isExhausted(err))
		if err != nil {
			s.logger.WithError(err).WithField("source", src.Name()).Warn("Failed to fetch slate")
			lastErr = err
			continue
		}
		valid, _ := s.validator.FilterUpcoming(s.normalizer.NormalizeSlate(games))
		return valid, nil
	}
	return nil, lastErr
}

// recordFetchError counts a failed fetch. Exhausted retries and permanent
// source errors are skipped; anything else is returned as fatal.
func (s *IngestionService) recordFetchError(report *models.RunReport, stats *IngestionStats, source string, err error) error {
	var drift *models.SchemaDriftError
	if errors.As(err, &drift) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	stats.RecordFailure()
	if !report.Record(err) {
		report.Record(&models.TransientFetchError{Source: source, Attempts: 1, Err: err})
	}
	s.logger.WithError(err).WithField("source", source).Warn("Source fetch failed, skipping")
	return nil
}

func isExhausted(err error) bool {
	var fetch *models.TransientFetchError
	return errors.As(err, &fetch)
}
