package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/yourusername/hoopslines/internal/config"
	"github.com/yourusername/hoopslines/internal/features"
	"github.com/yourusername/hoopslines/internal/logger"
	"github.com/yourusername/hoopslines/internal/metrics"
	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/repository"
	"github.com/yourusername/hoopslines/internal/teams"
)

// Pipeline stage names.
const (
	StageLoad    = "load_events"
	StageRolling = "rolling"
	StageRollup  = "rollup"
	StageLines   = "load_lines"
	StageJoin    = "join"
)

// FeatureOptions configures a feature build.
type FeatureOptions struct {
	Window    int
	Mode      models.WindowMode
	Workers   int
	WriteMode repository.WriteMode
	// FirstSeason drops older seasons when non-zero.
	FirstSeason int
}

// FeatureOptionsFromConfig converts the features configuration.
func FeatureOptionsFromConfig(cfg config.FeaturesConfig) (FeatureOptions, error) {
	mode, err := models.ParseWindowMode(cfg.Mode)
	if err != nil {
		return FeatureOptions{}, err
	}
	writeMode, err := repository.ParseWriteMode(cfg.WriteMode)
	if err != nil {
		return FeatureOptions{}, err
	}
	return FeatureOptions{
		Window:      cfg.WindowSize,
		Mode:        mode,
		Workers:     cfg.Workers,
		WriteMode:   writeMode,
		FirstSeason: cfg.FirstSeason,
	}, nil
}

// FeatureTables names the output tables of a feature build.
type FeatureTables struct {
	Rolling  repository.Table
	Games    repository.Table
	Training repository.Table
}

// FeatureTablesFor places the output tables in the feature schema.
func FeatureTablesFor(cfg *config.DatabaseConfig) FeatureTables {
	return FeatureTables{
		Rolling:  repository.Table{Schema: cfg.FeatureSchema, Name: repository.RollingFeaturesTable},
		Games:    repository.Table{Schema: cfg.FeatureSchema, Name: repository.GameFeaturesTable},
		Training: repository.Table{Schema: cfg.FeatureSchema, Name: repository.TrainingTable},
	}
}

// SourceTables names the tables a feature build reads.
type SourceTables struct {
	GameLogs repository.Table
	Lines    repository.Table
}

// SourceTablesFor places the input tables in the source schema.
func SourceTablesFor(cfg *config.DatabaseConfig) SourceTables {
	return SourceTables{
		GameLogs: repository.Table{Schema: cfg.SourceSchema, Name: repository.GameLogTable},
		Lines:    repository.Table{Schema: cfg.SourceSchema, Name: repository.LinesTable},
	}
}

// FeatureResult holds the in-memory output of a feature build.
type FeatureResult struct {
	Rolling  []models.RollingFeatureRow
	Games    []models.GameFeatureRow
	Training []models.TrainingRow
}

// FeaturePipeline builds the rolling, game and training tables from the
// stored game logs and lines
type FeaturePipeline struct {
	events  repository.GameEventRepository
	lines   repository.LineRepository
	writer  repository.TableWriter
	schema  repository.SchemaInspector
	canon   *teams.Canonicalizer
	sources SourceTables
	outputs FeatureTables
	logger  *logger.PipelineLogger
	audit   *logger.AuditLogger
}

// NewFeaturePipeline creates a feature pipeline. A nil schema inspector skips
// the upstream column check.
func NewFeaturePipeline(
	repos *repository.Repositories,
	canon *teams.Canonicalizer,
	sources SourceTables,
	outputs FeatureTables,
	pl *logger.PipelineLogger,
	audit *logger.AuditLogger,
) *FeaturePipeline {
	if canon == nil {
		canon = teams.New(nil)
	}
	return &FeaturePipeline{
		events:  repos.GameEvents,
		lines:   repos.Lines,
		writer:  repos.Writer,
		schema:  repos.Schema,
		canon:   canon,
		sources: sources,
		outputs: outputs,
		logger:  pl,
		audit:   audit,
	}
}

// Run builds and writes every feature table. Data gaps and join mismatches
// are counted in the report; schema drift and storage failures abort.
func (p *FeaturePipeline) Run(ctx context.Context, opts FeatureOptions) (*models.RunReport, error) {
	report := models.NewRunReport(RunKindFeatures)
	log := p.logger.WithRun(report.RunID.String())

	res, err := p.Build(ctx, opts, report, log)
	if err == nil {
		err = p.write(ctx, opts, res)
	}
	report.Finish()
	metrics.RecordRun(RunKindFeatures, report.Duration, err)
	if err != nil {
		log.WithError(err).Error("Feature build failed")
		return report, err
	}
	log.LogRunSummary(report.Processed, report.SkippedGap, report.SkippedJoin, report.FetchFailures, report.Duration)
	return report, nil
}

// Build computes the feature tables without writing them.
func (p *FeaturePipeline) Build(ctx context.Context, opts FeatureOptions, report *models.RunReport, log *logger.PipelineLogger) (*FeatureResult, error) {
	if opts.Window <= 0 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidWindow, opts.Window)
	}
	if err := p.checkSchema(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	events, err := p.loadEvents(ctx, opts.FirstSeason)
	if err != nil {
		return nil, err
	}
	p.stage(log, StageLoad, 0, len(events), start)

	start = time.Now()
	rolling, err := features.ComputeRolling(ctx, events, features.RollingOptions{
		Window:  opts.Window,
		Mode:    opts.Mode,
		Workers: opts.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("rolling features: %w", err)
	}
	p.stage(log, StageRolling, len(events), len(rolling), start)

	start = time.Now()
	rolled, err := features.RollUp(rolling, features.RollupOptions{Window: opts.Window})
	if err != nil {
		return nil, fmt.Errorf("roll up: %w", err)
	}
	for _, gap := range rolled.Gaps {
		report.Record(gap)
		log.LogDataGap(gap.GameID, gap.Team, gap.Reason)
	}
	metrics.RecordSkipped("data_gap", len(rolled.Gaps))
	p.stage(log, StageRollup, len(rolling), len(rolled.Games), start)

	start = time.Now()
	lines, err := p.lines.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines: %w", err)
	}
	p.stage(log, StageLines, 0, len(lines), start)

	start = time.Now()
	training, joined := features.Join(rolled.Games, lines, features.JoinOptions{Canonicalizer: p.canon})
	for _, m := range joined.Mismatches {
		report.Record(m)
		log.LogJoinMismatch(string(m.Side), m.Key.Date, m.Key.HomeTeam, m.Key.AwayTeam)
	}
	metrics.RecordSkipped("join_mismatch", len(joined.Mismatches))
	p.stage(log, StageJoin, len(rolled.Games)+len(lines), len(training), start)

	report.Processed = len(training)
	return &FeatureResult{Rolling: rolling, Games: rolled.Games, Training: training}, nil
}

func (p *FeaturePipeline) checkSchema(ctx context.Context) error {
	if p.schema == nil {
		return nil
	}
	if err := repository.RequireColumns(ctx, p.schema, p.sources.GameLogs, models.GameEventColumns); err != nil {
		return err
	}
	return repository.RequireColumns(ctx, p.schema, p.sources.Lines, models.LineOutcomeColumns)
}

func (p *FeaturePipeline) loadEvents(ctx context.Context, firstSeason int) ([]models.GameEvent, error) {
	events, err := p.events.ListBySeasons(ctx, firstSeason, math.MaxInt32)
	if err != nil {
		return nil, fmt.Errorf("failed to load game events: %w", err)
	}
	for i := range events {
		events[i].Team = p.canon.Canonical(events[i].Team)
		events[i].Opponent = p.canon.Canonical(events[i].Opponent)
	}
	return events, nil
}

func (p *FeaturePipeline) write(ctx context.Context, opts FeatureOptions, res *FeatureResult) error {
	rolling := make([][]any, len(res.Rolling))
	for i := range res.Rolling {
		rolling[i] = res.Rolling[i].Record()
	}
	games := make([][]any, len(res.Games))
	for i := range res.Games {
		games[i] = res.Games[i].Record()
	}
	training := make([][]any, len(res.Training))
	for i := range res.Training {
		training[i] = res.Training[i].Record()
	}

	writes := []struct {
		table   repository.Table
		columns []string
		rows    [][]any
	}{
		{p.outputs.Rolling, models.RollingFeatureColumns(opts.Window), rolling},
		{p.outputs.Games, models.GameFeatureColumns(opts.Window), games},
		{p.outputs.Training, models.TrainingColumns(opts.Window), training},
	}
	for _, w := range writes {
		n, err := p.writer.Write(ctx, w.table, opts.WriteMode, w.columns, w.rows)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", w.table, err)
		}
		metrics.RecordTableWrite(w.table.Name, n)
		p.audit.LogTableWrite(w.table.Schema, w.table.Name, string(opts.WriteMode), n)
	}
	return nil
}

func (p *FeaturePipeline) stage(log *logger.PipelineLogger, name string, in, out int, start time.Time) {
	elapsed := time.Since(start)
	metrics.ObserveStage(name, elapsed, out)
	log.LogStageCompleted(name, in, out, elapsed)
}
