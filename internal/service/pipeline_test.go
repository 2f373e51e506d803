package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hoopslines/internal/config"
	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/repository"
	"github.com/yourusername/hoopslines/internal/teams"
)

var testDB = &config.DatabaseConfig{SourceSchema: "nba", FeatureSchema: "features", AnalyticsSchema: "analytics"}

func newTestPipeline(events *mockGameEventRepo, lines *mockLineRepo, writer *recordingWriter, schema repository.SchemaInspector) *FeaturePipeline {
	pl, audit, _ := loggers()
	repos := &repository.Repositories{GameEvents: events, Lines: lines, Writer: writer, Schema: schema}
	return NewFeaturePipeline(repos, teams.New(nil), SourceTablesFor(testDB), FeatureTablesFor(testDB), pl, audit)
}

func TestFeatureOptionsFromConfig(t *testing.T) {
	opts, err := FeatureOptionsFromConfig(config.FeaturesConfig{WindowSize: 10, Mode: "historical", Workers: 4, WriteMode: "replace", FirstSeason: 2015})
	require.NoError(t, err)
	assert.Equal(t, FeatureOptions{Window: 10, Mode: models.WindowHistorical, Workers: 4, WriteMode: repository.WriteReplace, FirstSeason: 2015}, opts)

	_, err = FeatureOptionsFromConfig(config.FeaturesConfig{WindowSize: 10, Mode: "rolling", WriteMode: "replace"})
	assert.ErrorIs(t, err, models.ErrUnknownWindowMode)
}

func TestFeaturePipelineRun(t *testing.T) {
	ctx := context.Background()
	events := &mockGameEventRepo{}
	events.On("ListBySeasons", mock.Anything, 2023, math.MaxInt32).Return(seasonEvents(), nil)

	lines := &mockLineRepo{}
	lines.On("List", mock.Anything).Return([]models.LineOutcomeRecord{
		line(day(11, 1), "BOS", "NY", "BOS", 110, 85),
		line(day(11, 5), "MIA", "LAL", "LAL", 100, 110),
	}, nil)

	writer := &recordingWriter{}
	p := newTestPipeline(events, lines, writer, fullSchema())

	report, err := p.Run(ctx, FeatureOptions{Window: 3, Mode: models.WindowHistorical, WriteMode: repository.WriteReplace, FirstSeason: 2023})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.SkippedGap)
	assert.Equal(t, 2, report.SkippedJoin)
	require.Len(t, report.Mismatches, 2)

	require.Len(t, writer.writes, 3)
	rolling, ok := writer.byName(repository.RollingFeaturesTable)
	require.True(t, ok)
	assert.Equal(t, "features", rolling.table.Schema)
	assert.Equal(t, repository.WriteReplace, rolling.mode)
	assert.Len(t, rolling.rows, 8)
	assert.Contains(t, rolling.columns, "last_3_ppg")

	games, ok := writer.byName(repository.GameFeaturesTable)
	require.True(t, ok)
	assert.Len(t, games.rows, 2)

	training, ok := writer.byName(repository.TrainingTable)
	require.True(t, ok)
	require.Len(t, training.rows, 1)
	assert.Equal(t, models.TrainingColumns(3), training.columns)
	row := training.rows[0]
	assert.Equal(t, "NYK", row[4])
	assert.Equal(t, 110, row[5])
	assert.Equal(t, 85, row[6])

	events.AssertExpectations(t)
	lines.AssertExpectations(t)
}

func TestFeaturePipelineSchemaDrift(t *testing.T) {
	events := &mockGameEventRepo{}
	lines := &mockLineRepo{}
	writer := &recordingWriter{}
	schema := stubInspector{columns: map[string][]string{
		repository.GameLogTable: {"entity_id", "team"},
		repository.LinesTable:   models.LineOutcomeColumns,
	}}
	p := newTestPipeline(events, lines, writer, schema)

	_, err := p.Run(context.Background(), FeatureOptions{Window: 3, Mode: models.WindowHistorical, WriteMode: repository.WriteReplace})

	var drift *models.SchemaDriftError
	require.ErrorAs(t, err, &drift)
	assert.Contains(t, drift.Missing, "points")
	assert.Empty(t, writer.writes)
	events.AssertNotCalled(t, "ListBySeasons", mock.Anything, mock.Anything, mock.Anything)
}

func TestFeaturePipelineRejectsBadWindow(t *testing.T) {
	p := newTestPipeline(&mockGameEventRepo{}, &mockLineRepo{}, &recordingWriter{}, nil)
	_, err := p.Run(context.Background(), FeatureOptions{Window: 0, Mode: models.WindowAsOf})
	assert.ErrorIs(t, err, models.ErrInvalidWindow)
}

func TestFeaturePipelineReportsGaps(t *testing.T) {
	events := &mockGameEventRepo{}
	// Only the home side of G1 is present.
	events.On("ListBySeasons", mock.Anything, 0, math.MaxInt32).Return(seasonEvents()[:2], nil)
	lines := &mockLineRepo{}
	lines.On("List", mock.Anything).Return([]models.LineOutcomeRecord{}, nil)

	writer := &recordingWriter{}
	p := newTestPipeline(events, lines, writer, nil)

	report, err := p.Run(context.Background(), FeatureOptions{Window: 3, Mode: models.WindowAsOf, WriteMode: repository.WriteAppend})
	require.NoError(t, err)
	assert.Equal(t, 1, report.SkippedGap)
	assert.Equal(t, "NYK", report.Gaps[0].Team)
	assert.Equal(t, 1, report.SkippedJoin)
	assert.Equal(t, 0, report.Processed)
}
