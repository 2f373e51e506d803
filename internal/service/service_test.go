package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/hoopslines/internal/logger"
	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/repository"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func day(m time.Month, d int) time.Time {
	return time.Date(2023, m, d, 0, 0, 0, 0, time.UTC)
}

type mockGameEventRepo struct {
	mock.Mock
}

func (m *mockGameEventRepo) ListBySeasons(ctx context.Context, from, to int) ([]models.GameEvent, error) {
	args := m.Called(ctx, from, to)
	events, _ := args.Get(0).([]models.GameEvent)
	return events, args.Error(1)
}

func (m *mockGameEventRepo) ReplaceSeason(ctx context.Context, season int, events []models.GameEvent) (int64, error) {
	args := m.Called(ctx, season, events)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockGameEventRepo) LatestSeason(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockLineRepo struct {
	mock.Mock
}

func (m *mockLineRepo) List(ctx context.Context) ([]models.LineOutcomeRecord, error) {
	args := m.Called(ctx)
	lines, _ := args.Get(0).([]models.LineOutcomeRecord)
	return lines, args.Error(1)
}

func (m *mockLineRepo) Replace(ctx context.Context, lines []models.LineOutcomeRecord) (int64, error) {
	args := m.Called(ctx, lines)
	return args.Get(0).(int64), args.Error(1)
}

type mockPredictionRepo struct {
	mock.Mock
}

func (m *mockPredictionRepo) InsertBatch(ctx context.Context, predictions []models.GamePrediction) (int64, error) {
	args := m.Called(ctx, predictions)
	return args.Get(0).(int64), args.Error(1)
}

type tableWrite struct {
	table   repository.Table
	mode    repository.WriteMode
	columns []string
	rows    [][]any
}

// recordingWriter keeps every write in memory.
type recordingWriter struct {
	mu     sync.Mutex
	writes []tableWrite
}

func (w *recordingWriter) Write(_ context.Context, table repository.Table, mode repository.WriteMode, columns []string, rows [][]any) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, tableWrite{table: table, mode: mode, columns: columns, rows: rows})
	return int64(len(rows)), nil
}

func (w *recordingWriter) byName(name string) (tableWrite, bool) {
	for _, tw := range w.writes {
		if tw.table.Name == name {
			return tw, true
		}
	}
	return tableWrite{}, false
}

type stubInspector struct {
	columns map[string][]string
}

func (s stubInspector) Columns(_ context.Context, table repository.Table) ([]string, error) {
	return s.columns[table.Name], nil
}

func fullSchema() stubInspector {
	return stubInspector{columns: map[string][]string{
		repository.GameLogTable: models.GameEventColumns,
		repository.LinesTable:   models.LineOutcomeColumns,
	}}
}

func loggers() (*logger.PipelineLogger, *logger.AuditLogger, *logger.PredictionLogger) {
	base := quietLogger()
	return logger.NewPipelineLogger(base), logger.NewAuditLogger(base), logger.NewPredictionLogger(base)
}

func event(id int64, team, opp string, home bool, date time.Time, gameID string, pts int, win bool) models.GameEvent {
	return models.GameEvent{
		EntityID:   id,
		EntityName: "Player",
		Team:       team,
		Opponent:   opp,
		Season:     2023,
		GameID:     gameID,
		GameDate:   date,
		IsHome:     home,
		Points:     pts,
		Win:        win,
	}
}

// seasonEvents is two games between BOS and NYK with two entities a side.
// Entity 5 last played for NYK and entity 6 for BOS.
func seasonEvents() []models.GameEvent {
	g1, g2 := day(time.November, 1), day(time.November, 3)
	return []models.GameEvent{
		event(1, "BOS", "NYK", true, g1, "G1", 50, true),
		event(2, "BOS", "NYK", true, g1, "G1", 60, true),
		event(3, "NYK", "BOS", false, g1, "G1", 40, false),
		event(4, "NYK", "BOS", false, g1, "G1", 45, false),
		event(3, "NYK", "BOS", true, g2, "G2", 55, true),
		event(5, "NYK", "BOS", true, g2, "G2", 50, true),
		event(1, "BOS", "NYK", false, g2, "G2", 48, false),
		event(6, "BOS", "NYK", false, g2, "G2", 42, false),
	}
}

func line(date time.Time, home, away, fav string, homeScore, awayScore int) models.LineOutcomeRecord {
	l := models.LineOutcomeRecord{
		GameDate:  date,
		HomeTeam:  home,
		AwayTeam:  away,
		Favorite:  fav,
		Line:      decimal.NewFromInt(-5),
		OverUnder: decimal.RequireFromString("200.5"),
		HomeScore: homeScore,
		AwayScore: awayScore,
	}
	l.Settle()
	return l
}
