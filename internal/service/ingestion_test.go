package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hoopslines/internal/datasource"
	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/teams"
)

type fakeGameLogSource struct {
	name   string
	events []models.GameEvent
	err    error
	calls  int
}

func (f *fakeGameLogSource) FetchGameLogs(context.Context, int) ([]models.GameEvent, error) {
	f.calls++
	return f.events, f.err
}
func (f *fakeGameLogSource) Name() string    { return f.name }
func (f *fakeGameLogSource) IsEnabled() bool { return true }

type fakeLineSource struct {
	name  string
	lines []models.LineOutcomeRecord
	slate []models.UpcomingGame
	err   error
}

func (f *fakeLineSource) FetchLines(context.Context) ([]models.LineOutcomeRecord, error) {
	return f.lines, f.err
}
func (f *fakeLineSource) FetchUpcoming(context.Context) ([]models.UpcomingGame, error) {
	return f.slate, f.err
}
func (f *fakeLineSource) Name() string    { return f.name }
func (f *fakeLineSource) IsEnabled() bool { return true }

func newTestIngestion(sources *datasource.Sources, events *mockGameEventRepo, lines *mockLineRepo) *IngestionService {
	log := quietLogger()
	_, audit, _ := loggers()
	return NewIngestionService(
		sources, events, lines,
		NewDataValidator(log),
		NewDataNormalizer(teams.New(nil), log),
		datasource.RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond},
		audit, log,
	)
}

func TestRefreshFallsBackToNextSource(t *testing.T) {
	down := &fakeGameLogSource{name: "nba_stats", err: errors.New("connection reset")}
	csv := &fakeGameLogSource{name: "csv", events: []models.GameEvent{
		event(1, "BRK", "NYK", true, day(11, 1), "G1", 30, true),
		event(2, "NYK", "BRK", false, day(11, 1), "G1", 20, false),
		{EntityID: 3, Team: "BOS", Opponent: "BOS", Season: 2023, GameID: "G9", GameDate: day(11, 2)},
	}}

	events := &mockGameEventRepo{}
	events.On("ReplaceSeason", mock.Anything, 2023, mock.MatchedBy(func(evs []models.GameEvent) bool {
		return len(evs) == 2 && evs[0].Team == "BKN" && evs[1].Opponent == "BKN"
	})).Return(int64(2), nil).Once()

	svc := newTestIngestion(&datasource.Sources{GameLogs: []datasource.GameLogSource{down, csv}}, events, &mockLineRepo{})
	report, err := svc.Refresh(context.Background(), 2023)
	require.NoError(t, err)

	assert.Equal(t, 2, down.calls, "retried up to the policy limit")
	assert.Equal(t, 1, report.FetchFailures)
	assert.Equal(t, "nba_stats", report.Fetches[0].Source)
	assert.Equal(t, 2, report.Processed)
	events.AssertExpectations(t)
}

func TestRefreshSchemaDriftIsFatal(t *testing.T) {
	drift := &fakeGameLogSource{name: "nba_stats", err: &models.SchemaDriftError{Table: "LeagueGameLog", Missing: []string{"PTS"}}}
	events := &mockGameEventRepo{}

	svc := newTestIngestion(&datasource.Sources{GameLogs: []datasource.GameLogSource{drift}}, events, &mockLineRepo{})
	_, err := svc.Refresh(context.Background(), 2023)

	var sde *models.SchemaDriftError
	require.ErrorAs(t, err, &sde)
	assert.Equal(t, 1, drift.calls)
	events.AssertNotCalled(t, "ReplaceSeason", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshLinesMergesSources(t *testing.T) {
	primary := &fakeLineSource{name: "rotowire", lines: []models.LineOutcomeRecord{
		line(day(11, 1), "BOS", "NY", "BOS", 110, 100),
	}}
	secondary := &fakeLineSource{name: "backup", lines: []models.LineOutcomeRecord{
		line(day(11, 1), "BOS", "NYK", "BOS", 111, 100),
		line(day(11, 2), "GS", "LAL", "GS", 120, 100),
	}}

	lines := &mockLineRepo{}
	lines.On("Replace", mock.Anything, mock.MatchedBy(func(ls []models.LineOutcomeRecord) bool {
		return len(ls) == 2 &&
			ls[0].HomeScore == 110 && ls[0].Underdog == "NYK" &&
			ls[1].HomeTeam == "GSW" && ls[1].Favorite == "GSW" && ls[1].Underdog == "LAL"
	})).Return(int64(2), nil).Once()

	svc := newTestIngestion(&datasource.Sources{Lines: []datasource.LineSource{primary, secondary}}, &mockGameEventRepo{}, lines)
	n, err := svc.RefreshLines(context.Background(), models.NewRunReport(RunKindRefresh))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	lines.AssertExpectations(t)
}

func TestRefreshLinesKeepsTableWhenAllSourcesFail(t *testing.T) {
	down := &fakeLineSource{name: "rotowire", err: datasource.NewDataSourceError("rotowire", datasource.ErrCodeServerError, "503", nil)}
	lines := &mockLineRepo{}

	svc := newTestIngestion(&datasource.Sources{Lines: []datasource.LineSource{down}}, &mockGameEventRepo{}, lines)
	report := models.NewRunReport(RunKindRefresh)
	_, err := svc.RefreshLines(context.Background(), report)

	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 1, report.FetchFailures)
	lines.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestRefreshCancelledContext(t *testing.T) {
	src := &fakeGameLogSource{name: "nba_stats", err: context.Canceled}
	svc := newTestIngestion(&datasource.Sources{GameLogs: []datasource.GameLogSource{src}}, &mockGameEventRepo{}, &mockLineRepo{})

	_, err := svc.Refresh(context.Background(), 2023)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchSlate(t *testing.T) {
	src := &fakeLineSource{name: "rotowire", slate: []models.UpcomingGame{
		{GameDate: day(11, 5).Add(19 * time.Hour), HomeTeam: "NY", AwayTeam: "BOS", Favorite: "BOS"},
		{GameDate: day(11, 5), HomeTeam: "MIA", AwayTeam: "MIA"},
	}}
	svc := newTestIngestion(&datasource.Sources{Lines: []datasource.LineSource{src}}, &mockGameEventRepo{}, &mockLineRepo{})

	slate, err := svc.FetchSlate(context.Background())
	require.NoError(t, err)
	require.Len(t, slate, 1)
	assert.Equal(t, "NYK", slate[0].HomeTeam)
	assert.Equal(t, day(11, 5), slate[0].GameDate)
}
