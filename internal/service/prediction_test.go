package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/predictor"
	"github.com/yourusername/hoopslines/internal/teams"
)

type mockPredictor struct {
	mock.Mock
}

func (m *mockPredictor) Predict(ctx context.Context, v predictor.FeatureVector) (predictor.Prediction, error) {
	args := m.Called(ctx, v)
	return args.Get(0).(predictor.Prediction), args.Error(1)
}

func (m *mockPredictor) Close() error {
	return m.Called().Error(0)
}

func slate() []models.UpcomingGame {
	return []models.UpcomingGame{{
		GameDate:  day(time.November, 5),
		HomeTeam:  "NY",
		AwayTeam:  "BOS",
		Favorite:  "BOS",
		Line:      decimal.RequireFromString("-3.5"),
		OverUnder: decimal.NewFromInt(210),
	}}
}

func newTestPrediction(events *mockGameEventRepo, preds *mockPredictionRepo, p predictor.Predictor) *PredictionService {
	_, _, plog := loggers()
	svc := NewPredictionService(events, nil, p, teams.New(nil), 3, 2, plog)
	if preds != nil {
		svc.predictions = preds
	}
	return svc
}

func TestBuildFeatureVectors(t *testing.T) {
	events := &mockGameEventRepo{}
	events.On("ListBySeasons", mock.Anything, 2023, 2023).Return(seasonEvents(), nil)
	svc := newTestPrediction(events, nil, nil)

	rows, gaps, err := svc.BuildFeatureVectors(context.Background(), 2023, slate(), ActiveRoster{"BOS": {1, 6}})
	require.NoError(t, err)
	assert.Empty(t, gaps)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "NYK", row.HomeTeam)
	assert.Equal(t, 3, row.Home.ActiveEntities)
	assert.Equal(t, 2, row.Away.ActiveEntities)
	assert.Equal(t, 2, row.Home.GamesPlayed)
	assert.Equal(t, 1, row.Home.Wins)
	assert.True(t, row.Home.Present)
}

func TestBuildFeatureVectorsReportsMissingTeams(t *testing.T) {
	events := &mockGameEventRepo{}
	events.On("ListBySeasons", mock.Anything, 2023, 2023).Return(seasonEvents(), nil)
	svc := newTestPrediction(events, nil, nil)

	games := []models.UpcomingGame{{GameDate: day(time.November, 5), HomeTeam: "MIA", AwayTeam: "BOS"}}
	rows, gaps, err := svc.BuildFeatureVectors(context.Background(), 2023, games, ActiveRoster{"BOS": {}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, gaps, 2)
	assert.Equal(t, "MIA", gaps[0].Team)
	assert.Equal(t, "BOS", gaps[1].Team)
	assert.False(t, rows[0].Home.Present)
}

func TestPredict(t *testing.T) {
	events := &mockGameEventRepo{}
	events.On("ListBySeasons", mock.Anything, 2023, 2023).Return(seasonEvents(), nil)

	p := &mockPredictor{}
	p.On("Predict", mock.Anything, mock.MatchedBy(func(v predictor.FeatureVector) bool {
		line := v.Values[predictor.ColumnLine]
		return v.Game.HomeTeam == "NYK" && line != nil && *line == -3.5
	})).Return(predictor.Prediction{PointTotal: 215, Margin: 4}, nil).Once()

	preds := &mockPredictionRepo{}
	preds.On("InsertBatch", mock.Anything, mock.MatchedBy(func(ps []models.GamePrediction) bool {
		return len(ps) == 1 && ps[0].HomeTeam == "NYK" && ps[0].PointTotal == 215
	})).Return(int64(1), nil).Once()

	svc := newTestPrediction(events, preds, p)
	out, report, err := svc.Predict(context.Background(), 2023, slate(), nil)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, 1, report.Processed)
	assert.True(t, out[0].PicksOver())
	assert.True(t, out[0].Line.Equal(decimal.RequireFromString("-3.5")))
	p.AssertExpectations(t)
	preds.AssertExpectations(t)
}

func TestPredictSkipsFailedCalls(t *testing.T) {
	events := &mockGameEventRepo{}
	events.On("ListBySeasons", mock.Anything, 2023, 2023).Return(seasonEvents(), nil)
	p := &mockPredictor{}
	p.On("Predict", mock.Anything, mock.Anything).Return(predictor.Prediction{}, errors.New("unavailable"))
	preds := &mockPredictionRepo{}

	svc := newTestPrediction(events, preds, p)
	out, report, err := svc.Predict(context.Background(), 2023, slate(), nil)
	require.NoError(t, err)

	assert.Empty(t, out)
	assert.Equal(t, 1, report.FetchFailures)
	preds.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestPredictWithoutPredictor(t *testing.T) {
	svc := newTestPrediction(&mockGameEventRepo{}, nil, nil)
	_, _, err := svc.Predict(context.Background(), 2023, slate(), nil)
	assert.ErrorIs(t, err, predictor.ErrPredictorDisabled)
}
