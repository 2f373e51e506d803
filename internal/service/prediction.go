package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/hoopslines/internal/features"
	"github.com/yourusername/hoopslines/internal/logger"
	"github.com/yourusername/hoopslines/internal/metrics"
	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/predictor"
	"github.com/yourusername/hoopslines/internal/repository"
	"github.com/yourusername/hoopslines/internal/teams"
)

// ActiveRoster lists the entity ids expected to play for each team. Teams
// missing from the roster use every entity whose latest game was for them.
type ActiveRoster map[string][]int64

// PredictionService builds feature vectors for upcoming games and asks the
// regressor for a total and a margin
type PredictionService struct {
	events      repository.GameEventRepository
	predictions repository.PredictionRepository
	predictor   predictor.Predictor
	canon       *teams.Canonicalizer
	window      int
	workers     int
	logger      *logger.PredictionLogger
}

// NewPredictionService creates a prediction service. predictions may be nil
// to skip storing results.
func NewPredictionService(
	events repository.GameEventRepository,
	predictions repository.PredictionRepository,
	p predictor.Predictor,
	canon *teams.Canonicalizer,
	window, workers int,
	pl *logger.PredictionLogger,
) *PredictionService {
	if canon == nil {
		canon = teams.New(nil)
	}
	return &PredictionService{
		events:      events,
		predictions: predictions,
		predictor:   p,
		canon:       canon,
		window:      window,
		workers:     workers,
		logger:      pl,
	}
}

// BuildFeatureVectors builds one feature row per upcoming game from the
// as-of rolling features of each side's active entities. Sides with no
// entities are reported as gaps and left empty.
func (s *PredictionService) BuildFeatureVectors(ctx context.Context, season int, slate []models.UpcomingGame, active ActiveRoster) ([]models.GameFeatureRow, []*models.DataGapError, error) {
	events, err := s.events.ListBySeasons(ctx, season, season)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load game events: %w", err)
	}
	for i := range events {
		events[i].Team = s.canon.Canonical(events[i].Team)
		events[i].Opponent = s.canon.Canonical(events[i].Opponent)
	}

	rolling, err := features.ComputeRolling(ctx, events, features.RollingOptions{
		Window:  s.window,
		Mode:    models.WindowAsOf,
		Workers: s.workers,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("rolling features: %w", err)
	}
	rolled, err := features.RollUp(rolling, features.RollupOptions{Window: s.window})
	if err != nil {
		return nil, nil, fmt.Errorf("roll up: %w", err)
	}

	byTeam := make(map[string][]models.RollingFeatureRow)
	latest := features.LatestByEntity(rolling, season)
	for _, r := range latest {
		byTeam[r.Team] = append(byTeam[r.Team], r)
	}

	rows := make([]models.GameFeatureRow, 0, len(slate))
	var gaps []*models.DataGapError
	for _, g := range slate {
		g.HomeTeam = s.canon.Canonical(g.HomeTeam)
		g.AwayTeam = s.canon.Canonical(g.AwayTeam)

		home := activeRows(byTeam[g.HomeTeam], active, g.HomeTeam)
		away := activeRows(byTeam[g.AwayTeam], active, g.AwayTeam)
		row := features.BuildFeatureVector(g, season, s.window, home, away, rolled.Ledger)
		for _, side := range []struct {
			team string
			n    int
		}{{g.HomeTeam, len(home)}, {g.AwayTeam, len(away)}} {
			if side.n == 0 {
				gaps = append(gaps, &models.DataGapError{
					GameID: g.Key().String(),
					Team:   side.team,
					Reason: "no active entities with games this season",
				})
			}
		}
		rows = append(rows, row)
	}
	return rows, gaps, nil
}

// activeRows keeps the rows of entities on the team's active roster. Rows are
// returned in entity id order.
func activeRows(rows []models.RollingFeatureRow, active ActiveRoster, team string) []models.RollingFeatureRow {
	ids, ok := active[team]
	var out []models.RollingFeatureRow
	if !ok {
		out = append(out, rows...)
	} else {
		keep := make(map[int64]bool, len(ids))
		for _, id := range ids {
			keep[id] = true
		}
		for _, r := range rows {
			if keep[r.EntityID] {
				out = append(out, r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

// Predict builds the slate's feature vectors, calls the regressor for each
// game and stores the results. Failed calls are counted and skipped.
func (s *PredictionService) Predict(ctx context.Context, season int, slate []models.UpcomingGame, active ActiveRoster) ([]models.GamePrediction, *models.RunReport, error) {
	report := models.NewRunReport(RunKindPredict)
	out, err := s.predict(ctx, season, slate, active, report)
	report.Finish()
	metrics.RecordRun(RunKindPredict, report.Duration, err)
	return out, report, err
}

func (s *PredictionService) predict(ctx context.Context, season int, slate []models.UpcomingGame, active ActiveRoster, report *models.RunReport) ([]models.GamePrediction, error) {
	if s.predictor == nil {
		return nil, predictor.ErrPredictorDisabled
	}
	rows, gaps, err := s.BuildFeatureVectors(ctx, season, slate, active)
	if err != nil {
		return nil, err
	}
	for _, gap := range gaps {
		report.Record(gap)
	}

	now := time.Now().UTC()
	var out []models.GamePrediction
	for i := range rows {
		game := slate[i]
		game.HomeTeam, game.AwayTeam = rows[i].HomeTeam, rows[i].AwayTeam
		if game.Favorite != "" {
			game.Favorite = s.canon.Canonical(game.Favorite)
		}
		v := predictor.NewFeatureVector(&rows[i], &game)

		start := time.Now()
		p, err := s.predictor.Predict(ctx, v)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.LogPredictionError(string(predictor.TargetTotal), err)
			report.Record(&models.TransientFetchError{Source: "predictor", Attempts: 1, Err: err})
			continue
		}
		s.logger.LogPredictionRequest(string(predictor.TargetTotal), len(v.Values), false, float64(time.Since(start).Microseconds())/1000)
		s.logger.LogPrediction(game.GameDate.Format(models.DateLayout), game.HomeTeam, game.AwayTeam, p.PointTotal, p.Margin)
		out = append(out, predictor.ToGamePrediction(&game, p, now))
	}
	report.Processed = len(out)

	if s.predictions != nil && len(out) > 0 {
		if _, err := s.predictions.InsertBatch(ctx, out); err != nil {
			return out, fmt.Errorf("failed to store predictions: %w", err)
		}
	}
	return out, nil
}
