// Package app wires configuration, storage, sources and services for the
// command entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/config"
	"github.com/yourusername/hoopslines/internal/database"
	"github.com/yourusername/hoopslines/internal/datasource"
	"github.com/yourusername/hoopslines/internal/logger"
	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/predictor"
	"github.com/yourusername/hoopslines/internal/repository"
	"github.com/yourusername/hoopslines/internal/service"
	"github.com/yourusername/hoopslines/internal/teams"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// LoadConfig loads .env files, reads the YAML config, overlays AWS secrets
// when AWS_SECRETS_ENABLED is true and validates the result. Missing .env
// files are ignored.
func LoadConfig(ctx context.Context, path string, envFiles ...string) (*config.Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// App holds the wired services.
type App struct {
	Config     *config.Config
	Logger     *logrus.Logger
	DB         *database.DB
	Repos      *repository.Repositories
	Teams      *teams.Canonicalizer
	Sources    *datasource.Sources
	Ingestion  *service.IngestionService
	Features   *service.FeaturePipeline
	Analytics  *service.AnalyticsService
	Prediction *service.PredictionService
	// Predictor is nil when the regressor is disabled.
	Predictor predictor.Predictor
}

// New connects to the database and builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)
	a := &App{Config: cfg, Logger: log, Teams: teams.New(cfg.Teams.Aliases)}

	db, err := database.Initialize(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.DB = db

	a.Repos, err = repository.NewRepositories(db, &cfg.Database)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	a.Sources, err = datasource.NewFactory(log).NewSources(cfg.DataIngestion)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create data sources: %w", err)
	}

	pl := logger.NewPipelineLogger(log)
	audit := logger.NewAuditLogger(log)

	a.Ingestion = service.NewIngestionService(
		a.Sources,
		a.Repos.GameEvents,
		a.Repos.Lines,
		service.NewDataValidator(log),
		service.NewDataNormalizer(a.Teams, log),
		datasource.PolicyFromConfig(cfg.DataIngestion.Retry),
		audit,
		log,
	)
	a.Features = service.NewFeaturePipeline(
		a.Repos,
		a.Teams,
		service.SourceTablesFor(&cfg.Database),
		service.FeatureTablesFor(&cfg.Database),
		pl,
		audit,
	)
	a.Analytics = service.NewAnalyticsService(a.Repos, a.Teams, &cfg.Database, pl, audit)

	a.Predictor, err = predictor.New(cfg.Predictor, log)
	if err != nil && !errors.Is(err, predictor.ErrPredictorDisabled) {
		a.Close()
		return nil, fmt.Errorf("failed to create predictor: %w", err)
	}
	a.Prediction = service.NewPredictionService(
		a.Repos.GameEvents,
		a.Repos.Predictions,
		a.Predictor,
		a.Teams,
		cfg.Features.WindowSize,
		cfg.Features.Workers,
		logger.NewPredictionLogger(log),
	)
	return a, nil
}

// Refresh re-fetches the configured season and the betting lines.
func (a *App) Refresh(ctx context.Context) (*models.RunReport, error) {
	return a.Ingestion.Refresh(ctx, a.Config.DataIngestion.Season)
}

// Rebuild recomputes the feature tables and republishes the analytics
// tables. The returned report is the feature run's.
func (a *App) Rebuild(ctx context.Context) (*models.RunReport, error) {
	opts, err := service.FeatureOptionsFromConfig(a.Config.Features)
	if err != nil {
		return nil, err
	}
	report, err := a.Features.Run(ctx, opts)
	if err != nil {
		return report, err
	}
	if _, err := a.Analytics.Publish(ctx); err != nil {
		return report, fmt.Errorf("failed to publish analytics: %w", err)
	}
	return report, nil
}

// Close releases the predictor, the source clients and the database pool.
func (a *App) Close() {
	if a.Predictor != nil {
		if err := a.Predictor.Close(); err != nil {
			a.Logger.WithError(err).Warn("Failed to close predictor")
		}
	}
	if a.Sources != nil {
		_ = a.Sources.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
