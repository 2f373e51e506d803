// Package repository reads source tables and writes derived tables in
// PostgreSQL.
package repository

import (
	"fmt"

	"github.com/yourusername/hoopslines/internal/config"
	"github.com/yourusername/hoopslines/internal/database"
)

// Table names of the source schema.
const (
	GameLogTable    = "game_logs"
	LinesTable      = "lines"
	PredictionTable = "predictions"
)

// Table names of the feature and analytics schemas.
const (
	RollingFeaturesTable = "rolling_features"
	GameFeaturesTable    = "game_features"
	TrainingTable        = "training_table"
	CoverageSummaryTable = "coverage_summary"
	FavoriteSplitTable   = "favorite_split"
	UnderdogSplitTable   = "underdog_split"
	OverUnderSplitsTable = "over_under_splits"
)

// Repositories holds all repository implementations
type Repositories struct {
	GameEvents  GameEventRepository
	Lines       LineRepository
	Predictions PredictionRepository
	Writer      TableWriter
	Schema      SchemaInspector
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB, cfg *config.DatabaseConfig) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		GameEvents:  NewPostgresGameEventRepository(db, Table{Schema: cfg.SourceSchema, Name: GameLogTable}),
		Lines:       NewPostgresLineRepository(db, Table{Schema: cfg.SourceSchema, Name: LinesTable}),
		Predictions: NewPostgresPredictionRepository(db, Table{Schema: cfg.FeatureSchema, Name: PredictionTable}),
		Writer:      NewPostgresTableWriter(db),
		Schema:      NewPostgresSchemaInspector(db),
	}, nil
}
