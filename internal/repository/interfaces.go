package repository

import (
	"context"

	"github.com/yourusername/hoopslines/internal/models"
)

// GameEventRepository defines the interface for entity game log access
type GameEventRepository interface {
	// ListBySeasons returns events of seasons in [from, to] ordered by
	// season, entity, game date and insertion order.
	ListBySeasons(ctx context.Context, from, to int) ([]models.GameEvent, error)
	// ReplaceSeason deletes the season's events and stores events in one
	// transaction.
	ReplaceSeason(ctx context.Context, season int, events []models.GameEvent) (int64, error)
	// LatestSeason returns the most recent stored season.
	LatestSeason(ctx context.Context) (int, error)
}

// LineRepository defines the interface for settled line access
type LineRepository interface {
	List(ctx context.Context) ([]models.LineOutcomeRecord, error)
	Replace(ctx context.Context, lines []models.LineOutcomeRecord) (int64, error)
}

// PredictionRepository stores regressor output for upcoming games
type PredictionRepository interface {
	InsertBatch(ctx context.Context, predictions []models.GamePrediction) (int64, error)
}

// TableWriter bulk-writes derived tables
type TableWriter interface {
	Write(ctx context.Context, table Table, mode WriteMode, columns []string, rows [][]any) (int64, error)
}

// SchemaInspector reads table metadata
type SchemaInspector interface {
	Columns(ctx context.Context, table Table) ([]string, error)
}
