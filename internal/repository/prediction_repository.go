package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/hoopslines/internal/database"
	"github.com/yourusername/hoopslines/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db    *database.DB
	table Table
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB, table Table) PredictionRepository {
	return &PostgresPredictionRepository{db: db, table: table}
}

// InsertBatch appends predictions using COPY
func (r *PostgresPredictionRepository) InsertBatch(ctx context.Context, predictions []models.GamePrediction) (int64, error) {
	if len(predictions) == 0 {
		return 0, nil
	}

	src := make([][]any, len(predictions))
	for i := range predictions {
		src[i] = predictions[i].Record()
	}

	count, err := r.db.GetPool().CopyFrom(ctx, r.table.Identifier(), models.GamePredictionColumns, pgx.CopyFromRows(copyRows(src)))
	if err != nil {
		return 0, fmt.Errorf("failed to batch insert predictions: %w", err)
	}
	if count != int64(len(predictions)) {
		return count, fmt.Errorf("inserted %d rows, expected %d", count, len(predictions))
	}
	return count, nil
}
