package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/hoopslines/internal/database"
	"github.com/yourusername/hoopslines/internal/models"
)

// PostgresLineRepository implements LineRepository for PostgreSQL
type PostgresLineRepository struct {
	db    *database.DB
	table Table
}

// NewPostgresLineRepository creates a new line repository
func NewPostgresLineRepository(db *database.DB, table Table) LineRepository {
	return &PostgresLineRepository{db: db, table: table}
}

// List retrieves every settled line ordered by date
func (r *PostgresLineRepository) List(ctx context.Context) ([]models.LineOutcomeRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY game_date, home_team
	`, columnList(models.LineOutcomeColumns), r.table.Identifier().Sanitize())

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	var lines []models.LineOutcomeRecord
	for rows.Next() {
		var l models.LineOutcomeRecord
		var underdog *string
		err := rows.Scan(
			&l.GameDate, &l.HomeTeam, &l.AwayTeam, &l.Favorite, &underdog, &l.Line,
			&l.OverUnder, &l.TotalPoints, &l.HomeScore, &l.AwayScore,
			&l.FavoriteCovered, &l.UnderdogCovered, &l.OverHit, &l.UnderHit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		if underdog != nil {
			l.Underdog = *underdog
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

// Replace swaps the stored line archive
func (r *PostgresLineRepository) Replace(ctx context.Context, lines []models.LineOutcomeRecord) (int64, error) {
	src := make([][]any, len(lines))
	for i := range lines {
		src[i] = lines[i].Record()
	}

	var count int64
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "TRUNCATE "+r.table.Identifier().Sanitize()); err != nil {
			return fmt.Errorf("failed to truncate lines: %w", err)
		}
		n, err := tx.CopyFrom(ctx, r.table.Identifier(), models.LineOutcomeColumns, pgx.CopyFromRows(copyRows(src)))
		if err != nil {
			return fmt.Errorf("failed to copy lines: %w", err)
		}
		count = n
		return nil
	})
	return count, err
}
