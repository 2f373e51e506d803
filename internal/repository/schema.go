package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/hoopslines/internal/database"
	"github.com/yourusername/hoopslines/internal/models"
)

// PostgresSchemaInspector implements SchemaInspector over information_schema
type PostgresSchemaInspector struct {
	db *database.DB
}

// NewPostgresSchemaInspector creates a new schema inspector
func NewPostgresSchemaInspector(db *database.DB) SchemaInspector {
	return &PostgresSchemaInspector{db: db}
}

// Columns lists the columns of table in ordinal order. A missing table has
// no columns.
func (s *PostgresSchemaInspector) Columns(ctx context.Context, table Table) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`
	rows, err := s.db.GetPool().Query(ctx, query, table.Schema, table.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// RequireColumns fails with a *models.SchemaDriftError when table lacks any
// of the required columns.
func RequireColumns(ctx context.Context, inspector SchemaInspector, table Table, required []string) error {
	have, err := inspector.Columns(ctx, table)
	if err != nil {
		return err
	}
	return models.CheckColumns(table.String(), have, required)
}
