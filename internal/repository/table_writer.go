package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/hoopslines/internal/database"
)

// PostgresTableWriter implements TableWriter with COPY.
type PostgresTableWriter struct {
	db *database.DB
}

// NewPostgresTableWriter creates a new table writer
func NewPostgresTableWriter(db *database.DB) TableWriter {
	return &PostgresTableWriter{db: db}
}

// Write stores rows in table. Replace drops and recreates the table with
// types inferred from the first row; append creates it only if missing. Both
// run in one transaction.
func (w *PostgresTableWriter) Write(ctx context.Context, table Table, mode WriteMode, columns []string, rows [][]any) (int64, error) {
	if _, err := ParseWriteMode(string(mode)); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		if mode == WriteReplace {
			return 0, w.truncateIfExists(ctx, table)
		}
		return 0, nil
	}
	if len(rows[0]) != len(columns) {
		return 0, fmt.Errorf("%s: %d columns but rows have %d values", table, len(columns), len(rows[0]))
	}

	types, err := ColumnTypes(rows[0])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", table, err)
	}

	var count int64
	err = w.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if mode == WriteReplace {
			if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+table.Identifier().Sanitize()); err != nil {
				return fmt.Errorf("failed to drop %s: %w", table, err)
			}
		}
		if _, err := tx.Exec(ctx, CreateTableSQL(table, columns, types, mode == WriteAppend)); err != nil {
			return fmt.Errorf("failed to create %s: %w", table, err)
		}

		n, err := tx.CopyFrom(ctx, table.Identifier(), columns, pgx.CopyFromRows(copyRows(rows)))
		if err != nil {
			return fmt.Errorf("failed to copy into %s: %w", table, err)
		}
		if n != int64(len(rows)) {
			return fmt.Errorf("inserted %d rows into %s, expected %d", n, table, len(rows))
		}
		count = n
		return nil
	})
	return count, err
}

func (w *PostgresTableWriter) truncateIfExists(ctx context.Context, table Table) error {
	var exists bool
	if err := w.db.GetPool().QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table.Identifier().Sanitize()).Scan(&exists); err != nil {
		return fmt.Errorf("failed to look up %s: %w", table, err)
	}
	if !exists {
		return nil
	}
	if _, err := w.db.GetPool().Exec(ctx, "TRUNCATE "+table.Identifier().Sanitize()); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", table, err)
	}
	return nil
}
