package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/config"
)

// Initialize creates a database connection pool, verifies the source schema
// exists and creates the output schemas if they are missing.
func Initialize(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = db.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)",
		cfg.Database.SourceSchema,
	).Scan(&exists)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to inspect schemas: %w", err)
	}
	if !exists {
		db.Close()
		return nil, fmt.Errorf("source schema %q not found; run migrations first", cfg.Database.SourceSchema)
	}

	for _, schema := range []string{cfg.Database.FeatureSchema, cfg.Database.AnalyticsSchema} {
		if _, err := db.pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema %s: %w", schema, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
	}).Info("Database initialized")
	return db, nil
}
