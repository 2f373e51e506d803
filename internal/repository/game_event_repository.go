package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/hoopslines/internal/database"
	"github.com/yourusername/hoopslines/internal/models"
)

// PostgresGameEventRepository implements GameEventRepository for PostgreSQL
type PostgresGameEventRepository struct {
	db    *database.DB
	table Table
}

// NewPostgresGameEventRepository creates a new game event repository
func NewPostgresGameEventRepository(db *database.DB, table Table) GameEventRepository {
	return &PostgresGameEventRepository{db: db, table: table}
}

// ListBySeasons retrieves events ordered for partitioned rolling windows
func (r *PostgresGameEventRepository) ListBySeasons(ctx context.Context, from, to int) ([]models.GameEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s, seq
		FROM %s
		WHERE season BETWEEN $1 AND $2
		ORDER BY season, entity_id, game_date, seq
	`, columnList(models.GameEventColumns), r.table.Identifier().Sanitize())

	rows, err := r.db.GetPool().Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query game events: %w", err)
	}
	defer rows.Close()

	var events []models.GameEvent
	for rows.Next() {
		var ev models.GameEvent
		err := rows.Scan(
			&ev.EntityID, &ev.EntityName, &ev.Team, &ev.Opponent, &ev.Season, &ev.GameID,
			&ev.GameDate, &ev.IsHome, &ev.Points, &ev.Win, &ev.HeightInches, &ev.Seq,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

// ReplaceSeason swaps the stored partition of one season
func (r *PostgresGameEventRepository) ReplaceSeason(ctx context.Context, season int, events []models.GameEvent) (int64, error) {
	src := make([][]any, len(events))
	for i := range events {
		if events[i].Season != season {
			return 0, fmt.Errorf("event %d belongs to season %d, not %d", i, events[i].Season, season)
		}
		src[i] = events[i].Record()
	}

	var count int64
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		del := fmt.Sprintf("DELETE FROM %s WHERE season = $1", r.table.Identifier().Sanitize())
		if _, err := tx.Exec(ctx, del, season); err != nil {
			return fmt.Errorf("failed to delete season %d: %w", season, err)
		}
		n, err := tx.CopyFrom(ctx, r.table.Identifier(), models.GameEventColumns, pgx.CopyFromRows(src))
		if err != nil {
			return fmt.Errorf("failed to copy game events: %w", err)
		}
		count = n
		return nil
	})
	return count, err
}

// LatestSeason returns the most recent stored season
func (r *PostgresGameEventRepository) LatestSeason(ctx context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COALESCE(MAX(season), 0) FROM %s", r.table.Identifier().Sanitize())
	var season int
	if err := r.db.GetPool().QueryRow(ctx, query).Scan(&season); err != nil {
		return 0, fmt.Errorf("failed to query latest season: %w", err)
	}
	if season == 0 {
		return 0, models.ErrNotFound
	}
	return season, nil
}
