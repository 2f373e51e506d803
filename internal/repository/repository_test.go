package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hoopslines/internal/database"
	"github.com/yourusername/hoopslines/internal/models"
)

func TestTableIdentifier(t *testing.T) {
	tbl := Table{Schema: "features", Name: "game_features"}
	assert.Equal(t, `"features"."game_features"`, tbl.Identifier().Sanitize())
	assert.Equal(t, "features.game_features", tbl.String())

	bare := Table{Name: "lines"}
	assert.Equal(t, `"lines"`, bare.Identifier().Sanitize())
}

func TestParseWriteMode(t *testing.T) {
	m, err := ParseWriteMode("replace")
	require.NoError(t, err)
	assert.Equal(t, WriteReplace, m)

	m, err = ParseWriteMode("append")
	require.NoError(t, err)
	assert.Equal(t, WriteAppend, m)

	_, err = ParseWriteMode("upsert")
	assert.Error(t, err)
}

func TestColumnTypes(t *testing.T) {
	var nilFloat *float64
	row := []any{
		int64(1), 2, "BOS", true, 1.5, nilFloat, time.Now(),
		decimal.NewFromFloat(-5.5), models.SideHome,
	}
	types, err := ColumnTypes(row)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"bigint", "bigint", "text", "boolean", "double precision", "double precision",
		"timestamptz", "numeric", "text",
	}, types)

	_, err = ColumnTypes([]any{nil})
	assert.Error(t, err)

	_, err = ColumnTypes([]any{[]int{1}})
	assert.Error(t, err)
}

func TestColumnTypesCoverEveryOutputRecord(t *testing.T) {
	game := models.GameFeatureRow{Window: 10}
	training := models.TrainingRow{GameFeatureRow: game}
	rolling := models.RollingFeatureRow{Window: 10}
	coverage := models.CoverageSummary{}
	split := models.RoleSplit{}
	ou := models.OverUnderSplit{}
	pred := models.GamePrediction{}

	records := map[string][]any{
		"game":       game.Record(),
		"training":   training.Record(),
		"rolling":    rolling.Record(),
		"coverage":   coverage.Record(),
		"split":      split.Record(),
		"overunder":  ou.Record(),
		"prediction": pred.Record(),
	}
	for name, rec := range records {
		_, err := ColumnTypes(rec)
		assert.NoError(t, err, name)
	}
}

func TestCreateTableSQL(t *testing.T) {
	tbl := Table{Schema: "analytics", Name: "coverage_summary"}
	sql := CreateTableSQL(tbl, []string{"team", "HOME_PTS"}, []string{"text", "bigint"}, false)
	assert.Equal(t, `CREATE TABLE "analytics"."coverage_summary" ("team" text, "HOME_PTS" bigint)`, sql)

	sql = CreateTableSQL(tbl, []string{"team"}, []string{"text"}, true)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "analytics"."coverage_summary" ("team" text)`, sql)
}

func TestCopyRowsConvertsDecimals(t *testing.T) {
	d := decimal.RequireFromString("220.5")
	var nilDec *decimal.Decimal
	rows := copyRows([][]any{{"BOS", d, &d, nilDec}})
	require.Len(t, rows, 1)
	assert.Equal(t, "BOS", rows[0][0])
	assert.Equal(t, 220.5, rows[0][1])
	assert.Equal(t, 220.5, rows[0][2])
	assert.Nil(t, rows[0][3])
}

type stubInspector struct {
	cols []string
	err  error
}

func (s stubInspector) Columns(context.Context, Table) ([]string, error) {
	return s.cols, s.err
}

func TestRequireColumns(t *testing.T) {
	tbl := Table{Schema: "nba", Name: GameLogTable}

	err := RequireColumns(context.Background(), stubInspector{cols: models.GameEventColumns}, tbl, models.GameEventColumns)
	assert.NoError(t, err)

	err = RequireColumns(context.Background(), stubInspector{cols: []string{"entity_id", "team"}}, tbl, []string{"entity_id", "team", "points"})
	var drift *models.SchemaDriftError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, "nba.game_logs", drift.Table)
	assert.Equal(t, []string{"points"}, drift.Missing)
}

func TestTableWriterRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	ctx := context.Background()

	_, err := db.GetPool().Exec(ctx, "CREATE SCHEMA IF NOT EXISTS hoopslines_test")
	require.NoError(t, err)

	tbl := Table{Schema: "hoopslines_test", Name: "writer_round_trip"}
	w := NewPostgresTableWriter(db)
	cols := []string{"team", "GAMES", "PCT"}
	rows := [][]any{{"BOS", 3, models.Float64Ptr(60)}, {"NYK", 2, (*float64)(nil)}}

	n, err := w.Write(ctx, tbl, WriteReplace, cols, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = w.Write(ctx, tbl, WriteAppend, cols, rows[:1])
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var count int
	require.NoError(t, db.GetPool().QueryRow(ctx, "SELECT count(*) FROM "+tbl.Identifier().Sanitize()).Scan(&count))
	assert.Equal(t, 3, count)

	inspector := NewPostgresSchemaInspector(db)
	got, err := inspector.Columns(ctx, tbl)
	require.NoError(t, err)
	assert.Equal(t, cols, got)

	_, err = w.Write(ctx, tbl, WriteReplace, cols, nil)
	require.NoError(t, err)
	require.NoError(t, db.GetPool().QueryRow(ctx, "SELECT count(*) FROM "+tbl.Identifier().Sanitize()).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestLineRepositoryListNullUnderdog(t *testing.T) {
	db := database.SetupTestDB(t)
	ctx := context.Background()

	_, err := db.GetPool().Exec(ctx, "CREATE SCHEMA IF NOT EXISTS hoopslines_test")
	require.NoError(t, err)

	tbl := Table{Schema: "hoopslines_test", Name: "lines_null_underdog"}
	name := tbl.Identifier().Sanitize()
	_, err = db.GetPool().Exec(ctx, "DROP TABLE IF EXISTS "+name)
	require.NoError(t, err)
	_, err = db.GetPool().Exec(ctx, `CREATE TABLE `+name+` (
		game_date DATE NOT NULL, home_team TEXT NOT NULL, away_team TEXT NOT NULL,
		favorite TEXT NOT NULL, underdog TEXT, line NUMERIC(5, 1) NOT NULL,
		over_under NUMERIC(5, 1) NOT NULL, total_points INTEGER NOT NULL,
		home_score INTEGER NOT NULL, away_score INTEGER NOT NULL,
		favorite_covered BOOLEAN NOT NULL, underdog_covered BOOLEAN NOT NULL,
		over_hit BOOLEAN NOT NULL, under_hit BOOLEAN NOT NULL)`)
	require.NoError(t, err)
	_, err = db.GetPool().Exec(ctx, `INSERT INTO `+name+` VALUES
		('2023-10-25', 'BOS', 'NYK', 'BOS', NULL, -7.5, 215.5, 210, 110, 100, true, false, false, true)`)
	require.NoError(t, err)

	lines, err := NewPostgresLineRepository(db, tbl).List(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "", lines[0].Underdog)
	assert.Equal(t, "BOS", lines[0].Favorite)
	assert.Equal(t, "-7.5", lines[0].Line.String())
}
