package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hoopslines/internal/analytics"
	"github.com/yourusername/hoopslines/internal/models"
)

func coverageTable() analytics.Table {
	return analytics.Table{
		Report:  analytics.ReportCoverage,
		Columns: []string{"team", "covered_as_favorite", "fav_hit_percentage"},
		Rows: [][]any{
			{"BOS", 6, models.Float64Ptr(60)},
			{"NYK", 0, (*float64)(nil)},
		},
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"nil pointer", (*float64)(nil), ""},
		{"pointer", models.Float64Ptr(97.5), "97.5"},
		{"float", 3.5355, "3.5355"},
		{"int", 12, "12"},
		{"decimal", decimal.RequireFromString("200.5"), "200.5"},
		{"date", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "2024-01-02"},
		{"bool", true, "1"},
		{"string", "BOS", "BOS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("HTML")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, coverageTable()))
	assert.Equal(t, "team,covered_as_favorite,fav_hit_percentage\nBOS,6,60\nNYK,0,\n", buf.String())
}

func TestWriteConsole(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConsole(&buf, coverageTable()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "fav_hit_percentage")
	assert.Contains(t, lines[1], "BOS")
	assert.Contains(t, lines[1], "60")
	assert.Equal(t, len(lines[0]), len(lines[1]))
}

func TestWriteHTMLEscapes(t *testing.T) {
	tbl := coverageTable()
	tbl.Rows = append(tbl.Rows, []any{"<script>", 1, nil})

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, tbl, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))

	out := buf.String()
	assert.Contains(t, out, "<title>Coverage Summary</title>")
	assert.Contains(t, out, "<th>fav_hit_percentage</th>")
	assert.Contains(t, out, "<td>BOS</td><td>6</td><td>60</td>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<td><script>")
}

func TestExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	e := NewExporter(dir, FormatBoth, nil)

	paths, err := e.Export([]analytics.Table{coverageTable()})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "coverage_summary.csv"),
		filepath.Join(dir, "coverage_summary.html"),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "team,"))
}
