// Package report renders analytics tables for the terminal and exports them
// as CSV and HTML files.
package report

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/hoopslines/internal/analytics"
	"github.com/yourusername/hoopslines/internal/logger"
	"github.com/yourusername/hoopslines/internal/models"
)

// Format selects the exported file types.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatBoth Format = "both"
)

// ParseFormat validates an export format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatHTML, FormatBoth:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

func (f Format) extensions() []string {
	switch f {
	case FormatHTML:
		return []string{"html"}
	case FormatBoth:
		return []string{"csv", "html"}
	default:
		return []string{"csv"}
	}
}

// FormatValue renders one cell. Missing values render empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Format(models.DateLayout)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func cells(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = FormatValue(v)
	}
	return out
}

// WriteConsole prints the table with aligned columns.
func WriteConsole(w io.Writer, t analytics.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t")+"\t")
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(cells(row), "\t")+"\t")
	}
	return tw.Flush()
}

// WriteCSV writes the table as a header row followed by one line per team.
func WriteCSV(w io.Writer, t analytics.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(cells(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>Generated {{.Generated}}</p>
<table border="1">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

// WriteHTML writes the table as a standalone HTML page.
func WriteHTML(w io.Writer, t analytics.Table, generated time.Time) error {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = cells(row)
	}
	return htmlTemplate.Execute(w, struct {
		Title     string
		Generated string
		Columns   []string
		Rows      [][]string
	}{
		Title:     Title(t.Report),
		Generated: generated.UTC().Format(time.RFC3339),
		Columns:   t.Columns,
		Rows:      rows,
	})
}

// Title turns a report name into a heading, e.g. "Coverage Summary".
func Title(r analytics.Report) string {
	words := strings.Split(string(r), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Exporter writes report files into one directory.
type Exporter struct {
	dir    string
	format Format
	audit  *logger.AuditLogger
	now    func() time.Time
}

// NewExporter creates an exporter. audit may be nil.
func NewExporter(dir string, format Format, audit *logger.AuditLogger) *Exporter {
	return &Exporter{dir: dir, format: format, audit: audit, now: time.Now}
}

// Export writes every table in the configured formats and returns the paths
// written.
func (e *Exporter) Export(tables []analytics.Table) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var paths []string
	for _, t := range tables {
		for _, ext := range e.format.extensions() {
			path := filepath.Join(e.dir, string(t.Report)+"."+ext)
			if err := e.writeFile(path, ext, t); err != nil {
				return paths, fmt.Errorf("failed to export %s: %w", t.Report, err)
			}
			if e.audit != nil {
				e.audit.LogReportExport(string(t.Report), ext, path, len(t.Rows))
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (e *Exporter) writeFile(path, ext string, t analytics.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if ext == "html" {
		return WriteHTML(f, t, e.now())
	}
	return WriteCSV(f, t)
}
