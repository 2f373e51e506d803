package repository

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

// columnList renders quoted column names separated by commas.
func columnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
