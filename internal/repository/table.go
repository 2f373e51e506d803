package repository

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Table is a schema-qualified table name.
type Table struct {
	Schema string
	Name   string
}

// Identifier returns the quoted-identifier form of the table.
func (t Table) Identifier() pgx.Identifier {
	if t.Schema == "" {
		return pgx.Identifier{t.Name}
	}
	return pgx.Identifier{t.Schema, t.Name}
}

func (t Table) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// WriteMode selects how a derived table is written.
type WriteMode string

const (
	// WriteReplace drops and recreates the table before writing.
	WriteReplace WriteMode = "replace"
	// WriteAppend creates the table if missing and adds rows.
	WriteAppend WriteMode = "append"
)

// ParseWriteMode validates a configured write mode.
func ParseWriteMode(s string) (WriteMode, error) {
	switch WriteMode(s) {
	case WriteReplace, WriteAppend:
		return WriteMode(s), nil
	default:
		return "", fmt.Errorf("unknown write mode %q", s)
	}
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// ColumnTypes infers PostgreSQL column types from the Go types of a sample
// row. Typed nil pointers carry their element type.
func ColumnTypes(row []any) ([]string, error) {
	types := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			return nil, fmt.Errorf("column %d: cannot infer type of untyped nil", i)
		}
		t := reflect.TypeOf(v)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		switch {
		case t == timeType:
			types[i] = "timestamptz"
		case t == decimalType:
			types[i] = "numeric"
		default:
			switch t.Kind() {
			case reflect.Bool:
				types[i] = "boolean"
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				types[i] = "bigint"
			case reflect.Float32, reflect.Float64:
				types[i] = "double precision"
			case reflect.String:
				types[i] = "text"
			default:
				return nil, fmt.Errorf("column %d: unsupported type %s", i, t)
			}
		}
	}
	return types, nil
}

// CreateTableSQL renders a CREATE TABLE statement for the columns.
func CreateTableSQL(table Table, columns, types []string, ifNotExists bool) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(table.Identifier().Sanitize())
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{c}.Sanitize())
		b.WriteByte(' ')
		b.WriteString(types[i])
	}
	b.WriteString(")")
	return b.String()
}

// copyValue converts values the COPY protocol cannot encode directly.
func copyValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		return x.InexactFloat64()
	default:
		return v
	}
}

func copyRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		r := make([]any, len(row))
		for j, v := range row {
			r[j] = copyValue(v)
		}
		out[i] = r
	}
	return out
}
