package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// DefaultTable is the main event table created by the migrations.
const DefaultTable = "joblog.job_events"

// TableIdent splits an optionally schema-qualified table name into a
// pgx.Identifier.
func TableIdent(name string) (pgx.Identifier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty table name")
	}
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid table name %q", name)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid table name %q", name)
		}
	}
	return pgx.Identifier(parts), nil
}

// Render substitutes {{key}} placeholders in a query template.
func Render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// ColumnList returns quoted column names joined by commas, each prefixed with
// alias when it is not empty.
func ColumnList(columns []string, alias string) string {
	out := make([]string, len(columns))
	for i, c := range columns {
		q := pgx.Identifier{c}.Sanitize()
		if alias != "" {
			q = alias + "." + q
		}
		out[i] = q
	}
	return strings.Join(out, ", ")
}
