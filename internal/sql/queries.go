// Package sql embeds the schema migrations and query templates.
//
// Templates contain {{table}}, {{staging}} and {{columns}} placeholders that
// are replaced with sanitized identifiers before execution.
package sql

import (
	"embed"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/create_staging.sql
var CreateStaging string

//go:embed queries/append_absent.sql
var AppendAbsent string

//go:embed queries/drop_staging.sql
var DropStaging string

//go:embed queries/ensure_table.sql
var EnsureTable string

//go:embed queries/record_source.sql
var RecordSource string
