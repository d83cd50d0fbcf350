package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/joblog/internal/sql"
)

// ApplyMigrations runs all embedded SQL migrations in filename order.
// All DDL uses IF NOT EXISTS so migrations are idempotent.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	entries, err := fs.ReadDir(embedsql.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		data, err := fs.ReadFile(embedsql.Migrations, "migrations/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		log.Info().Str("migration", name).Msg("applying migration")
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
	}

	log.Info().Int("count", len(entries)).Msg("all migrations applied")
	return nil
}

// EnsureTable creates table with the layout of the default event table when
// a run is configured to merge into a different one.
func EnsureTable(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, table string) error {
	ident, err := TableIdent(table)
	if err != nil {
		return err
	}
	def, _ := TableIdent(DefaultTable)
	if ident.Sanitize() == def.Sanitize() {
		return nil
	}
	if len(ident) == 2 {
		schema := pgx.Identifier{ident[0]}.Sanitize()
		if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
			return fmt.Errorf("create schema %s: %w", ident[0], err)
		}
	}
	q := Render(embedsql.EnsureTable, map[string]string{"table": ident.Sanitize()})
	if _, err := pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	log.Info().Str("table", table).Msg("event table ready")
	return nil
}
