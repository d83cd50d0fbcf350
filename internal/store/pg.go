package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/joblog/internal/db"
	"github.com/gyeh/joblog/internal/model"
	embedsql "github.com/gyeh/joblog/internal/sql"
)

// PG is a Store backed by a Postgres pool.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG wraps pool as a Store.
func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

// Begin acquires a dedicated connection and opens a read-committed
// transaction on it, so temporary staging tables stay visible to the merge.
func (s *PG) Begin(ctx context.Context) (Tx, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &pgTx{conn: conn, tx: tx}, nil
}

// RecordSource writes one row to joblog.sync_files.
func (s *PG) RecordSource(ctx context.Context, sum model.SourceSummary) error {
	var errText *string
	if sum.Err != nil {
		msg := sum.Err.Error()
		errText = &msg
	}
	var sha *string
	if sum.FileSHA256 != "" {
		sha = &sum.FileSHA256
	}
	name := ""
	if sum.FilePath != "" {
		name = filepath.Base(sum.FilePath)
	}
	_, err := s.pool.Exec(ctx, embedsql.RecordSource,
		sum.Source,
		name,
		sha,
		string(sum.Disposition),
		sum.EventsRead,
		sum.Outcome.Inserted,
		errText,
		sum.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record source %s: %w", sum.Source, err)
	}
	return nil
}

type pgTx struct {
	conn     *pgxpool.Conn
	tx       pgx.Tx
	released bool
}

func (t *pgTx) CreateStaging(ctx context.Context, staging, table string) error {
	tbl, err := db.TableIdent(table)
	if err != nil {
		return err
	}
	q := db.Render(embedsql.CreateStaging, map[string]string{
		"staging": pgx.Identifier{staging}.Sanitize(),
		"table":   tbl.Sanitize(),
	})
	if _, err := t.tx.Exec(ctx, q); err != nil {
		return fmt.Errorf("create staging %s: %w", staging, err)
	}
	return nil
}

func (t *pgTx) LoadStaging(ctx context.Context, staging string, events []model.Event) (int64, error) {
	n, err := t.tx.CopyFrom(ctx, pgx.Identifier{staging}, model.Columns(), db.NewEventSource(events))
	if err != nil {
		return 0, fmt.Errorf("copy into staging %s: %w", staging, err)
	}
	return n, nil
}

func (t *pgTx) AppendAbsent(ctx context.Context, staging, table string) (int64, error) {
	tbl, err := db.TableIdent(table)
	if err != nil {
		return 0, err
	}
	cols := model.Columns()
	q := db.Render(embedsql.AppendAbsent, map[string]string{
		"table":          tbl.Sanitize(),
		"staging":        pgx.Identifier{staging}.Sanitize(),
		"columns":        db.ColumnList(cols, ""),
		"staged_columns": db.ColumnList(cols, "st"),
	})
	tag, err := t.tx.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("append new rows to %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func (t *pgTx) DropStaging(ctx context.Context, staging string) error {
	q := db.Render(embedsql.DropStaging, map[string]string{
		"staging": pgx.Identifier{staging}.Sanitize(),
	})
	if _, err := t.conn.Exec(ctx, q); err != nil {
		return fmt.Errorf("drop staging %s: %w", staging, err)
	}
	return nil
}

func (t *pgTx) Release() {
	if t.released {
		return
	}
	t.released = true
	t.conn.Release()
}
