package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/joblog/internal/model"
	"github.com/gyeh/joblog/internal/normalize"
	"github.com/gyeh/joblog/internal/store"
)

// Merge normalizes batch and appends the events whose composite key is not
// yet in table, all in one transaction. Store failures are reported in the
// outcome, never returned or panicked, so a caller can keep its export file
// and move on to the next source.
func Merge(ctx context.Context, st store.Store, log zerolog.Logger, table string, batch model.EventBatch) model.MergeOutcome {
	start := time.Now()

	events, dropped := normalize.Events(batch)
	events, repeats := uniqueByKey(events)
	out := model.MergeOutcome{Dropped: int64(dropped + repeats)}
	if len(events) == 0 {
		out.Status = model.NoNewRecords
		return out
	}

	source := events[0].PrinterName
	staging := StagingName(source)

	staged, inserted, err := mergeTx(ctx, st, log, table, staging, events)
	if err != nil {
		log.Error().
			Err(err).
			Str("source", source).
			Str("table", table).
			Msg("merge rolled back")
		out.Status = model.StoreError
		out.Err = err
		return out
	}

	out.Staged = staged
	out.Inserted = inserted
	if inserted > 0 {
		out.Status = model.Inserted
	} else {
		out.Status = model.NoNewRecords
	}

	log.Info().
		Str("source", source).
		Int64("rows_staged", staged).
		Int64("rows_inserted", inserted).
		Int64("rows_dropped", out.Dropped).
		Dur("duration", time.Since(start)).
		Msg("merge complete")
	return out
}

// mergeTx runs the staging load and the anti-join append inside one
// transaction. The staging table is dropped on every path.
func mergeTx(ctx context.Context, st store.Store, log zerolog.Logger, table, staging string, events []model.Event) (staged, inserted int64, err error) {
	tx, err := st.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin merge: %w", err)
	}
	defer tx.Release()

	cleanupCtx := context.WithoutCancel(ctx)
	defer func() {
		if dropErr := tx.DropStaging(cleanupCtx, staging); dropErr != nil {
			log.Warn().Err(dropErr).Str("staging", staging).Msg("staging cleanup failed")
		}
	}()

	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback(cleanupCtx)
		}
	}()

	if err := tx.CreateStaging(ctx, staging, table); err != nil {
		return 0, 0, err
	}
	staged, err = tx.LoadStaging(ctx, staging, events)
	if err != nil {
		return 0, 0, err
	}
	inserted, err = tx.AppendAbsent(ctx, staging, table)
	if err != nil {
		return 0, 0, err
	}
	finished = true
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit merge: %w", err)
	}
	return staged, inserted, nil
}

// StagingName returns a staging table name unique to this run, e.g.
// "staging_hq_imc3000_1f2e3d4c5b6a".
func StagingName(source string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	part := normalize.IdentPart(source, 32)
	if part == "" {
		return "staging_" + suffix
	}
	return "staging_" + part + "_" + suffix
}

// uniqueByKey keeps the first event for each composite key.
func uniqueByKey(events []model.Event) ([]model.Event, int) {
	seen := make(map[model.Key]bool, len(events))
	out := events[:0]
	repeats := 0
	for _, e := range events {
		k := e.Key()
		if seen[k] {
			repeats++
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out, repeats
}
