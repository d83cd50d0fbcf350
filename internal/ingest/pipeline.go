package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/joblog/internal/acquire"
	"github.com/gyeh/joblog/internal/archive"
	"github.com/gyeh/joblog/internal/config"
	"github.com/gyeh/joblog/internal/dedup"
	"github.com/gyeh/joblog/internal/model"
	"github.com/gyeh/joblog/internal/normalize"
	"github.com/gyeh/joblog/internal/store"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Deps are the collaborators of a run.
type Deps struct {
	Store store.Store
	// Recorder, when set, receives every source summary.
	Recorder store.Recorder
	// Acquirers maps config acquirer kinds to implementations.
	Acquirers map[string]acquire.Acquirer
	Log       zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Run processes every configured printer in order: retry retained exports
// when enabled, acquire a new export, then check, parse and merge it.
// One source's failure never stops the others.
func Run(ctx context.Context, deps Deps, cfg *config.Config) *model.RunSummary {
	start := time.Now()
	run := &model.RunSummary{}

	for _, p := range cfg.Printers {
		if err := ctx.Err(); err != nil {
			deps.Log.Warn().Err(err).Msg("run cancelled")
			break
		}
		run.Sources = append(run.Sources, RunPrinter(ctx, deps, cfg, p)...)
	}

	run.Duration = time.Since(start)
	deps.Log.Info().
		Int("sources", len(cfg.Printers)).
		Int("files", len(run.Sources)).
		Int64("rows_inserted", run.TotalInserted()).
		Bool("failures", run.Failed()).
		Str("total_duration", run.Duration.String()).
		Msg("all configured printers processed")
	return run
}

// RunPrinter handles one printer and returns a summary per export touched.
func RunPrinter(ctx context.Context, deps Deps, cfg *config.Config, p config.Printer) []model.SourceSummary {
	tag := cfg.SourceTag(p)
	dir := cfg.DownloadDir(p)
	log := deps.Log.With().Str("source", tag).Logger()
	var out []model.SourceSummary

	if cfg.Settings.RetryRetained {
		for _, path := range RetainedExports(dir) {
			log.Info().Str("file", filepath.Base(path)).Msg("retrying retained export")
			out = append(out, ProcessFile(ctx, deps, cfg, p, path, FileOptions{}))
		}
	}

	start := time.Now()
	acq, ok := deps.Acquirers[p.Acquirer]
	if !ok {
		err := &PipelineError{Phase: "acquire", Err: fmt.Errorf("no acquirer %q", p.Acquirer)}
		return append(out, finish(ctx, deps, log, model.SourceSummary{
			Source: tag, Disposition: model.AcquisitionFailed, Err: err, Duration: time.Since(start),
		}))
	}

	path, err := acq.Acquire(ctx, acquire.Request{
		Source:     tag,
		URL:        cfg.DownloadURL(p),
		Username:   p.Username,
		Password:   p.Password,
		SourcePath: p.Path,
		Dir:        dir,
		FileName:   cfg.ExportFileName(p, deps.now()),
	})
	if err != nil {
		return append(out, finish(ctx, deps, log, model.SourceSummary{
			Source:      tag,
			Disposition: model.AcquisitionFailed,
			Err:         &PipelineError{Phase: "acquire", Err: err},
			Duration:    time.Since(start),
		}))
	}
	log.Info().Str("file", path).Msg("export acquired")

	return append(out, ProcessFile(ctx, deps, cfg, p, path, FileOptions{CheckDuplicate: true}))
}

// FileOptions controls ProcessFile.
type FileOptions struct {
	// CheckDuplicate compares the export with the other files in its
	// directory before parsing.
	CheckDuplicate bool
	// Keep leaves the export in place whatever the outcome.
	Keep bool
}

// ProcessFile runs one local export through duplicate check, parse and
// merge, then deletes or keeps it according to the outcome. Deletion happens
// only after the outcome is known and at most once.
func ProcessFile(ctx context.Context, deps Deps, cfg *config.Config, p config.Printer, path string, opts FileOptions) model.SourceSummary {
	start := time.Now()
	tag := cfg.SourceTag(p)
	log := deps.Log.With().Str("source", tag).Logger()
	sum := model.SourceSummary{Source: tag, FilePath: path}

	pf, err := Preflight(log, dedup.New(log), path, PreflightOptions{
		Source:         tag,
		Dir:            filepath.Dir(path),
		Charset:        cfg.Encoding(p),
		Marker:         cfg.Settings.HeaderMarker,
		CheckDuplicate: opts.CheckDuplicate,
	})
	remove := func(reason string) bool {
		if opts.Keep {
			return false
		}
		return removeExport(log, path, reason)
	}

	switch {
	case err != nil:
		sum.Err = &PipelineError{Phase: "preflight", Err: err}
		sum.Disposition = model.EmptySkipped
		sum.Deleted = remove(reasonEmpty)

	case pf.Duplicate():
		sum.FileSHA256 = pf.FileSHA256
		sum.DuplicateOf = pf.DuplicateOf
		sum.Disposition = model.DuplicateSkipped
		sum.Deleted = remove(reasonDuplicate)

	case len(pf.Batch) == 0:
		sum.FileSHA256 = pf.FileSHA256
		sum.Disposition = model.EmptySkipped
		sum.Deleted = remove(reasonEmpty)

	default:
		sum.FileSHA256 = pf.FileSHA256
		sum.EventsRead = len(pf.Batch)
		if cfg.Settings.ArchiveDir != "" {
			archiveBatch(log, cfg.Settings.ArchiveDir, tag, path, pf.Batch)
		}

		sum.Outcome = Merge(ctx, deps.Store, log, cfg.Settings.MainLogTable, pf.Batch)
		if sum.Outcome.Status == model.StoreError {
			sum.Err = &PipelineError{Phase: "merge", Err: sum.Outcome.Err}
			sum.Disposition = model.StoreErrorKept
			log.Warn().Str("file", filepath.Base(path)).Msg("database error, export kept for retry")
		} else {
			sum.Disposition = model.Merged
			sum.Deleted = remove(reasonProcessed)
		}
	}

	sum.Duration = time.Since(start)
	return finish(ctx, deps, log, sum)
}

// RetainedExports lists exports left in dir by earlier runs, oldest name
// first. Hidden files (partial downloads) are ignored.
func RetainedExports(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths
}

func archiveBatch(log zerolog.Logger, dir, tag, exportPath string, batch model.EventBatch) {
	events, _ := normalize.Events(batch)
	path := filepath.Join(dir, normalize.IdentPart(tag, 64), archive.FileName(exportPath))
	if err := archive.Write(path, events); err != nil {
		log.Warn().Err(err).Str("archive", path).Msg("archive write failed")
		return
	}
	log.Info().Str("archive", path).Int("events", len(events)).Msg("batch archived")
}

func finish(ctx context.Context, deps Deps, log zerolog.Logger, sum model.SourceSummary) model.SourceSummary {
	if deps.Recorder != nil {
		if err := deps.Recorder.RecordSource(ctx, sum); err != nil {
			log.Warn().Err(err).Msg("could not record source summary")
		}
	}

	name := ""
	if sum.FilePath != "" {
		name = filepath.Base(sum.FilePath)
	}
	ev := log.Info()
	if sum.Err != nil {
		ev = log.Warn().Err(sum.Err)
	}
	ev.Str("disposition", string(sum.Disposition)).
		Str("file", name).
		Int("events_read", sum.EventsRead).
		Int64("rows_inserted", sum.Outcome.Inserted).
		Bool("deleted", sum.Deleted).
		Dur("duration", sum.Duration).
		Msg("source summary")
	return sum
}
