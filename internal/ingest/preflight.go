package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/joblog/internal/dedup"
	"github.com/gyeh/joblog/internal/exportfile"
	"github.com/gyeh/joblog/internal/model"
	"github.com/gyeh/joblog/internal/normalize"
)

// PreflightResult holds everything learned about an export before merging.
type PreflightResult struct {
	// FilePath is the export path as passed to Preflight.
	FilePath string
	// FileSHA256 is the hex-encoded SHA-256 digest of the export.
	FileSHA256 string
	// FileSize is the export size in bytes.
	FileSize int64
	// DuplicateOf names the file in the same directory with identical
	// content. Empty when the export is new or the check was skipped.
	DuplicateOf string
	// Batch is the parsed export; nil for duplicates.
	Batch model.EventBatch
	// Stats describes the parse.
	Stats exportfile.Stats
}

// Duplicate reports whether the export repeats a file already kept.
func (r *PreflightResult) Duplicate() bool {
	return r.DuplicateOf != ""
}

// PreflightOptions selects how an export is checked and parsed.
type PreflightOptions struct {
	Source         string
	Dir            string // directory searched for identical files
	Charset        string
	Marker         string
	CheckDuplicate bool
}

// Preflight hashes the export, checks it against the other files in
// opts.Dir and, when it is new, parses it.
func Preflight(log zerolog.Logger, dd *dedup.Deduplicator, path string, opts PreflightOptions) (*PreflightResult, error) {
	start := time.Now()

	sha, err := normalize.FileHash(path)
	if err != nil {
		return nil, fmt.Errorf("preflight hash: %w", err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("preflight stat: %w", err)
	}

	pf := &PreflightResult{FilePath: path, FileSHA256: sha, FileSize: stat.Size()}

	if opts.CheckDuplicate {
		if name, ok := dd.FindDuplicate(path, opts.Dir); ok {
			pf.DuplicateOf = name
			return pf, nil
		}
	}

	batch, st, err := exportfile.ParseFile(path, opts.Source, opts.Charset, exportfile.Options{Marker: opts.Marker})
	if err != nil {
		return nil, fmt.Errorf("preflight parse: %w", err)
	}
	pf.Batch = batch
	pf.Stats = st

	log.Info().
		Str("file", filepath.Base(path)).
		Str("sha256", sha).
		Int64("bytes", pf.FileSize).
		Bool("marker_found", st.MarkerFound).
		Int("rows", st.Rows).
		Int("continuations", st.Continuations).
		Int("malformed", st.Malformed).
		Int("events", st.Events).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")

	return pf, nil
}
