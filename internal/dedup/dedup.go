// Package dedup detects freshly downloaded exports whose content is identical
// to a file already kept in the same directory.
package dedup

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/gyeh/joblog/internal/normalize"
)

// Deduplicator compares file contents by SHA-256 digest.
type Deduplicator struct {
	log zerolog.Logger
}

// New creates a Deduplicator that reports unreadable files to log.
func New(log zerolog.Logger) *Deduplicator {
	return &Deduplicator{log: log}
}

// IsDuplicate reports whether some other file in dir has exactly the same
// content as candidate.
func (d *Deduplicator) IsDuplicate(candidate, dir string) bool {
	_, ok := d.FindDuplicate(candidate, dir)
	return ok
}

// FindDuplicate returns the name of the first file in dir whose content
// equals candidate. The candidate itself is excluded by file identity, so
// it may live in dir. Files that cannot be hashed are skipped.
func (d *Deduplicator) FindDuplicate(candidate, dir string) (string, bool) {
	cinfo, err := os.Stat(candidate)
	if err != nil {
		d.log.Warn().Err(err).Str("file", candidate).Msg("cannot stat candidate")
		return "", false
	}
	csum, err := normalize.FileHash(candidate)
	if err != nil {
		d.log.Warn().Err(err).Str("file", candidate).Msg("cannot hash candidate")
		return "", false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		d.log.Warn().Err(err).Str("dir", dir).Msg("cannot list directory")
		return "", false
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			d.log.Warn().Err(err).Str("file", path).Msg("cannot stat file, skipping")
			continue
		}
		if !info.Mode().IsRegular() || os.SameFile(cinfo, info) {
			continue
		}
		// Different sizes cannot share a digest.
		if info.Size() != cinfo.Size() {
			continue
		}
		sum, err := normalize.FileHash(path)
		if err != nil {
			d.log.Warn().Err(err).Str("file", path).Msg("cannot hash file, skipping")
			continue
		}
		if sum == csum {
			d.log.Info().
				Str("file", filepath.Base(candidate)).
				Str("duplicate_of", entry.Name()).
				Msg("duplicate content found")
			return entry.Name(), true
		}
	}
	return "", false
}
