package ingest

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Reasons passed to removeExport.
const (
	reasonDuplicate = "duplicate"
	reasonEmpty     = "empty or unparseable"
	reasonProcessed = "processed"
)

// removeExport deletes a processed export. A failure is logged and leaves
// the file in place; it never aborts the run.
func removeExport(log zerolog.Logger, path, reason string) bool {
	if err := os.Remove(path); err != nil {
		log.Warn().Err(err).Str("file", path).Str("reason", reason).Msg("could not delete export")
		return false
	}
	log.Info().Str("file", filepath.Base(path)).Str("reason", reason).Msg("deleted export")
	return true
}
