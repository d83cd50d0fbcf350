package main

import (
	"fmt"
	"io"

	"github.com/gyeh/joblog/internal/model"
)

// printRunSummary writes one line per source and a total.
func printRunSummary(w io.Writer, run *model.RunSummary) {
	for _, s := range run.Sources {
		switch s.Disposition {
		case model.AcquisitionFailed:
			fmt.Fprintf(w, "%-24s skipped: download failed (%v)\n", s.Source, s.Err)
		case model.DuplicateSkipped:
			fmt.Fprintf(w, "%-24s no changes: export identical to %s\n", s.Source, s.DuplicateOf)
		case model.EmptySkipped:
			fmt.Fprintf(w, "%-24s export empty or unparseable\n", s.Source)
		case model.Merged:
			fmt.Fprintf(w, "%-24s %d new event(s) inserted (%d read)\n", s.Source, s.Outcome.Inserted, s.EventsRead)
		case model.StoreErrorKept:
			fmt.Fprintf(w, "%-24s database error, export kept: %s\n", s.Source, s.FilePath)
		}
	}
	fmt.Fprintf(w, "Sync complete: %d file(s), %d new event(s) (%.1fs)\n",
		len(run.Sources), run.TotalInserted(), run.Duration.Seconds())
}
