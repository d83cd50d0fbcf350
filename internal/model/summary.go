package model

import "time"

// MergeStatus classifies the result of merging one batch into the store.
type MergeStatus int

const (
	NoNewRecords MergeStatus = iota
	Inserted
	StoreError
)

func (s MergeStatus) String() string {
	switch s {
	case Inserted:
		return "inserted"
	case StoreError:
		return "store_error"
	default:
		return "no_new_records"
	}
}

// MergeOutcome is returned by the differential merge and drives the
// caller's file-retention decision.
type MergeOutcome struct {
	Status   MergeStatus
	Inserted int64 // rows appended to the main table
	Staged   int64 // normalized rows loaded into staging
	Dropped  int64 // records rejected by normalization
	Err      error // set when Status is StoreError
}

// Disposition is the terminal state of one source in a run.
type Disposition string

const (
	AcquisitionFailed Disposition = "acquisition_failed"
	DuplicateSkipped  Disposition = "duplicate_skipped"
	EmptySkipped      Disposition = "empty_skipped"
	Merged            Disposition = "merged"
	StoreErrorKept    Disposition = "store_error_retained"
)

// SourceSummary captures what happened to one source during a run.
type SourceSummary struct {
	Source      string
	FilePath    string
	FileSHA256  string
	Disposition Disposition
	DuplicateOf string
	EventsRead  int
	Outcome     MergeOutcome
	Deleted     bool
	Err         error
	Duration    time.Duration
}

// RunSummary aggregates the per-source summaries of one run.
type RunSummary struct {
	Sources  []SourceSummary
	Duration time.Duration
}

// TotalInserted returns the number of rows appended across sources.
func (r *RunSummary) TotalInserted() int64 {
	var n int64
	for _, s := range r.Sources {
		n += s.Outcome.Inserted
	}
	return n
}

// Failed reports whether any source ended in an acquisition or store failure.
func (r *RunSummary) Failed() bool {
	for _, s := range r.Sources {
		if s.Disposition == AcquisitionFailed || s.Disposition == StoreErrorKept {
			return true
		}
	}
	return false
}
