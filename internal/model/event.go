package model

import "time"

// RawEvent is one logical event reassembled from the export, keyed by
// canonical field name. A missing key or nil value means the field is absent.
type RawEvent map[string]*string

// Get returns the value of field name, or "" when absent.
func (e RawEvent) Get(name string) string {
	if v := e[name]; v != nil {
		return *v
	}
	return ""
}

// EventBatch is the ordered result of parsing one export for one source.
type EventBatch []RawEvent

// Event is the normalized, store-ready representation of a job-log entry.
// LogID, PrinterName and StartDateTime form the composite key.
type Event struct {
	LogID         string
	StartDateTime time.Time
	EndDateTime   *time.Time

	LogType          *string
	Result           *string
	OperationMethod  *string
	Status           *string
	CancelledDetails *string
	UserID           *string
	HostIPAddress    *string
	Source           *string
	PrintFileName    *string

	CreatedPages *int64
	ExitPages    *int64
	ExitPapers   *int64

	PaperSize *string
	PaperType *string

	PrinterName string
}

// Key identifies an event across all time.
type Key struct {
	LogID         string
	PrinterName   string
	StartDateTime time.Time
}

// Key returns the composite key of e.
func (e *Event) Key() Key {
	return Key{LogID: e.LogID, PrinterName: e.PrinterName, StartDateTime: e.StartDateTime.UTC()}
}

// CopyValues returns the event values in the same order as Columns(),
// suitable for pgx CopyFromSource.
func (e *Event) CopyValues() []any {
	return []any{
		e.LogID,
		e.StartDateTime,
		e.EndDateTime,
		e.LogType,
		e.Result,
		e.OperationMethod,
		e.Status,
		e.CancelledDetails,
		e.UserID,
		e.HostIPAddress,
		e.Source,
		e.PrintFileName,
		e.CreatedPages,
		e.ExitPages,
		e.ExitPapers,
		e.PaperSize,
		e.PaperType,
		e.PrinterName,
	}
}
