package normalize

import (
	"errors"
	"strings"

	"github.com/gyeh/joblog/internal/model"
)

// Errors returned by ToEvent for records that cannot be keyed.
var (
	ErrMissingLogID     = errors.New("missing log id")
	ErrMissingPrinter   = errors.New("missing printer name")
	ErrMissingStartTime = errors.New("missing or unparseable start date/time")
)

// ToEvent converts a parsed RawEvent into a normalized Event. Count fields
// that are not integers become nil, as do unparseable timestamps. Records
// without a log id, printer name or start time are rejected because they
// cannot be matched against the composite key.
func ToEvent(raw model.RawEvent) (*model.Event, error) {
	e := &model.Event{
		LogID:       strings.TrimSpace(raw.Get(model.FieldLogID)),
		PrinterName: strings.TrimSpace(raw.Get(model.FieldPrinterName)),
		EndDateTime: ParseTimestamp(raw.Get("EndDateTime")),

		LogType:          optStr(raw.Get("LogType")),
		Result:           optStr(raw.Get("Result")),
		OperationMethod:  optStr(raw.Get("OperationMethod")),
		Status:           optStr(raw.Get("Status")),
		CancelledDetails: optStr(raw.Get("CancelledDetails")),
		UserID:           optStr(raw.Get("UserID")),
		HostIPAddress:    optStr(raw.Get("HostIPAddress")),
		Source:           optStr(raw.Get("Source")),
		PrintFileName:    optStr(raw.Get("PrintFileName")),

		CreatedPages: ParseCount(raw.Get("CreatedPages")),
		ExitPages:    ParseCount(raw.Get("ExitPages")),
		ExitPapers:   ParseCount(raw.Get("ExitPapers")),

		PaperSize: optStr(raw.Get("PaperSize")),
		PaperType: optStr(raw.Get("PaperType")),
	}

	if e.LogID == "" {
		return nil, ErrMissingLogID
	}
	if e.PrinterName == "" {
		return nil, ErrMissingPrinter
	}
	start := ParseTimestamp(raw.Get(model.FieldStartDateTime))
	if start == nil {
		return nil, ErrMissingStartTime
	}
	e.StartDateTime = *start
	return e, nil
}

// Events normalizes a batch, preserving order and skipping records that
// ToEvent rejects. It returns the accepted events and the rejected count.
func Events(batch model.EventBatch) ([]model.Event, int) {
	out := make([]model.Event, 0, len(batch))
	dropped := 0
	for _, raw := range batch {
		e, err := ToEvent(raw)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, *e)
	}
	return out, dropped
}

// optStr keeps the value as-is; only an empty string becomes nil.
func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
