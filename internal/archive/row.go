package archive

import (
	"time"

	"github.com/gyeh/joblog/internal/model"
)

// Row mirrors model.Event in the Parquet archive. Timestamps are stored as
// Unix milliseconds in UTC.
type Row struct {
	LogID            string  `parquet:"log_id"`
	StartUnixMillis  int64   `parquet:"start_unix_ms"`
	EndUnixMillis    *int64  `parquet:"end_unix_ms,optional"`
	LogType          *string `parquet:"log_type,optional"`
	Result           *string `parquet:"result,optional"`
	OperationMethod  *string `parquet:"operation_method,optional"`
	Status           *string `parquet:"status,optional"`
	CancelledDetails *string `parquet:"cancelled_details,optional"`
	UserID           *string `parquet:"user_id,optional"`
	HostIPAddress    *string `parquet:"host_ip_address,optional"`
	Source           *string `parquet:"source,optional"`
	PrintFileName    *string `parquet:"print_file_name,optional"`
	CreatedPages     *int64  `parquet:"created_pages,optional"`
	ExitPages        *int64  `parquet:"exit_pages,optional"`
	ExitPapers       *int64  `parquet:"exit_papers,optional"`
	PaperSize        *string `parquet:"paper_size,optional"`
	PaperType        *string `parquet:"paper_type,optional"`
	PrinterName      string  `parquet:"printer_name"`
}

// FromEvent converts a normalized event to its archive row.
func FromEvent(e *model.Event) Row {
	r := Row{
		LogID:            e.LogID,
		StartUnixMillis:  e.StartDateTime.UTC().UnixMilli(),
		LogType:          e.LogType,
		Result:           e.Result,
		OperationMethod:  e.OperationMethod,
		Status:           e.Status,
		CancelledDetails: e.CancelledDetails,
		UserID:           e.UserID,
		HostIPAddress:    e.HostIPAddress,
		Source:           e.Source,
		PrintFileName:    e.PrintFileName,
		CreatedPages:     e.CreatedPages,
		ExitPages:        e.ExitPages,
		ExitPapers:       e.ExitPapers,
		PaperSize:        e.PaperSize,
		PaperType:        e.PaperType,
		PrinterName:      e.PrinterName,
	}
	if e.EndDateTime != nil {
		ms := e.EndDateTime.UTC().UnixMilli()
		r.EndUnixMillis = &ms
	}
	return r
}

// Event converts an archive row back to a normalized event.
func (r *Row) Event() model.Event {
	e := model.Event{
		LogID:            r.LogID,
		StartDateTime:    time.UnixMilli(r.StartUnixMillis).UTC(),
		LogType:          r.LogType,
		Result:           r.Result,
		OperationMethod:  r.OperationMethod,
		Status:           r.Status,
		CancelledDetails: r.CancelledDetails,
		UserID:           r.UserID,
		HostIPAddress:    r.HostIPAddress,
		Source:           r.Source,
		PrintFileName:    r.PrintFileName,
		CreatedPages:     r.CreatedPages,
		ExitPages:        r.ExitPages,
		ExitPapers:       r.ExitPapers,
		PaperSize:        r.PaperSize,
		PaperType:        r.PaperType,
		PrinterName:      r.PrinterName,
	}
	if r.EndUnixMillis != nil {
		t := time.UnixMilli(*r.EndUnixMillis).UTC()
		e.EndDateTime = &t
	}
	return e
}
