package model

import "strings"

// Field is one canonical column of the job-log event table.
type Field struct {
	Name    string   // Go-side name, e.g. "LogID"
	Column  string   // table column, e.g. "log_id"
	Kind    Kind     // coercion applied during normalization
	Headers []string // export header labels that resolve to this field
}

// Kind selects how a raw field value is coerced.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindTime
)

// AllFields lists the canonical fields in table column order. PrinterName is
// the source tag and never comes from the export header.
var AllFields = []Field{
	{Name: "LogID", Column: "log_id", Headers: []string{"Log ID"}},
	{Name: "StartDateTime", Column: "start_date_time", Kind: KindTime, Headers: []string{"Start Date/Time"}},
	{Name: "EndDateTime", Column: "end_date_time", Kind: KindTime, Headers: []string{"End Date/Time"}},
	{Name: "LogType", Column: "log_type", Headers: []string{"Log Type"}},
	{Name: "Result", Column: "result", Headers: []string{"Result"}},
	{Name: "OperationMethod", Column: "operation_method", Headers: []string{"Operation Method"}},
	{Name: "Status", Column: "status", Headers: []string{"Status"}},
	{Name: "CancelledDetails", Column: "cancelled_details", Headers: []string{"Cancelled: Details"}},
	{Name: "UserID", Column: "user_id", Headers: []string{"User ID"}},
	{Name: "HostIPAddress", Column: "host_ip_address", Headers: []string{"Host IP Address"}},
	{Name: "Source", Column: "source", Headers: []string{"Source"}},
	{Name: "PrintFileName", Column: "print_file_name", Headers: []string{"Print File Name"}},
	{Name: "CreatedPages", Column: "created_pages", Kind: KindInt, Headers: []string{"Created Pages"}},
	{Name: "ExitPages", Column: "exit_pages", Kind: KindInt, Headers: []string{"Exit Pages"}},
	{Name: "ExitPapers", Column: "exit_papers", Kind: KindInt, Headers: []string{"Exit Papers"}},
	{Name: "PaperSize", Column: "paper_size", Headers: []string{"Paper Size"}},
	{Name: "PaperType", Column: "paper_type", Headers: []string{"Paper Type"}},
	{Name: "PrinterName", Column: "printer_name"},
}

// Field names used outside the table-driven code.
const (
	FieldLogID         = "LogID"
	FieldStartDateTime = "StartDateTime"
	FieldPrinterName   = "PrinterName"
)

var headerIndex = buildHeaderIndex()

func buildHeaderIndex() map[string]string {
	idx := make(map[string]string)
	for _, f := range AllFields {
		if f.Name == FieldPrinterName {
			continue
		}
		idx[HeaderKey(f.Name)] = f.Name
		idx[HeaderKey(f.Column)] = f.Name
		for _, h := range f.Headers {
			idx[HeaderKey(h)] = f.Name
		}
	}
	return idx
}

// HeaderKey folds a header label for matching: lower case, whitespace and
// underscores removed.
func HeaderKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '\r', '\n', '_', '\u00a0', '\ufeff':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FieldByHeader resolves an export header label to its canonical field name.
func FieldByHeader(header string) (string, bool) {
	name, ok := headerIndex[HeaderKey(header)]
	return name, ok
}

// FieldByName returns the canonical Field for name, or ok=false.
func FieldByName(name string) (Field, bool) {
	for _, f := range AllFields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Columns returns the table column names in canonical order.
func Columns() []string {
	cols := make([]string, len(AllFields))
	for i, f := range AllFields {
		cols[i] = f.Column
	}
	return cols
}
