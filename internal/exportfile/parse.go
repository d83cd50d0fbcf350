// Package exportfile turns a device job-log export into an EventBatch.
//
// The export is a quoted CSV preceded by a free-form preamble. A logical
// event may span several physical rows: a row whose first column is empty
// continues the event started by the last row that had one.
package exportfile

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/gyeh/joblog/internal/model"
)

const (
	// DefaultMarker is the phrase that opens the tabular part of the export.
	DefaultMarker = "start date/time"
	footerMarker  = "download completed"
)

// Options tunes Parse. The zero value uses DefaultMarker.
type Options struct {
	Marker string
}

// Stats describes what a parse saw.
type Stats struct {
	MarkerFound   bool
	Header        []string
	Rows          int // data rows after the header
	Continuations int // rows merged into an earlier event
	Orphans       int // continuation rows with no event to attach to
	Malformed     int // rows the CSV reader rejected
	Events        int
}

// Parse converts raw export text into events tagged with sourceTag.
// A missing marker or an export without data rows yields an empty batch.
func Parse(text, sourceTag string) model.EventBatch {
	batch, _ := ParseWithOptions(text, sourceTag, Options{})
	return batch
}

// ParseWithOptions is Parse with a configurable marker, also returning Stats.
func ParseWithOptions(text, sourceTag string, opts Options) (model.EventBatch, Stats) {
	var st Stats
	marker := strings.ToLower(strings.TrimSpace(opts.Marker))
	if marker == "" {
		marker = DefaultMarker
	}

	lines := splitLines(text)
	start := findMarker(lines, marker)
	if start < 0 {
		return nil, st
	}
	st.MarkerFound = true

	kept := make([]string, 0, len(lines)-start)
	for _, line := range lines[start:] {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(strings.ToLower(line), footerMarker) {
			continue
		}
		kept = append(kept, line)
	}

	records := readRecords(strings.Join(kept, "\n"), &st)
	if len(records) == 0 {
		return nil, st
	}

	// The marker line is the header row in the device's native layout;
	// otherwise it is a title line and the header follows it.
	header := records[0]
	body := records[1:]
	if resolved(header) < 2 && len(body) > 0 {
		header, body = body[0], body[1:]
	}
	st.Header = header
	st.Rows = len(body)

	columns := make([]string, len(header))
	for i, h := range header {
		if name, ok := model.FieldByHeader(h); ok {
			columns[i] = name
		}
	}

	var acc accumulator
	for _, row := range body {
		acc = acc.step(columns, row)
	}
	batch := acc.flush()
	st.Continuations = acc.continuations
	st.Orphans = acc.orphans

	for _, ev := range batch {
		for _, f := range model.AllFields {
			if _, ok := ev[f.Name]; !ok {
				ev[f.Name] = nil
			}
		}
		tag := sourceTag
		ev[model.FieldPrinterName] = &tag
	}
	st.Events = len(batch)
	return batch, st
}

// accumulator folds physical rows into logical events. current holds the
// event being assembled; it is appended to done when the next event starts
// or when flush is called.
type accumulator struct {
	current       model.RawEvent
	done          model.EventBatch
	continuations int
	orphans       int
}

func (a accumulator) step(columns, row []string) accumulator {
	if startsEvent(row) {
		if a.current != nil {
			a.done = append(a.done, a.current)
		}
		a.current = make(model.RawEvent, len(columns))
		for i := 0; i < len(columns) && i < len(row); i++ {
			if columns[i] == "" {
				continue
			}
			a.current[columns[i]] = optValue(row[i])
		}
		return a
	}

	if a.current == nil {
		a.orphans++
		return a
	}
	a.continuations++
	for i := 0; i < len(columns) && i < len(row); i++ {
		name := columns[i]
		if name == "" || row[i] == "" {
			continue
		}
		if a.current.Get(name) == "" {
			a.current[name] = optValue(row[i])
		}
	}
	return a
}

func (a accumulator) flush() model.EventBatch {
	if a.current != nil {
		return append(a.done, a.current)
	}
	return a.done
}

func startsEvent(row []string) bool {
	return len(row) > 1 && strings.TrimSpace(row[0]) != ""
}

func findMarker(lines []string, marker string) int {
	for i, line := range lines {
		l := strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
		l = strings.ReplaceAll(strings.ToLower(l), `"`, "")
		if strings.HasPrefix(l, marker) {
			return i
		}
	}
	return -1
}

func readRecords(text string, st *Stats) [][]string {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				st.Malformed++
				continue
			}
			break
		}
		records = append(records, rec)
	}
	return records
}

func resolved(header []string) int {
	n := 0
	for _, h := range header {
		if _, ok := model.FieldByHeader(h); ok {
			n++
		}
	}
	return n
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func optValue(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
