package exportfile

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/japanese"

	"github.com/gyeh/joblog/internal/model"
)

const deviceExport = `Job Log
Model,IM C3000

"Start Date/Time","Log ID","End Date/Time","Log Type","Result","Status ","Exit Pages","Paper Size"
"2024/01/15 10:00:00","100","2024/01/15 10:00:30","Print","Completed","Completed","3","A4"
"2024/01/15 10:05:00","101","","Print","","","",""
"","","2024/01/15 10:05:40","","Completed","","",""
"","","","","","Completed","5","A3"
"2024/01/15 10:09:00","102","2024/01/15 10:09:10","Copy","Completed","Completed","1","A4"
Download completed.
`

func TestParse_DeviceLayout(t *testing.T) {
	batch := Parse(deviceExport, "HQ_IMC3000")
	if len(batch) != 3 {
		t.Fatalf("expected 3 events, got %d", len(batch))
	}

	wantIDs := []string{"100", "101", "102"}
	for i, ev := range batch {
		if got := ev.Get(model.FieldLogID); got != wantIDs[i] {
			t.Errorf("event %d: LogID got %q, want %q", i, got, wantIDs[i])
		}
		if got := ev.Get(model.FieldPrinterName); got != "HQ_IMC3000" {
			t.Errorf("event %d: PrinterName got %q", i, got)
		}
	}
}

func TestParse_ContinuationRowsReassembleOneEvent(t *testing.T) {
	text := "Start Date/Time,2024/01/01-2024/01/31\n" +
		"Log ID,Start Date/Time,Result,Paper Size\n" +
		"7,2024/01/02 09:00:00,,\n" +
		",,Completed,\n" +
		",,,A4\n"

	batch, st := ParseWithOptions(text, "P1", Options{})
	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	ev := batch[0]
	checks := map[string]string{
		"LogID":         "7",
		"StartDateTime": "2024/01/02 09:00:00",
		"Result":        "Completed",
		"PaperSize":     "A4",
	}
	for field, want := range checks {
		if got := ev.Get(field); got != want {
			t.Errorf("%s: got %q, want %q", field, got, want)
		}
	}
	if st.Continuations != 2 {
		t.Errorf("continuations: got %d, want 2", st.Continuations)
	}
}

func TestParse_ContinuationFirstValueWins(t *testing.T) {
	text := "Start Date/Time,Log ID,Result\n" +
		"2024/01/02 09:00:00,1,\n" +
		",,Completed\n" +
		",,Cancelled\n"

	batch := Parse(text, "P1")
	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	if got := batch[0].Get("Result"); got != "Completed" {
		t.Errorf("Result: got %q, want first value %q", got, "Completed")
	}
}

func TestParse_MissingMarkerYieldsEmptyBatch(t *testing.T) {
	text := "Log ID,Result\n1,Completed\n"
	batch, st := ParseWithOptions(text, "P1", Options{})
	if len(batch) != 0 {
		t.Errorf("expected empty batch, got %d events", len(batch))
	}
	if st.MarkerFound {
		t.Error("marker should not be found")
	}
}

func TestParse_HeaderOnlyYieldsEmptyBatch(t *testing.T) {
	batch := Parse("\"Start Date/Time\",\"Log ID\"\nDownload completed\n", "P1")
	if len(batch) != 0 {
		t.Errorf("expected empty batch, got %d events", len(batch))
	}
}

func TestParse_EmptyInput(t *testing.T) {
	if batch := Parse("", "P1"); len(batch) != 0 {
		t.Errorf("expected empty batch, got %d", len(batch))
	}
}

func TestParse_FooterExcluded(t *testing.T) {
	text := "\"Start Date/Time:\",\"2024/01/01\"\n" +
		"LogID,Start Date/Time,End Date/Time,Result\n" +
		"100,2024/01/15 10:00:00,2024/01/15 10:01:00,Completed\n" +
		"Download Completed\n"

	batch := Parse(text, "P1")
	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	if got := batch[0].Get(model.FieldLogID); got != "100" {
		t.Errorf("LogID: got %q, want 100", got)
	}
	if got := batch[0].Get("EndDateTime"); got != "2024/01/15 10:01:00" {
		t.Errorf("EndDateTime: got %q", got)
	}
}

func TestParse_HeaderWhitespaceAndCase(t *testing.T) {
	text := "start date/time ,  LOG ID,Status   ,Cancelled: Details\n" +
		"2024/01/15 10:00:00,5,Completed,none\n"

	batch := Parse(text, "P1")
	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	if got := batch[0].Get("Status"); got != "Completed" {
		t.Errorf("Status: got %q", got)
	}
	if got := batch[0].Get("CancelledDetails"); got != "none" {
		t.Errorf("CancelledDetails: got %q", got)
	}
	if got := batch[0].Get(model.FieldLogID); got != "5" {
		t.Errorf("LogID: got %q", got)
	}
}

func TestParse_ShortRowsAndMissingColumns(t *testing.T) {
	text := "Start Date/Time,Log ID,Result,Exit Pages\n" +
		"2024/01/15 10:00:00,9\n"

	batch := Parse(text, "P1")
	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	ev := batch[0]
	if ev["Result"] != nil || ev["ExitPages"] != nil {
		t.Errorf("trailing columns should be absent, got %v / %v", ev["Result"], ev["ExitPages"])
	}
	// Not in the header at all.
	v, ok := ev["PaperType"]
	if !ok || v != nil {
		t.Errorf("PaperType should be present as nil, got ok=%v v=%v", ok, v)
	}
}

func TestParse_OrphanContinuationDropped(t *testing.T) {
	text := "Start Date/Time,Log ID,Result\n" +
		",,Completed\n" +
		"2024/01/15 10:00:00,1,\n"

	batch, st := ParseWithOptions(text, "P1", Options{})
	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	if batch[0]["Result"] != nil {
		t.Errorf("orphan row must not fill the next event, got %q", batch[0].Get("Result"))
	}
	if st.Orphans != 1 {
		t.Errorf("orphans: got %d, want 1", st.Orphans)
	}
}

func TestParse_QuotedNewlineInField(t *testing.T) {
	text := "Start Date/Time,Log ID,Print File Name\n" +
		"2024/01/15 10:00:00,1,\"line one\nline two\"\n" +
		"2024/01/15 10:01:00,2,plain.pdf\n"

	batch := Parse(text, "P1")
	if len(batch) != 2 {
		t.Fatalf("expected 2 events, got %d", len(batch))
	}
	if got := batch[0].Get("PrintFileName"); got != "line one\nline two" {
		t.Errorf("PrintFileName: got %q", got)
	}
}

func TestParse_CustomMarker(t *testing.T) {
	text := "Preamble\nJOB HISTORY\nLog ID,Start Date/Time\n3,2024/01/15 10:00:00\n"
	batch, _ := ParseWithOptions(text, "P1", Options{Marker: "Job History"})
	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
}

func TestParseFile_ShiftJIS(t *testing.T) {
	text := "Start Date/Time,Log ID,User ID\n2024/01/15 10:00:00,1,山田\n"
	enc, err := japanese.ShiftJIS.NewEncoder().String(text)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sjis.csv")
	if err := os.WriteFile(path, []byte(enc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	batch, _, err := ParseFile(path, "P1", "shift_jis", Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	if got := batch[0].Get("UserID"); got != "山田" {
		t.Errorf("UserID: got %q", got)
	}
}

func TestParseFile_Errors(t *testing.T) {
	if _, _, err := ParseFile(filepath.Join(t.TempDir(), "missing.csv"), "P1", "", Options{}); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "x.csv")
	os.WriteFile(path, []byte("x"), 0o644)
	if _, _, err := ParseFile(path, "P1", "no-such-charset", Options{}); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestDecode_UTF8DropsBOMAndInvalidBytes(t *testing.T) {
	got, err := Decode([]byte("\xef\xbb\xbfab\xffc"), "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
}
