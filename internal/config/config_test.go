package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `
database:
  dsn: postgres://joblog@localhost/joblog
settings:
  base_download_directory: /var/lib/joblog
  printer_name_prefix: HQ
  log_download_url_template: https://{ip_address}/joblog/export.csv
  download_timeout: 30s
  retry_retained: true
printers:
  - model: IMC3000
    ip_address: 10.0.0.5
    username: admin
    password: secret
  - model: IMC6000
    acquirer: local
    path: /mnt/share/imc6000.csv
    encoding: shift_jis
`

func TestLoad_Valid(t *testing.T) {
	c, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Printers) != 2 {
		t.Fatalf("expected 2 printers, got %d", len(c.Printers))
	}
	if c.Settings.DownloadTimeout != 30*time.Second || !c.Settings.RetryRetained {
		t.Errorf("settings not decoded: %+v", c.Settings)
	}
	if c.Printers[0].Acquirer != AcquireHTTP || c.Printers[1].Acquirer != AcquireLocal {
		t.Errorf("acquirers: %q %q", c.Printers[0].Acquirer, c.Printers[1].Acquirer)
	}
	if got := c.Encoding(c.Printers[1]); got != "shift_jis" {
		t.Errorf("printer encoding override: got %q", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(writeConfig(t, "printers:\n  - model: A\n    acquirer: local\n    path: /tmp/a.csv\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := c.Settings
	if s.BaseDownloadDirectory != "downloads" || s.MainLogTable != "joblog.job_events" ||
		s.LogFileEncoding != "utf-8" || s.DownloadTimeout != 60*time.Second {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no printers", "settings: {}\n", "no printers"},
		{"missing model", "printers:\n  - ip_address: 10.0.0.1\n", "model is required"},
		{"duplicate printer", "settings:\n  log_download_url_template: http://x\nprinters:\n  - model: A\n  - model: A\n", "duplicate printer"},
		{"no url", "printers:\n  - model: A\n", "download_url"},
		{"no ip for template", "settings:\n  log_download_url_template: http://{ip_address}/x\nprinters:\n  - model: A\n", "ip_address is required"},
		{"local without path", "printers:\n  - model: A\n    acquirer: local\n", "path is required"},
		{"unknown acquirer", "printers:\n  - model: A\n    acquirer: ftp\n", "unknown acquirer"},
		{"bad encoding", "printers:\n  - model: A\n    acquirer: local\n    path: /a\n    encoding: klingon\n", "klingon"},
		{"bad table", "settings:\n  main_log_table: a.b.c\nprinters:\n  - model: A\n    acquirer: local\n    path: /a\n", "main_log_table"},
		{"bad yaml", "printers: [\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPrinterPaths(t *testing.T) {
	c, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatal(err)
	}
	p := c.Printers[0]

	if got := c.SourceTag(p); got != "HQ_IMC3000" {
		t.Errorf("SourceTag: got %q", got)
	}
	if got := c.DownloadDir(p); got != filepath.Join("/var/lib/joblog", "IMC3000_logs") {
		t.Errorf("DownloadDir: got %q", got)
	}
	if got := c.DownloadURL(p); got != "https://10.0.0.5/joblog/export.csv" {
		t.Errorf("DownloadURL: got %q", got)
	}
	now := time.Date(2024, 1, 31, 10, 15, 0, 0, time.UTC)
	if got := c.ExportFileName(p, now); got != "20240131_101500_HQ-IMC3000_JobLog.csv" {
		t.Errorf("ExportFileName: got %q", got)
	}

	c.Settings.PrinterNamePrefix = ""
	if got := c.ExportFileName(p, now); got != "20240131_101500_IMC3000_JobLog.csv" {
		t.Errorf("ExportFileName without prefix: got %q", got)
	}
}

func TestPrinterLookup(t *testing.T) {
	c, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"IMC6000", "HQ_IMC6000"} {
		if p, ok := c.Printer(name); !ok || p.Model != "IMC6000" {
			t.Errorf("Printer(%q) = %+v, %v", name, p, ok)
		}
	}
	if _, ok := c.Printer("nope"); ok {
		t.Error("unexpected printer match")
	}
}

func TestResolveDSN(t *testing.T) {
	c := &Config{}
	if _, err := c.ResolveDSN(""); err == nil {
		t.Error("expected error without any DSN")
	}
	if got, _ := c.ResolveDSN("postgres://flag"); got != "postgres://flag" {
		t.Errorf("flag should win, got %q", got)
	}

	t.Setenv("JOBLOG_TEST_PASSWORD", "s3cret")
	c.Database.DSN = "postgres://joblog:${JOBLOG_TEST_PASSWORD}@db/joblog"
	got, err := c.ResolveDSN("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "postgres://joblog:s3cret@db/joblog" {
		t.Errorf("env not expanded: %q", got)
	}
}
