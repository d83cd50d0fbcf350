package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/joblog/internal/db"
	"github.com/gyeh/joblog/internal/exportfile"
	"github.com/gyeh/joblog/internal/normalize"
)

// Acquirer kinds.
const (
	AcquireHTTP  = "http"
	AcquireLocal = "local"
)

// Config holds all runtime configuration for a joblog run.
type Config struct {
	Database Database  `yaml:"database"`
	Settings Settings  `yaml:"settings"`
	Printers []Printer `yaml:"printers"`

	// Set from flags, not from the file.
	LogFormat string `yaml:"-"` // "text" or "json"
	LogLevel  string `yaml:"-"`
}

// Database locates the event store.
type Database struct {
	DSN string `yaml:"dsn"`
}

// Settings apply to every printer.
type Settings struct {
	BaseDownloadDirectory  string        `yaml:"base_download_directory"`
	PrinterNamePrefix      string        `yaml:"printer_name_prefix"`
	MainLogTable           string        `yaml:"main_log_table"`
	LogFileEncoding        string        `yaml:"log_file_encoding"`
	HeaderMarker           string        `yaml:"header_marker"`
	LogDownloadURLTemplate string        `yaml:"log_download_url_template"`
	DownloadTimeout        time.Duration `yaml:"download_timeout"`
	InsecureTLS            bool          `yaml:"insecure_tls"`
	RetryRetained          bool          `yaml:"retry_retained"`
	ArchiveDir             string        `yaml:"archive_dir"`
}

// Printer is one device whose job log is harvested.
type Printer struct {
	Model       string `yaml:"model"`
	IPAddress   string `yaml:"ip_address"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Acquirer    string `yaml:"acquirer"`     // "http" (default) or "local"
	DownloadURL string `yaml:"download_url"` // overrides the settings template
	Path        string `yaml:"path"`         // export location for the local acquirer
	Encoding    string `yaml:"encoding"`     // overrides settings.log_file_encoding
}

// Load reads a YAML config file, applies defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	s := &c.Settings
	if s.BaseDownloadDirectory == "" {
		s.BaseDownloadDirectory = "downloads"
	}
	if s.MainLogTable == "" {
		s.MainLogTable = db.DefaultTable
	}
	if s.LogFileEncoding == "" {
		s.LogFileEncoding = "utf-8"
	}
	if s.DownloadTimeout <= 0 {
		s.DownloadTimeout = 60 * time.Second
	}
	for i := range c.Printers {
		if c.Printers[i].Acquirer == "" {
			c.Printers[i].Acquirer = AcquireHTTP
		}
	}
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if len(c.Printers) == 0 {
		return fmt.Errorf("no printers configured")
	}
	if _, err := db.TableIdent(c.Settings.MainLogTable); err != nil {
		return fmt.Errorf("settings.main_log_table: %w", err)
	}
	seen := make(map[string]bool)
	for i, p := range c.Printers {
		if strings.TrimSpace(p.Model) == "" {
			return fmt.Errorf("printers[%d]: model is required", i)
		}
		tag := c.SourceTag(p)
		if seen[tag] {
			return fmt.Errorf("printers[%d]: duplicate printer %q", i, tag)
		}
		seen[tag] = true
		if _, err := exportfile.Decode(nil, c.Encoding(p)); err != nil {
			return fmt.Errorf("printers[%d]: %w", i, err)
		}
		switch p.Acquirer {
		case AcquireHTTP:
			if c.DownloadURL(p) == "" {
				return fmt.Errorf("printers[%d]: download_url or settings.log_download_url_template is required", i)
			}
			if strings.Contains(c.DownloadURL(p), "{ip_address}") && p.IPAddress == "" {
				return fmt.Errorf("printers[%d]: ip_address is required by the download url", i)
			}
		case AcquireLocal:
			if p.Path == "" {
				return fmt.Errorf("printers[%d]: path is required for the local acquirer", i)
			}
		default:
			return fmt.Errorf("printers[%d]: unknown acquirer %q", i, p.Acquirer)
		}
	}
	return nil
}

// ResolveDSN picks the DSN: the flag value if set, else the config file.
func (c *Config) ResolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}
	if c.Database.DSN != "" {
		return os.ExpandEnv(c.Database.DSN), nil
	}
	return "", fmt.Errorf("--dsn, JOBLOG_DB_URL or database.dsn is required")
}

// SourceTag returns the printer name stored with p's events.
func (c *Config) SourceTag(p Printer) string {
	return normalize.SourceTag(c.Settings.PrinterNamePrefix, p.Model)
}

// DownloadDir returns the directory p's exports are saved in.
func (c *Config) DownloadDir(p Printer) string {
	return filepath.Join(c.Settings.BaseDownloadDirectory, p.Model+"_logs")
}

// DownloadURL expands the export URL for p.
func (c *Config) DownloadURL(p Printer) string {
	u := p.DownloadURL
	if u == "" {
		u = c.Settings.LogDownloadURLTemplate
	}
	return strings.ReplaceAll(u, "{ip_address}", p.IPAddress)
}

// Encoding returns the character set of p's exports.
func (c *Config) Encoding(p Printer) string {
	if p.Encoding != "" {
		return p.Encoding
	}
	return c.Settings.LogFileEncoding
}

// ExportFileName names a new export for p, e.g.
// "20240131_101500_HQ-IMC3000_JobLog.csv".
func (c *Config) ExportFileName(p Printer, now time.Time) string {
	name := p.Model
	if c.Settings.PrinterNamePrefix != "" {
		name = c.Settings.PrinterNamePrefix + "-" + p.Model
	}
	return fmt.Sprintf("%s_%s_JobLog.csv", now.Format("20060102_150405"), name)
}

// Printer returns the printer whose model or source tag equals name.
func (c *Config) Printer(name string) (Printer, bool) {
	for _, p := range c.Printers {
		if p.Model == name || c.SourceTag(p) == name {
			return p, true
		}
	}
	return Printer{}, false
}
