// Package acquire fetches job-log exports from devices into local files.
package acquire

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Request describes one export to fetch.
type Request struct {
	Source     string // printer name, for messages
	URL        string // http acquirer
	Username   string
	Password   string
	SourcePath string // local acquirer
	Dir        string // destination directory
	FileName   string // destination file name
}

// Acquirer produces a local export file or fails. Failures are opaque to
// the caller; they only mean the source is skipped for this run.
type Acquirer interface {
	Acquire(ctx context.Context, req Request) (string, error)
}

// Error wraps an acquisition failure with its source.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("acquire %s: %s", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// save writes r to dir/name through a hidden temporary file so a partial
// download is never seen under its final name.
func save(dir, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close export: %w", err)
	}
	dest := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename export: %w", err)
	}
	return dest, nil
}
