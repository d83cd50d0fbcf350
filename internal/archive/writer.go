package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/joblog/internal/model"
)

// Write stores events as a Parquet file at path, creating parent directories.
// The file is written under a temporary name and renamed into place.
func Write(path string, events []model.Event) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}

	rows := make([]Row, len(events))
	for i := range events {
		rows[i] = FromEvent(&events[i])
	}

	w := parquet.NewGenericWriter[Row](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write archive rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("close archive writer: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close archive file: %w", err)
	}
	return os.Rename(tmp, path)
}

// FileName returns the archive file name for an export, e.g.
// "20240131_101500_HQ-IMC3000_JobLog.csv" becomes
// "20240131_101500_HQ-IMC3000_JobLog.parquet".
func FileName(exportPath string) string {
	base := filepath.Base(exportPath)
	return base[:len(base)-len(filepath.Ext(base))] + ".parquet"
}
