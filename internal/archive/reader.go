// Package archive writes parsed job-log batches to Parquet files and reads
// them back.
package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/joblog/internal/model"
)

// Reader wraps a parquet GenericReader for streaming archived rows.
type Reader struct {
	file   *os.File
	reader *parquet.GenericReader[Row]
}

// Open opens an archive file and returns a streaming Reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	r := parquet.NewGenericReader[Row](pf)
	return &Reader{file: f, reader: r}, nil
}

// NumRows returns the total number of rows in the archive.
func (r *Reader) NumRows() int64 {
	return r.reader.NumRows()
}

// Read reads up to len(rows) records into the provided slice.
// Returns the number of rows read and io.EOF when done.
func (r *Reader) Read(rows []Row) (int, error) {
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read archive rows: %w", err)
	}
	return n, err
}

// Close releases all resources.
func (r *Reader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// ReadAll loads every event from the archive at path.
func ReadAll(path string) ([]model.Event, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	events := make([]model.Event, 0, r.NumRows())
	buf := make([]Row, 256)
	for {
		n, readErr := r.Read(buf)
		for i := 0; i < n; i++ {
			events = append(events, buf[i].Event())
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}
	return events, nil
}
