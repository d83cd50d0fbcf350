package acquire

import (
	"context"
	"fmt"
	"os"
)

// Local copies an export that another tool left at req.SourcePath.
type Local struct{}

// Acquire copies req.SourcePath into req.Dir/req.FileName.
func (Local) Acquire(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Source: req.Source, Err: err}
	}
	f, err := os.Open(req.SourcePath)
	if err != nil {
		return "", &Error{Source: req.Source, Err: fmt.Errorf("open export: %w", err)}
	}
	defer f.Close()

	path, err := save(req.Dir, req.FileName, f)
	if err != nil {
		return "", &Error{Source: req.Source, Err: err}
	}
	return path, nil
}
