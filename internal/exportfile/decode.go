package exportfile

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/gyeh/joblog/internal/model"
)

// Decode converts export bytes in the named character set to a string.
// An empty charset means UTF-8. Invalid UTF-8 sequences are dropped.
func Decode(data []byte, charset string) (string, error) {
	if strings.TrimSpace(charset) == "" {
		charset = "utf-8"
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", charset, err)
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		s := strings.TrimPrefix(string(data), "\ufeff")
		return strings.ToValidUTF8(s, ""), nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", charset, err)
	}
	return string(out), nil
}

// ParseFile reads and decodes the export at path and parses it.
// The error is non-nil only when the file cannot be read or decoded; an
// export with no usable rows returns an empty batch.
func ParseFile(path, sourceTag, charset string, opts Options) (model.EventBatch, Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read export: %w", err)
	}
	text, err := Decode(data, charset)
	if err != nil {
		return nil, Stats{}, err
	}
	batch, st := ParseWithOptions(text, sourceTag, opts)
	return batch, st, nil
}
