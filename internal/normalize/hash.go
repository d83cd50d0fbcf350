package normalize

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// HashBlockSize is the read size used when hashing files, so memory use does
// not depend on file size.
const HashBlockSize = 64 * 1024

// FileHash computes the hex-encoded SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, HashBlockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
