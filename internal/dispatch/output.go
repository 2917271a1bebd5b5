package dispatch

import (
	"io"
	"os"
)

// truncationNotice is appended when an output artifact exceeds the
// ledger bound, so overflow is visible instead of silently dropped.
const truncationNotice = "\n[output truncated: artifact exceeds ledger limit]"

// ReadOutputArtifact reads a worker's result artifact, bounded to
// maxOutputBytes. Returns the (possibly truncated) content and whether
// a non-empty artifact exists. Unreadable files count as absent.
func ReadOutputArtifact(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	// Read one byte past the bound to detect overflow.
	data, err := io.ReadAll(io.LimitReader(f, maxOutputBytes+1))
	if err != nil || len(data) == 0 {
		return "", false
	}

	if len(data) > maxOutputBytes {
		return string(data[:maxOutputBytes]) + truncationNotice, true
	}
	return string(data), true
}
