package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// The marker channel is a file-per-task status flag shared between the
// wrapper and the controller. The wrapper writes terminal tokens when
// the worker finishes; the controller writes "running" at spawn and a
// terminal token on cancel. Reconciliation trusts a terminal marker
// over everything except the ledger's own terminal rows.

// MarkerPath returns the marker file location for a task, derived
// deterministically from the task id inside its session directory.
func MarkerPath(sessionPath, taskID string) string {
	return filepath.Join(sessionPath, taskID+".status")
}

// WriteMarker records a status token in the task's marker file.
func WriteMarker(sessionPath, taskID string, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid marker status %q", status)
	}
	path := MarkerPath(sessionPath, taskID)
	if err := os.WriteFile(path, []byte(status+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing marker for %s: %w", taskID, err)
	}
	return nil
}

// ReadMarker returns the task's marker token and whether a usable one
// exists. A missing file, or a file holding anything outside the status
// vocabulary, reads as absent — a scribbled marker must never crash or
// mislead reconciliation.
func ReadMarker(sessionPath, taskID string) (Status, bool) {
	data, err := os.ReadFile(MarkerPath(sessionPath, taskID))
	if err != nil {
		return "", false
	}
	token := Status(strings.TrimSpace(string(data)))
	if !ValidStatus(token) {
		return "", false
	}
	return token, true
}
