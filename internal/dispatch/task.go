// Package dispatch launches and supervises external agent workers.
//
// A dispatch spawns the configured wrapper executable detached from the
// controller's process group, records the attempt in a crash-safe task
// ledger, and resolves the outcome from three sources of evidence: the
// in-process exit watcher, a per-task marker file written by the wrapper,
// and the OS process table. The ledger is the single source of truth for
// callers; markers and liveness probes only exist to detect staleness in
// it after a controller restart.
package dispatch

import (
	"strings"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusCreated   Status = "created"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	// StatusTimeout is reserved for wrapper-enforced time budgets. The
	// controller never assigns it, but it is a valid marker token and a
	// valid terminal ledger value.
	StatusTimeout Status = "timeout"
)

// validStatuses is the full marker/ledger vocabulary.
var validStatuses = map[Status]bool{
	StatusCreated:   true,
	StatusRunning:   true,
	StatusCompleted: true,
	StatusFailed:    true,
	StatusCancelled: true,
	StatusTimeout:   true,
}

// ValidStatus reports whether s is a known status token.
func ValidStatus(s Status) bool { return validStatuses[s] }

// IsTerminal reports whether s is a final state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusTimeout:
		return true
	}
	return false
}

// Options are the free-form execution parameters of a dispatch.
type Options struct {
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	Workdir        string `json:"workdir,omitempty"`
	Elevated       bool   `json:"elevated,omitempty"`
	Continue       bool   `json:"continue,omitempty"`
}

// Task is one dispatch attempt, persisted in the ledger.
type Task struct {
	ID          string  `json:"id"`
	Target      string  `json:"target"`
	Input       string  `json:"input"` // truncated to maxInputBytes
	Options     Options `json:"options"`
	SessionPath string  `json:"session_path"`
	OutputPath  string  `json:"output_path"`
	Status      Status  `json:"status"`
	PID         int     `json:"pid,omitempty"`
	ExitCode    *int    `json:"exit_code,omitempty"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt string  `json:"completed_at,omitempty"`
	Error       string  `json:"error,omitempty"`
	Output      string  `json:"output,omitempty"` // truncated to maxOutputBytes
}

const (
	// TaskIDPrefix starts every task identifier.
	TaskIDPrefix = "task-"

	// maxInputBytes bounds the input persisted in the ledger. The full
	// prompt always reaches the worker via argv/env and the prompt file.
	maxInputBytes = 4 * 1024

	// maxOutputBytes bounds the output materialized into the ledger.
	maxOutputBytes = 64 * 1024
)

// NewTaskID mints a unique task identifier.
func NewTaskID() string {
	return TaskIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// truncateInput bounds the persisted copy of the request payload.
func truncateInput(s string) string {
	if len(s) <= maxInputBytes {
		return s
	}
	return s[:maxInputBytes]
}
