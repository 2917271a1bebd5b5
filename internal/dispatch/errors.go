package dispatch

import "fmt"

// ValidationError reports bad or missing dispatch arguments (including an
// unknown target). It is surfaced before any side effect happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// validationf builds a ValidationError from a format string.
func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown task id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %q not found", e.ID)
}

// PreconditionError reports an operation attempted from a task status
// that does not allow it. The offending status is named so the caller
// can see what state the task is actually in.
type PreconditionError struct {
	Op     string
	Status Status
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot %s task in status %q", e.Op, e.Status)
}

// SpawnError reports that the worker process could not be launched —
// the wrapper executable is missing or the OS refused to start it.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning worker: %v", e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
