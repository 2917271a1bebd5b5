package dispatch

import (
	"errors"
	"fmt"
	"syscall"
)

// reconcile resolves a running ledger row against on-disk evidence:
// a terminal marker wins; otherwise a live process leaves the row
// alone; otherwise the task is resolved terminally — completed when an
// output artifact exists despite the missing marker, failed with
// deadReason when nothing usable remains.
//
// Idempotent by construction: a task that is already terminal is
// returned unchanged, and the guarded ledger transition turns a racing
// second resolution into a no-op.
func (s *Supervisor) reconcile(task *Task, deadReason string) (*Task, error) {
	if task.Status.IsTerminal() {
		return task, nil
	}

	if marker, ok := ReadMarker(task.SessionPath, task.ID); ok && marker.IsTerminal() {
		var output string
		if marker == StatusCompleted {
			output, _ = ReadOutputArtifact(task.OutputPath)
		}
		return s.adopt(task, marker, output, "", "terminal marker found")
	}

	if processAlive(task.PID) {
		return task, nil
	}

	// No terminal evidence and the process is gone. An output artifact
	// is still proof of useful work; otherwise the task failed.
	if output, ok := ReadOutputArtifact(task.OutputPath); ok {
		return s.adopt(task, StatusCompleted, output, "", "output artifact found without marker")
	}
	return s.adopt(task, StatusFailed, "", deadReason, deadReason)
}

// adopt applies a reconciliation verdict through the guarded
// transition. Losing the race to the exit watcher is not an error: the
// winner's terminal value is re-read and returned.
func (s *Supervisor) adopt(task *Task, to Status, output, errMsg, detail string) (*Task, error) {
	_, updated, err := s.transition(task.ID, to, func(t *Task) {
		if output != "" {
			t.Output = output
		}
		if errMsg != "" {
			t.Error = errMsg
		}
	}, detail)
	if err != nil {
		var pre *PreconditionError
		if errors.As(err, &pre) {
			return s.ledger.Get(task.ID)
		}
		return nil, err
	}
	return updated, nil
}

// RecoverOrphans reconciles every non-terminal ledger row at startup.
// Anything that cannot be proven alive is forced to failed, so no task
// stays ambiguous across a controller restart. Per-task errors are
// logged and counted, never fatal: recovery is best-effort and must
// not block the server from coming up.
func (s *Supervisor) RecoverOrphans() error {
	pending := s.ledger.NonTerminal()
	if len(pending) == 0 {
		return nil
	}
	s.logger.Info("recovery scan started", "pending", len(pending))

	var failures int
	for _, task := range pending {
		resolved, err := s.reconcile(task, "orphaned task recovered on startup")
		if err != nil {
			failures++
			s.logger.Error("recovery failed for task", "task_id", task.ID, "error", err)
			continue
		}
		if resolved.Status != task.Status {
			s.logger.Info("recovered task", "task_id", task.ID,
				"from", task.Status, "to", resolved.Status)
		}
	}

	if failures > 0 {
		return fmt.Errorf("recovery scan: %d of %d tasks could not be resolved", failures, len(pending))
	}
	return nil
}

// processAlive probes a PID with the zero signal. Permission errors
// mean the process exists but is inaccessible, so it counts as alive;
// every other failure means it cannot be confirmed and counts as dead.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
