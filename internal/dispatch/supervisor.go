package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/calder/agentdeck/internal/config"
	"github.com/calder/agentdeck/internal/history"
	"github.com/calder/agentdeck/internal/logging"
)

const (
	// Session directory artifact names. The marker file is named from
	// the task id (see MarkerPath).
	inputArtifact  = "input.txt"
	outputArtifact = "output.txt"
	wrapperLogFile = "wrapper.log"

	// defaultTimeoutSeconds is passed to the wrapper when neither the
	// dispatch options nor the target configuration set a budget. The
	// controller itself never enforces it.
	defaultTimeoutSeconds = 3600

	// Environment contract with the wrapper. The prompt also travels
	// as a positional argument; the file covers payloads too large for
	// an argument vector.
	envTaskID     = "AGENTDECK_TASK_ID"
	envSession    = "AGENTDECK_SESSION"
	envPrompt     = "AGENTDECK_PROMPT"
	envPromptFile = "AGENTDECK_PROMPT_FILE"
)

// Supervisor owns the dispatch lifecycle: spawning workers, watching
// their exit, and answering status queries against the ledger.
type Supervisor struct {
	cfg     *config.Config
	ledger  *Ledger
	history *history.Log // nil-safe
	logger  *slog.Logger
}

// NewSupervisor creates a Supervisor. hist may be nil when the history
// subsystem is unavailable.
func NewSupervisor(cfg *config.Config, ledger *Ledger, hist *history.Log) *Supervisor {
	return &Supervisor{
		cfg:     cfg,
		ledger:  ledger,
		history: hist,
		logger:  logging.WithComponent("dispatch"),
	}
}

// Ledger exposes the underlying task ledger (read paths for tools).
func (s *Supervisor) Ledger() *Ledger { return s.ledger }

// Dispatch validates the request, persists a ledger row, spawns the
// wrapper detached, and returns immediately — callers poll GetResult
// for completion. A spawn failure after the row exists is recorded as
// a terminal failed task, not returned as an error, so the attempt
// stays auditable.
func (s *Supervisor) Dispatch(ctx context.Context, target, input string, opts Options) (*Task, error) {
	if target == "" {
		return nil, validationf("'target' is required")
	}
	if input == "" {
		return nil, validationf("'input' is required")
	}

	timeout := opts.TimeoutSeconds
	if s.cfg.KnowsTargets() {
		tgt, ok := s.cfg.FindTarget(target)
		if !ok {
			return nil, validationf("unknown target %q: not in configured targets", target)
		}
		if timeout == 0 {
			timeout = tgt.TimeoutSeconds
		}
	}
	if timeout == 0 {
		timeout = defaultTimeoutSeconds
	}

	// Resolve the wrapper before creating any state: a missing
	// executable is a hard error with no ledger row.
	wrapper, err := resolveWrapper(s.cfg.Wrapper)
	if err != nil {
		return nil, &SpawnError{Err: err}
	}

	id := NewTaskID()
	sessionPath := filepath.Join(s.cfg.SessionsDir, id)
	if err := os.MkdirAll(sessionPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	promptFile := filepath.Join(sessionPath, inputArtifact)
	if err := os.WriteFile(promptFile, []byte(input), 0o644); err != nil {
		return nil, fmt.Errorf("writing input artifact: %w", err)
	}

	outputPath := filepath.Join(sessionPath, outputArtifact)
	task := &Task{
		ID:          id,
		Target:      target,
		Input:       truncateInput(input),
		Options:     opts,
		SessionPath: sessionPath,
		OutputPath:  outputPath,
		Status:      StatusCreated,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.ledger.Append(task); err != nil {
		return nil, fmt.Errorf("persisting task: %w", err)
	}
	s.history.Record(id, "", string(StatusCreated), "dispatched target "+target)

	workdir := opts.Workdir
	if workdir == "" {
		workdir = sessionPath
	}

	// The payload travels via argv and environment only — never
	// interpolated into a shell string.
	args := []string{target, sessionPath, workdir, input}
	if opts.Elevated {
		args = append(args, "--elevated")
	}
	args = append(args, "--timeout", strconv.Itoa(timeout))
	if opts.Continue {
		args = append(args, "--continue")
	}
	args = append(args, "--output", task.OutputPath)

	cmd := exec.Command(wrapper, args...)
	cmd.Dir = sessionPath
	cmd.Env = append(os.Environ(),
		envTaskID+"="+id,
		envSession+"="+sessionPath,
		envPrompt+"="+input,
		envPromptFile+"="+promptFile,
	)
	// Own process group: the worker must outlive a controller restart,
	// and cancel signals the whole group.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	logPath := filepath.Join(sessionPath, wrapperLogFile)
	logf, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		cmd.Stdout = logf
		cmd.Stderr = logf
	}

	startErr := cmd.Start()
	if logf != nil {
		_ = logf.Close() // the child holds its own descriptor
	}
	if startErr != nil {
		msg := fmt.Sprintf("spawn failed: %v", startErr)
		s.logger.Error("worker spawn failed", "task_id", id, "target", target, "error", startErr)
		return s.applyTerminal(id, StatusFailed, func(t *Task) {
			t.Error = msg
		}, msg)
	}

	pid := cmd.Process.Pid
	_, running, err := s.ledger.Transition(id, StatusRunning, func(t *Task) {
		t.PID = pid
	})
	if err != nil {
		// Cancelled between append and spawn confirmation; the watcher
		// still resolves the process.
		s.logger.Warn("running transition rejected", "task_id", id, "error", err)
	} else {
		task = running
		s.history.Record(id, string(StatusCreated), string(StatusRunning), fmt.Sprintf("pid %d", pid))
	}

	if err := WriteMarker(sessionPath, id, StatusRunning); err != nil {
		s.logger.Warn("running marker write failed", "task_id", id, "error", err)
	}

	go s.watch(cmd, id, sessionPath, outputPath)

	s.logger.Info("worker dispatched", "task_id", id, "target", target, "pid", pid)
	return task, nil
}

// watch fires exactly once when the OS reports process termination and
// resolves the task from the exit code and output artifact.
func (s *Supervisor) watch(cmd *exec.Cmd, id, sessionPath, outputPath string) {
	waitErr := cmd.Wait()

	exitCode := 0
	errMsg := ""
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		exitCode = exitErr.ExitCode()
		errMsg = fmt.Sprintf("worker exited with code %d", exitCode)
	default:
		exitCode = -1
		errMsg = fmt.Sprintf("waiting on worker: %v", waitErr)
	}

	status := StatusCompleted
	if exitCode != 0 {
		status = StatusFailed
	}

	if err := WriteMarker(sessionPath, id, status); err != nil {
		s.logger.Warn("terminal marker write failed", "task_id", id, "error", err)
	}

	output, _ := ReadOutputArtifact(outputPath)

	if _, _, err := s.transition(id, status, func(t *Task) {
		t.ExitCode = &exitCode
		t.Output = output
		t.Error = errMsg
	}, fmt.Sprintf("exit code %d", exitCode)); err != nil {
		// A cancel or foreground reconciliation won the race; its
		// terminal value stands.
		s.logger.Debug("exit watcher transition superseded", "task_id", id, "error", err)
		return
	}
	s.logger.Info("worker finished", "task_id", id, "status", status, "exit_code", exitCode)
}

// GetResult returns the current ledger state for id, reconciling a
// running row against on-disk evidence first so callers never see a
// stale "running" when the worker is already done.
func (s *Supervisor) GetResult(id string) (*Task, error) {
	task, err := s.ledger.Get(id)
	if err != nil {
		return nil, err
	}
	if task.Status == StatusRunning {
		return s.reconcile(task, "process exited without status marker")
	}
	return task, nil
}

// Cancel requests termination of a created or running task. The signal
// is best-effort: the row is marked cancelled immediately and a worker
// that ignores SIGTERM diverges until the next reconciliation.
func (s *Supervisor) Cancel(id string) (*Task, error) {
	task, err := s.ledger.Get(id)
	if err != nil {
		return nil, err
	}
	if task.Status != StatusCreated && task.Status != StatusRunning {
		return nil, &PreconditionError{Op: "cancel", Status: task.Status}
	}

	if task.PID > 0 {
		// Signal the process group; fall back to the lone process if
		// group signalling is unavailable.
		if err := syscall.Kill(-task.PID, syscall.SIGTERM); err != nil {
			if err := syscall.Kill(task.PID, syscall.SIGTERM); err != nil {
				s.logger.Warn("cancel signal failed", "task_id", id, "pid", task.PID, "error", err)
			}
		}
	}

	if err := WriteMarker(task.SessionPath, id, StatusCancelled); err != nil {
		s.logger.Warn("cancelled marker write failed", "task_id", id, "error", err)
	}

	_, updated, err := s.transition(id, StatusCancelled, func(t *Task) {
		t.Error = "cancelled by caller"
	}, "cancel requested")
	if err != nil {
		return nil, err
	}
	s.logger.Info("task cancelled", "task_id", id)
	return updated, nil
}

// Retry re-dispatches a failed or cancelled task as a brand-new task.
// The original row is never mutated or resurrected.
func (s *Supervisor) Retry(ctx context.Context, id string) (*Task, error) {
	task, err := s.ledger.Get(id)
	if err != nil {
		return nil, err
	}
	if task.Status != StatusFailed && task.Status != StatusCancelled {
		return nil, &PreconditionError{Op: "retry", Status: task.Status}
	}

	// Prefer the original input artifact: the ledger copy is truncated.
	input := task.Input
	if data, err := os.ReadFile(filepath.Join(task.SessionPath, inputArtifact)); err == nil && len(data) > 0 {
		input = string(data)
	}

	return s.Dispatch(ctx, task.Target, input, task.Options)
}

// List returns the most recent tasks first, filtered and capped. No
// reconciliation: cheap, and a stale running row self-heals on the
// next GetResult.
func (s *Supervisor) List(target string, status Status, limit int) ([]*Task, error) {
	if status != "" && !ValidStatus(status) {
		return nil, validationf("unknown status %q", status)
	}
	return s.ledger.List(target, status, limit), nil
}

// History returns recent status transitions from the audit log.
func (s *Supervisor) History(taskID string, limit int) ([]history.Transition, error) {
	return s.history.Recent(taskID, limit)
}

// transition applies a guarded ledger transition and mirrors it into
// the history log when it actually moved the row.
func (s *Supervisor) transition(id string, to Status, mutate func(*Task), detail string) (Status, *Task, error) {
	prev, task, err := s.ledger.Transition(id, to, mutate)
	if err != nil {
		return prev, nil, err
	}
	if prev != to {
		s.history.Record(id, string(prev), string(to), detail)
	}
	return prev, task, nil
}

// applyTerminal forces a terminal status and returns the updated row.
// Used for spawn failures, where the failed row is the result.
func (s *Supervisor) applyTerminal(id string, to Status, mutate func(*Task), detail string) (*Task, error) {
	_, task, err := s.transition(id, to, mutate, detail)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// resolveWrapper locates the wrapper executable: bare names through
// PATH, anything with a separator as a direct path.
func resolveWrapper(wrapper string) (string, error) {
	if wrapper == "" {
		return "", fmt.Errorf("no wrapper executable configured")
	}
	if filepath.Base(wrapper) != wrapper {
		info, err := os.Stat(wrapper)
		if err != nil {
			return "", fmt.Errorf("wrapper executable %s: %w", wrapper, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("wrapper executable %s is a directory", wrapper)
		}
		return wrapper, nil
	}
	path, err := exec.LookPath(wrapper)
	if err != nil {
		return "", fmt.Errorf("wrapper executable %q not found in PATH: %w", wrapper, err)
	}
	return path, nil
}
