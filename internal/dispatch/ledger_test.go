package dispatch

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder/agentdeck/internal/store"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	return NewLedger(s)
}

func seedTask(t *testing.T, l *Ledger, id string, status Status) *Task {
	t.Helper()
	task := &Task{
		ID:        id,
		Target:    "codex",
		Input:     "do the thing",
		Status:    status,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	require.NoError(t, l.Append(task))
	return task
}

func TestLedger_AppendAndGet(t *testing.T) {
	l := newTestLedger(t)
	seedTask(t, l, "task-1", StatusCreated)

	got, err := l.Get("task-1")
	require.NoError(t, err)
	assert.Equal(t, "codex", got.Target)
	assert.Equal(t, StatusCreated, got.Status)
}

func TestLedger_AppendDuplicateID(t *testing.T) {
	l := newTestLedger(t)
	seedTask(t, l, "task-1", StatusCreated)

	err := l.Append(&Task{ID: "task-1", Target: "codex", Status: StatusCreated})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLedger_GetUnknownID(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.Get("task-nope")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "task-nope", nf.ID)
}

func TestLedger_GetReturnsCopy(t *testing.T) {
	l := newTestLedger(t)
	seedTask(t, l, "task-1", StatusCreated)

	got, err := l.Get("task-1")
	require.NoError(t, err)
	got.Status = StatusFailed

	again, err := l.Get("task-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, again.Status)
}

func TestLedger_ListNewestFirstWithLimit(t *testing.T) {
	l := newTestLedger(t)
	seedTask(t, l, "task-1", StatusCreated)
	seedTask(t, l, "task-2", StatusCreated)
	seedTask(t, l, "task-3", StatusCreated)

	all := l.List("", "", 0)
	require.Len(t, all, 3)
	assert.Equal(t, "task-3", all[0].ID)
	assert.Equal(t, "task-1", all[2].ID)

	capped := l.List("", "", 1)
	require.Len(t, capped, 1)
	assert.Equal(t, "task-3", capped[0].ID)
}

func TestLedger_ListFilters(t *testing.T) {
	l := newTestLedger(t)
	seedTask(t, l, "task-1", StatusCreated)
	seedTask(t, l, "task-2", StatusFailed)
	other := &Task{ID: "task-3", Target: "gemini", Status: StatusCreated}
	require.NoError(t, l.Append(other))

	byStatus := l.List("", StatusFailed, 0)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "task-2", byStatus[0].ID)

	byTarget := l.List("gemini", "", 0)
	require.Len(t, byTarget, 1)
	assert.Equal(t, "task-3", byTarget[0].ID)
}

func TestLedger_NonTerminal(t *testing.T) {
	l := newTestLedger(t)
	seedTask(t, l, "task-1", StatusCreated)
	seedTask(t, l, "task-2", StatusRunning)
	seedTask(t, l, "task-3", StatusCompleted)
	seedTask(t, l, "task-4", StatusCancelled)

	pending := l.NonTerminal()
	require.Len(t, pending, 2)
	assert.Equal(t, "task-1", pending[0].ID)
	assert.Equal(t, "task-2", pending[1].ID)
}

func TestLedger_TransitionSetsCompletedAt(t *testing.T) {
	l := newTestLedger(t)
	seedTask(t, l, "task-1", StatusRunning)

	code := 0
	prev, updated, err := l.Transition("task-1", StatusCompleted, func(task *Task) {
		task.ExitCode = &code
		task.Output = "done"
	})
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, prev)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.NotEmpty(t, updated.CompletedAt)
	assert.Equal(t, "done", updated.Output)
	require.NotNil(t, updated.ExitCode)
	assert.Equal(t, 0, *updated.ExitCode)
}

func TestLedger_TransitionTerminalIsGuarded(t *testing.T) {
	l := newTestLedger(t)
	seedTask(t, l, "task-1", StatusRunning)

	_, _, err := l.Transition("task-1", StatusCancelled, nil)
	require.NoError(t, err)

	// A different terminal status never overwrites the first verdict.
	_, _, err = l.Transition("task-1", StatusFailed, nil)
	var pre *PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, StatusCancelled, pre.Status)

	got, err := l.Get("task-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestLedger_TransitionSameTerminalIsNoOp(t *testing.T) {
	l := newTestLedger(t)
	seedTask(t, l, "task-1", StatusRunning)

	_, first, err := l.Transition("task-1", StatusFailed, func(task *Task) {
		task.Error = "first verdict"
	})
	require.NoError(t, err)

	prev, second, err := l.Transition("task-1", StatusFailed, func(task *Task) {
		task.Error = "second verdict must not apply"
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, prev)
	assert.Equal(t, first.Error, second.Error)
	assert.Equal(t, first.CompletedAt, second.CompletedAt)
}

func TestLedger_TransitionInvalidStatus(t *testing.T) {
	l := newTestLedger(t)
	seedTask(t, l, "task-1", StatusCreated)

	_, _, err := l.Transition("task-1", Status("exploded"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestLedger_TransitionUnknownID(t *testing.T) {
	l := newTestLedger(t)

	_, _, err := l.Transition("task-missing", StatusFailed, nil)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestLedger_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	require.NoError(t, err)
	l := NewLedger(s)
	seedTask(t, l, "task-1", StatusRunning)

	s2, err := store.New(dir, nil)
	require.NoError(t, err)
	reopened := NewLedger(s2)

	got, err := reopened.Get("task-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
}
