package dispatch

import (
	"fmt"
	"time"

	"github.com/calder/agentdeck/internal/store"
)

// ledgerSchemaVersion is the current ledger document version.
const ledgerSchemaVersion = 1

// LedgerDoc is the persisted form of the task ledger: one JSON document
// holding every dispatch ever created, oldest first.
type LedgerDoc struct {
	SchemaVersion int     `json:"schema_version"`
	Tasks         []*Task `json:"tasks"`
}

// SetSchemaVersion implements store.Doc.
func (d *LedgerDoc) SetSchemaVersion(v int) { d.SchemaVersion = v }

// Ledger is the authoritative record of every dispatch. All status
// visible to callers comes from here; markers and liveness probes are
// only consulted to detect stale rows.
type Ledger struct {
	table *store.Table[*LedgerDoc]
}

// NewLedger creates the task ledger on the given store.
func NewLedger(s *store.Store) *Ledger {
	return &Ledger{
		table: store.NewTable(s, "tasks", ledgerSchemaVersion, func() *LedgerDoc {
			return &LedgerDoc{}
		}),
	}
}

// Append persists a brand-new task row. Task ids are minted once and
// never reused, so a duplicate id is a programming error.
func (l *Ledger) Append(t *Task) error {
	_, err := l.table.Update(func(doc *LedgerDoc) error {
		for _, existing := range doc.Tasks {
			if existing.ID == t.ID {
				return fmt.Errorf("task id %q already exists in ledger", t.ID)
			}
		}
		doc.Tasks = append(doc.Tasks, t)
		return nil
	})
	return err
}

// Get returns a copy of the task with the given id.
func (l *Ledger) Get(id string) (*Task, error) {
	doc := l.table.Read()
	for _, t := range doc.Tasks {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, &NotFoundError{ID: id}
}

// List returns copies of the most recent tasks first, optionally
// filtered by target and status, capped at limit (0 means no cap).
// This is a pure ledger read; rows may be stale until reconciled.
func (l *Ledger) List(target string, status Status, limit int) []*Task {
	doc := l.table.Read()

	var out []*Task
	for i := len(doc.Tasks) - 1; i >= 0; i-- {
		t := doc.Tasks[i]
		if target != "" && t.Target != target {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		cp := *t
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// NonTerminal returns copies of every task still in a non-terminal
// state. Used by the startup recovery scan.
func (l *Ledger) NonTerminal() []*Task {
	doc := l.table.Read()
	var out []*Task
	for _, t := range doc.Tasks {
		if !t.Status.IsTerminal() {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}

// Transition moves a task to a new status inside the store's
// read-transform-write step, guarding terminal rows: re-applying the
// same terminal status is a no-op, and a terminal row never moves to a
// different status. The guard lives here so that the exit watcher and
// foreground reconciliation can race freely — the loser is a no-op.
//
// mutate, when non-nil, runs only when the transition is applied and
// may set result fields (pid, exit code, output, error). Returns the
// status the row held before the call and a copy of the row after it.
func (l *Ledger) Transition(id string, to Status, mutate func(*Task)) (Status, *Task, error) {
	if !ValidStatus(to) {
		return "", nil, fmt.Errorf("invalid status %q", to)
	}

	var prev Status
	var result *Task
	_, err := l.table.Update(func(doc *LedgerDoc) error {
		for _, t := range doc.Tasks {
			if t.ID != id {
				continue
			}
			prev = t.Status

			if t.Status.IsTerminal() {
				if t.Status == to {
					cp := *t
					result = &cp
					return nil // idempotent re-apply
				}
				return &PreconditionError{Op: "transition", Status: t.Status}
			}

			t.Status = to
			if to.IsTerminal() {
				t.CompletedAt = time.Now().UTC().Format(time.RFC3339)
			}
			if mutate != nil {
				mutate(t)
			}
			cp := *t
			result = &cp
			return nil
		}
		return &NotFoundError{ID: id}
	})
	if err != nil {
		return prev, nil, err
	}
	return prev, result, nil
}
