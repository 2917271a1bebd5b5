package state

import (
	"fmt"
	"sort"
	"time"

	"github.com/calder/agentdeck/internal/store"
)

// Workflow is a named, ordered list of steps the agent can replay.
type Workflow struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Steps       []string `json:"steps"`
	UpdatedAt   string   `json:"updated_at"`
}

// WorkflowsDoc is the persisted workflows table.
type WorkflowsDoc struct {
	SchemaVersion int        `json:"schema_version"`
	Workflows     []Workflow `json:"workflows"`
}

func (d *WorkflowsDoc) SetSchemaVersion(v int) { d.SchemaVersion = v }

// WorkflowStore persists named workflows, keyed by name.
type WorkflowStore struct {
	table *store.Table[*WorkflowsDoc]
}

// NewWorkflowStore creates the workflow store on the given store.
func NewWorkflowStore(s *store.Store) *WorkflowStore {
	return &WorkflowStore{
		table: store.NewTable(s, "workflows", schemaVersion, func() *WorkflowsDoc {
			return &WorkflowsDoc{}
		}),
	}
}

// Save upserts a workflow by name.
func (w *WorkflowStore) Save(wf Workflow) error {
	if wf.Name == "" {
		return fmt.Errorf("workflow name is required")
	}
	if len(wf.Steps) == 0 {
		return fmt.Errorf("workflow %q has no steps", wf.Name)
	}
	_, err := w.table.Update(func(doc *WorkflowsDoc) error {
		wf.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		for i := range doc.Workflows {
			if doc.Workflows[i].Name == wf.Name {
				doc.Workflows[i] = wf
				return nil
			}
		}
		doc.Workflows = append(doc.Workflows, wf)
		return nil
	})
	return err
}

// Get returns the named workflow and whether it exists.
func (w *WorkflowStore) Get(name string) (Workflow, bool) {
	doc := w.table.Read()
	for _, wf := range doc.Workflows {
		if wf.Name == name {
			return wf, true
		}
	}
	return Workflow{}, false
}

// List returns all workflows sorted by name.
func (w *WorkflowStore) List() []Workflow {
	doc := w.table.Read()
	out := make([]Workflow, len(doc.Workflows))
	copy(out, doc.Workflows)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Delete removes the named workflow.
func (w *WorkflowStore) Delete(name string) error {
	_, err := w.table.Update(func(doc *WorkflowsDoc) error {
		for i := range doc.Workflows {
			if doc.Workflows[i].Name == name {
				doc.Workflows = append(doc.Workflows[:i], doc.Workflows[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("workflow %q not found", name)
	})
	return err
}
