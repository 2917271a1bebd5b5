package state

import (
	"fmt"
	"sort"
	"time"

	"github.com/calder/agentdeck/internal/store"
)

// ContextEntry is one shared key-value fact.
type ContextEntry struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

// ContextDoc is the persisted context table.
type ContextDoc struct {
	SchemaVersion int            `json:"schema_version"`
	Entries       []ContextEntry `json:"entries"`
}

func (d *ContextDoc) SetSchemaVersion(v int) { d.SchemaVersion = v }

// ContextStore holds shared context the agent wants to persist across
// sessions: project facts, conventions, current focus.
type ContextStore struct {
	table *store.Table[*ContextDoc]
}

// NewContextStore creates the context store on the given store.
func NewContextStore(s *store.Store) *ContextStore {
	return &ContextStore{
		table: store.NewTable(s, "context", schemaVersion, func() *ContextDoc {
			return &ContextDoc{}
		}),
	}
}

// Set upserts a key.
func (c *ContextStore) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("context key is required")
	}
	_, err := c.table.Update(func(doc *ContextDoc) error {
		now := time.Now().UTC().Format(time.RFC3339)
		for i := range doc.Entries {
			if doc.Entries[i].Key == key {
				doc.Entries[i].Value = value
				doc.Entries[i].UpdatedAt = now
				return nil
			}
		}
		doc.Entries = append(doc.Entries, ContextEntry{Key: key, Value: value, UpdatedAt: now})
		return nil
	})
	return err
}

// Get returns the entry for key and whether it exists.
func (c *ContextStore) Get(key string) (ContextEntry, bool) {
	doc := c.table.Read()
	for _, e := range doc.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return ContextEntry{}, false
}

// Delete removes a key. Deleting an absent key is an error so the
// caller learns the key never existed.
func (c *ContextStore) Delete(key string) error {
	_, err := c.table.Update(func(doc *ContextDoc) error {
		for i := range doc.Entries {
			if doc.Entries[i].Key == key {
				doc.Entries = append(doc.Entries[:i], doc.Entries[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("context key %q not found", key)
	})
	return err
}

// List returns all entries sorted by key.
func (c *ContextStore) List() []ContextEntry {
	doc := c.table.Read()
	out := make([]ContextEntry, len(doc.Entries))
	copy(out, doc.Entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
