package state

import (
	"fmt"
	"time"

	"github.com/calder/agentdeck/internal/store"
)

// Reminder is one note the agent asked to be reminded about.
type Reminder struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"created_at"`
}

// RemindersDoc is the persisted reminders table.
type RemindersDoc struct {
	SchemaVersion int        `json:"schema_version"`
	NextID        int        `json:"next_id"`
	Reminders     []Reminder `json:"reminders"`
}

func (d *RemindersDoc) SetSchemaVersion(v int) { d.SchemaVersion = v }

// ReminderStore persists reminders with small monotonic ids.
type ReminderStore struct {
	table *store.Table[*RemindersDoc]
}

// NewReminderStore creates the reminder store on the given store.
func NewReminderStore(s *store.Store) *ReminderStore {
	return &ReminderStore{
		table: store.NewTable(s, "reminders", schemaVersion, func() *RemindersDoc {
			return &RemindersDoc{}
		}),
	}
}

// Add appends a reminder and returns it with its assigned id.
func (r *ReminderStore) Add(text string) (Reminder, error) {
	if text == "" {
		return Reminder{}, fmt.Errorf("reminder text is required")
	}
	var added Reminder
	_, err := r.table.Update(func(doc *RemindersDoc) error {
		doc.NextID++
		added = Reminder{
			ID:        doc.NextID,
			Text:      text,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		doc.Reminders = append(doc.Reminders, added)
		return nil
	})
	return added, err
}

// List returns reminders in creation order; when includeDone is false,
// completed reminders are filtered out.
func (r *ReminderStore) List(includeDone bool) []Reminder {
	doc := r.table.Read()
	var out []Reminder
	for _, rem := range doc.Reminders {
		if !includeDone && rem.Done {
			continue
		}
		out = append(out, rem)
	}
	return out
}

// Complete marks a reminder done.
func (r *ReminderStore) Complete(id int) (Reminder, error) {
	var updated Reminder
	_, err := r.table.Update(func(doc *RemindersDoc) error {
		for i := range doc.Reminders {
			if doc.Reminders[i].ID == id {
				doc.Reminders[i].Done = true
				updated = doc.Reminders[i]
				return nil
			}
		}
		return fmt.Errorf("reminder %d not found", id)
	})
	return updated, err
}

// Remove deletes a reminder.
func (r *ReminderStore) Remove(id int) error {
	_, err := r.table.Update(func(doc *RemindersDoc) error {
		for i := range doc.Reminders {
			if doc.Reminders[i].ID == id {
				doc.Reminders = append(doc.Reminders[:i], doc.Reminders[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("reminder %d not found", id)
	})
	return err
}
