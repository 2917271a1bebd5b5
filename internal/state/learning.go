package state

import (
	"fmt"
	"time"

	"github.com/calder/agentdeck/internal/store"
)

// Lesson is one recorded piece of learned knowledge.
type Lesson struct {
	ID        int    `json:"id"`
	Topic     string `json:"topic"`
	Lesson    string `json:"lesson"`
	CreatedAt string `json:"created_at"`
}

// LearningDoc is the persisted learning table.
type LearningDoc struct {
	SchemaVersion int      `json:"schema_version"`
	NextID        int      `json:"next_id"`
	Lessons       []Lesson `json:"lessons"`
}

func (d *LearningDoc) SetSchemaVersion(v int) { d.SchemaVersion = v }

// LearningStore persists lessons the agent wants future sessions to know.
type LearningStore struct {
	table *store.Table[*LearningDoc]
}

// NewLearningStore creates the learning store on the given store.
func NewLearningStore(s *store.Store) *LearningStore {
	return &LearningStore{
		table: store.NewTable(s, "learning", schemaVersion, func() *LearningDoc {
			return &LearningDoc{}
		}),
	}
}

// Add records a lesson under a topic.
func (l *LearningStore) Add(topic, lesson string) (Lesson, error) {
	if topic == "" || lesson == "" {
		return Lesson{}, fmt.Errorf("topic and lesson are required")
	}
	var added Lesson
	_, err := l.table.Update(func(doc *LearningDoc) error {
		doc.NextID++
		added = Lesson{
			ID:        doc.NextID,
			Topic:     topic,
			Lesson:    lesson,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		doc.Lessons = append(doc.Lessons, added)
		return nil
	})
	return added, err
}

// List returns lessons in creation order, optionally filtered by topic.
func (l *LearningStore) List(topic string) []Lesson {
	doc := l.table.Read()
	var out []Lesson
	for _, lesson := range doc.Lessons {
		if topic != "" && lesson.Topic != topic {
			continue
		}
		out = append(out, lesson)
	}
	return out
}

// Remove deletes a lesson by id.
func (l *LearningStore) Remove(id int) error {
	_, err := l.table.Update(func(doc *LearningDoc) error {
		for i := range doc.Lessons {
			if doc.Lessons[i].ID == id {
				doc.Lessons = append(doc.Lessons[:i], doc.Lessons[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("lesson %d not found", id)
	})
	return err
}
