package state

import (
	"fmt"
	"sort"
	"time"

	"github.com/calder/agentdeck/internal/store"
)

// Member is one agent in a team roster.
type Member struct {
	Name  string `json:"name"`
	Agent string `json:"agent,omitempty"` // dispatch target this member maps to
	Role  string `json:"role,omitempty"`
}

// Team is a named roster of collaborating agents.
type Team struct {
	Name      string   `json:"name"`
	Members   []Member `json:"members"`
	UpdatedAt string   `json:"updated_at"`
}

// TeamsDoc is the persisted teams table.
type TeamsDoc struct {
	SchemaVersion int    `json:"schema_version"`
	Teams         []Team `json:"teams"`
}

func (d *TeamsDoc) SetSchemaVersion(v int) { d.SchemaVersion = v }

// TeamStore persists team rosters, keyed by name.
type TeamStore struct {
	table *store.Table[*TeamsDoc]
}

// NewTeamStore creates the team store on the given store.
func NewTeamStore(s *store.Store) *TeamStore {
	return &TeamStore{
		table: store.NewTable(s, "teams", schemaVersion, func() *TeamsDoc {
			return &TeamsDoc{}
		}),
	}
}

// Save upserts a team by name.
func (ts *TeamStore) Save(team Team) error {
	if team.Name == "" {
		return fmt.Errorf("team name is required")
	}
	for _, m := range team.Members {
		if m.Name == "" {
			return fmt.Errorf("team %q has a member with no name", team.Name)
		}
	}
	_, err := ts.table.Update(func(doc *TeamsDoc) error {
		team.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		for i := range doc.Teams {
			if doc.Teams[i].Name == team.Name {
				doc.Teams[i] = team
				return nil
			}
		}
		doc.Teams = append(doc.Teams, team)
		return nil
	})
	return err
}

// Get returns the named team and whether it exists.
func (ts *TeamStore) Get(name string) (Team, bool) {
	doc := ts.table.Read()
	for _, t := range doc.Teams {
		if t.Name == name {
			return t, true
		}
	}
	return Team{}, false
}

// List returns all teams sorted by name.
func (ts *TeamStore) List() []Team {
	doc := ts.table.Read()
	out := make([]Team, len(doc.Teams))
	copy(out, doc.Teams)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Delete removes the named team.
func (ts *TeamStore) Delete(name string) error {
	_, err := ts.table.Update(func(doc *TeamsDoc) error {
		for i := range doc.Teams {
			if doc.Teams[i].Name == name {
				doc.Teams = append(doc.Teams[:i], doc.Teams[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("team %q not found", name)
	})
	return err
}
