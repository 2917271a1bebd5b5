package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	SchemaVersion int      `json:"schema_version"`
	Items         []string `json:"items"`
}

func (d *testDoc) SetSchemaVersion(v int) { d.SchemaVersion = v }

func newTestTable(t *testing.T) (*Table[*testDoc], string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)
	table := NewTable(s, "things", 3, func() *testDoc { return &testDoc{} })
	return table, dir
}

func TestRead_MissingFileYieldsDefault(t *testing.T) {
	table, _ := newTestTable(t)

	doc := table.Read()
	assert.Empty(t, doc.Items)
	assert.Equal(t, 3, doc.SchemaVersion)
}

func TestRead_CorruptFileYieldsDefault(t *testing.T) {
	table, dir := newTestTable(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "things.json"), []byte("{not json"), 0o644))

	doc := table.Read()
	assert.Empty(t, doc.Items)
	assert.Equal(t, 3, doc.SchemaVersion)
}

func TestRead_NormalizesSchemaVersion(t *testing.T) {
	table, dir := newTestTable(t)

	content := `{"schema_version": 99, "items": ["a"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "things.json"), []byte(content), 0o644))

	doc := table.Read()
	assert.Equal(t, 3, doc.SchemaVersion)
	assert.Equal(t, []string{"a"}, doc.Items)
}

func TestUpdate_RoundTrip(t *testing.T) {
	table, _ := newTestTable(t)

	_, err := table.Update(func(doc *testDoc) error {
		doc.Items = append(doc.Items, "first", "second")
		return nil
	})
	require.NoError(t, err)

	doc := table.Read()
	assert.Equal(t, []string{"first", "second"}, doc.Items)
	assert.Equal(t, 3, doc.SchemaVersion)
}

func TestUpdate_FnErrorWritesNothing(t *testing.T) {
	table, dir := newTestTable(t)

	_, err := table.Update(func(doc *testDoc) error {
		doc.Items = append(doc.Items, "keep")
		return nil
	})
	require.NoError(t, err)

	wantErr := errors.New("boom")
	_, err = table.Update(func(doc *testDoc) error {
		doc.Items = append(doc.Items, "discard")
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	doc := table.Read()
	assert.Equal(t, []string{"keep"}, doc.Items)

	// No stray temp files either.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "leftover temp file %s", e.Name())
	}
}

func TestUpdate_CrashBeforeRenameKeepsOldDocument(t *testing.T) {
	table, _ := newTestTable(t)

	_, err := table.Update(func(doc *testDoc) error {
		doc.Items = []string{"original"}
		return nil
	})
	require.NoError(t, err)

	// Simulate a crash between the temp-file write and the rename.
	orig := renameFile
	renameFile = func(oldpath, newpath string) error {
		return errors.New("injected crash")
	}
	defer func() { renameFile = orig }()

	_, err = table.Update(func(doc *testDoc) error {
		doc.Items = []string{"torn"}
		return nil
	})
	require.Error(t, err)

	renameFile = orig
	doc := table.Read()
	assert.Equal(t, []string{"original"}, doc.Items)
}

func TestTables_AreIndependent(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	a := NewTable(s, "a", 1, func() *testDoc { return &testDoc{} })
	b := NewTable(s, "b", 1, func() *testDoc { return &testDoc{} })

	_, err = a.Update(func(doc *testDoc) error {
		doc.Items = []string{"only-a"}
		return nil
	})
	require.NoError(t, err)

	assert.Empty(t, b.Read().Items)
	assert.Equal(t, []string{"only-a"}, a.Read().Items)
}
