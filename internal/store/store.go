// Package store implements the durable document store: one versioned
// JSON file per logical table, written atomically.
//
// Reads never fail: a missing or unparsable file yields a fresh default
// document, so storage corruption degrades to an empty table instead of
// crashing a tool call. Writes go through a temp file, fsync, and rename,
// so a reader never observes a half-written document.
//
// There is no cross-process locking. All mutation for a given data dir
// happens from a single controller process (enforced by the instance
// lock at startup); Update serializes writers within this process only.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// renameFile is a package-level var to allow crash-injection in tests.
var renameFile = os.Rename

// Doc is implemented by every persisted document type. Read normalizes
// the schema_version field to the table's expected version; no other
// migration is applied yet.
type Doc interface {
	SetSchemaVersion(v int)
}

// Store is a directory of JSON document tables.
type Store struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a Store rooted at dir, creating it if needed.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Table binds a document type to a named table in a Store.
type Table[T Doc] struct {
	store   *Store
	name    string
	version int
	fresh   func() T
}

// NewTable creates a table handle. fresh must return an empty document;
// it is used whenever the backing file is missing or unreadable.
func NewTable[T Doc](s *Store, name string, version int, fresh func() T) *Table[T] {
	return &Table[T]{store: s, name: name, version: version, fresh: fresh}
}

// Read returns the current document. Missing and corrupt files both
// yield a fresh default; corruption is logged, never surfaced.
func (t *Table[T]) Read() T {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.read()
}

// read loads the document without taking the store lock.
func (t *Table[T]) read() T {
	doc := t.fresh()

	data, err := os.ReadFile(t.store.path(t.name))
	if err != nil {
		if !os.IsNotExist(err) {
			t.store.logger.Warn("table unreadable, using empty default",
				"table", t.name, "error", err)
		}
		doc.SetSchemaVersion(t.version)
		return doc
	}

	if err := json.Unmarshal(data, doc); err != nil {
		t.store.logger.Warn("table corrupted, using empty default",
			"table", t.name, "error", err)
		doc = t.fresh()
	}

	doc.SetSchemaVersion(t.version)
	return doc
}

// Update applies fn to the current document and persists the result as
// a single read-transform-write step. If fn returns an error, nothing
// is written and the error is returned unchanged.
func (t *Table[T]) Update(fn func(T) error) (T, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	doc := t.read()
	if err := fn(doc); err != nil {
		return doc, err
	}
	if err := t.write(doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// write serializes doc to a temp file in the table's directory, flushes
// it, and renames it over the target. A crash mid-write leaves either
// the old document or an orphaned temp file, never a torn document.
func (t *Table[T]) write(doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling table %s: %w", t.name, err)
	}

	target := t.store.path(t.name)
	tmp, err := os.CreateTemp(t.store.dir, t.name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for table %s: %w", t.name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing table %s: %w", t.name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("syncing table %s: %w", t.name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file for table %s: %w", t.name, err)
	}

	if err := renameFile(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing table %s: %w", t.name, err)
	}
	return nil
}
