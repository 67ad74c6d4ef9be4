// Package metastore is the relational half of fracta's two-tier cache: a
// SQLite-backed registry of files and the metadata extracted from their
// front matter, used for structural queries (list, filter by tag/area/date)
// that a pure inverted index answers poorly.
package metastore

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/fracta-app/fracta/internal/ferr"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the metadata database for one Location.
type Store struct {
	db *sql.DB
}

// Open opens or creates a metadata store at path, enabling WAL mode and
// foreign keys and applying the schema. If an existing database file has an
// incompatible schema, it is deleted and rebuilt from scratch — the store is
// a derived cache, never a source of truth, so discarding it is always
// safe.
func Open(path string) (*Store, error) {
	store, err := openDB(path)
	if err == nil {
		return store, nil
	}

	msg := err.Error()
	if strings.Contains(msg, "no such column") || strings.Contains(msg, "no such table") {
		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			return nil, ferr.Wrap(ferr.KindIO, path, fmt.Errorf("remove incompatible store: %w", removeErr))
		}
		os.Remove(path + "-wal")
		os.Remove(path + "-shm")
		return openDB(path)
	}
	return nil, err
}

// OpenInMemory opens a transient metadata store for tests and short-lived
// rebuild scratch work.
func OpenInMemory() (*Store, error) {
	return openDB(":memory:")
}

func openDB(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, ferr.Wrap(ferr.KindIO, path, fmt.Errorf("create store directory: %w", err))
		}
	}

	connStr := path
	if path != ":memory:" {
		connStr = "file:" + strings.ReplaceAll(path, " ", "%20")
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, ferr.Wrap(ferr.KindIO, path, fmt.Errorf("open metadata store: %w", err))
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, ferr.Wrap(ferr.KindIO, path, fmt.Errorf("enable WAL mode: %w", err))
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, ferr.Wrap(ferr.KindIO, path, fmt.Errorf("enable foreign keys: %w", err))
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, ferr.Wrap(ferr.KindCorruptedData, path, fmt.Errorf("initialize schema: %w", err))
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection for callers that need raw SQL access
// not covered by this package's query surface.
func (s *Store) DB() *sql.DB {
	return s.db
}
