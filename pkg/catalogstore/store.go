// Package catalogstore provides SQLite persistence for fault catalogs and
// calculation runs.
package catalogstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gridcode-frt/frt-go/pkg/fault"
)

var (
	// ErrCatalogNotFound is returned for catalog keys not in the store.
	ErrCatalogNotFound = errors.New("catalog not found")

	// ErrTestNotFound is returned for test ids not in a catalog.
	ErrTestNotFound = errors.New("test not found")

	// ErrRunNotFound is returned for unknown run ids.
	ErrRunNotFound = errors.New("run not found")
)

// Store persists catalogs and runs in a SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// CatalogInfo summarizes a stored catalog.
type CatalogInfo struct {
	Key         fault.Key `json:"key"`
	Description string    `json:"description,omitempty"`
	Tests       int       `json:"tests"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Open opens or creates the store at path.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.HasPrefix(path, ":memory:") {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalogs (
		key TEXT PRIMARY KEY,
		standard TEXT NOT NULL,
		type INTEGER NOT NULL,
		description TEXT,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS fault_tests (
		catalog_key TEXT NOT NULL REFERENCES catalogs(key) ON DELETE CASCADE,
		test_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		duration REAL NOT NULL,
		fault_type INTEGER NOT NULL,
		uf REAL NOT NULL,
		leg TEXT NOT NULL,
		qset TEXT NOT NULL,
		phases INTEGER NOT NULL,
		uv REAL NOT NULL,
		PRIMARY KEY (catalog_key, test_id)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		project TEXT,
		catalog_key TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME,
		total_count INTEGER DEFAULT 0,
		computed_count INTEGER DEFAULT 0,
		switching_count INTEGER DEFAULT 0,
		failed_count INTEGER DEFAULT 0,
		defaults_count INTEGER DEFAULT 0,
		report BLOB
	);

	CREATE TABLE IF NOT EXISTS run_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		test_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		psif REAL NOT NULL,
		rf REAL,
		xf REAL,
		doubled BOOLEAN NOT NULL DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_fault_tests_position ON fault_tests(catalog_key, position);
	CREATE INDEX IF NOT EXISTS idx_run_results_run_id ON run_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
