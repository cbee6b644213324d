// Package patternstore is the durable, single-writer SQLite-backed store
// for patterns, candidates, and maintenance run records (§4.C). One Store
// serializes all access behind a single open connection and an in-process
// RWMutex, the same discipline the teacher's LocalStore uses for its own
// SQLite-backed shards.
package patternstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"codenerd/internal/logging"
)

// Store is a single SQLite-backed pattern database. All exported methods
// are safe for concurrent use.
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	tripped bool
}

// Open creates the database directory if needed, opens the SQLite file at
// path with a single-writer connection pool, and runs migrations.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("patternstore: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("patternstore: open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logging.StoreDebug("patternstore: pragma %q failed: %v", pragma, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("patternstore: migrate: %w", err)
	}
	logging.Store("patternstore opened at %s", path)
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Tripped reports whether an integrity violation forced the store closed
// for writes until the process reloads it (§7).
func (s *Store) Tripped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tripped
}

func (s *Store) trip(reason string) error {
	s.tripped = true
	logging.Get(logging.CategoryStore).Error("patternstore: store tripped: %s", reason)
	return ErrStoreTripped
}

// commitOrTrip commits tx, tripping the store on failure so that a
// transaction left in an indeterminate state can't be followed by writes
// that assume it succeeded (§7).
func (s *Store) commitOrTrip(tx *sql.Tx, op string) error {
	if err := tx.Commit(); err != nil {
		return s.trip(op + " failed to commit: " + err.Error())
	}
	return nil
}
