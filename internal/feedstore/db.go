// Package feedstore persists the provider's view of registered package
// sources. The engine's own feed list carries no host-level trust flag, so
// AddPackageSource records trust (and registration time) here and
// ResolvePackageSources merges the two views.
package feedstore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is the provider's source registry.
type Store struct {
	db *sql.DB
}

// New opens the registry at dbPath, creating the schema if needed. Use
// ":memory:" for an in-memory registry (useful for testing).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source registry: %w", err)
	}

	// Registry writes are tiny and rare (one row per source change); a
	// single connection keeps sqlite's one-writer rule out of the picture
	// even with the feed watcher goroutine around.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create registry schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the registry.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
