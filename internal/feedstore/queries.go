package feedstore

import (
	"database/sql"
	"fmt"
	"time"
)

// Source is one provider-registered package source. Trusted is the host's
// trust decision from AddPackageSource; the engine never sees it.
type Source struct {
	Name         string
	Location     string
	Trusted      bool
	RegisteredAt time.Time
}

// UpsertSource inserts or replaces a source registration.
func (s *Store) UpsertSource(src *Source) error {
	query := `
		INSERT OR REPLACE INTO sources (name, location, trusted, registered_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		src.Name,
		src.Location,
		src.Trusted,
		src.RegisteredAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert source %s: %w", src.Name, err)
	}
	return nil
}

// RemoveSource deletes a source registration by name. Removing an unknown
// source is not an error; the engine-side removal already reports that.
func (s *Store) RemoveSource(name string) error {
	if _, err := s.db.Exec(`DELETE FROM sources WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to remove source %s: %w", name, err)
	}
	return nil
}

// GetSource retrieves a source by name. Returns (nil, nil) when the source
// was never registered with the provider.
func (s *Store) GetSource(name string) (*Source, error) {
	query := `
		SELECT name, location, trusted, registered_at
		FROM sources
		WHERE name = ?
	`

	var src Source
	var registeredAt string

	err := s.db.QueryRow(query, name).Scan(&src.Name, &src.Location, &src.Trusted, &registeredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source %s: %w", name, err)
	}

	src.RegisteredAt, err = time.Parse(time.RFC3339, registeredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse registered_at for %s: %w", name, err)
	}
	return &src, nil
}

// ListSources returns all registered sources ordered by name.
func (s *Store) ListSources() ([]*Source, error) {
	query := `
		SELECT name, location, trusted, registered_at
		FROM sources
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []*Source
	for rows.Next() {
		var src Source
		var registeredAt string
		if err := rows.Scan(&src.Name, &src.Location, &src.Trusted, &registeredAt); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		src.RegisteredAt, err = time.Parse(time.RFC3339, registeredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse registered_at for %s: %w", src.Name, err)
		}
		sources = append(sources, &src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate source rows: %w", err)
	}
	return sources, nil
}

// IsTrusted reports whether a source is registered and marked trusted.
// Unknown sources are untrusted.
func (s *Store) IsTrusted(name string) (bool, error) {
	src, err := s.GetSource(name)
	if err != nil {
		return false, err
	}
	return src != nil && src.Trusted, nil
}

// SetMeta stores one provider metadata value (e.g. the current session id).
func (s *Store) SetMeta(key, value string) error {
	query := `INSERT OR REPLACE INTO provider_meta (key, value) VALUES (?, ?)`
	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}

// GetMeta retrieves one provider metadata value, or "" when unset.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM provider_meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return value, nil
}
