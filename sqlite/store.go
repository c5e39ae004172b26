// Package sqlite persists cache entries in a local SQLite file so the
// console starts warm across sessions. It implements the cache.Store
// interface; entries are stored as JSON under their canonical key.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/wanjohi/go-curator/core/cache"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	key_parts  TEXT NOT NULL,
	entry      TEXT NOT NULL,
	saved_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Store is a SQLite-backed cache.Store.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore opens (creating if needed) the store at path. Pass ":memory:"
// for an ephemeral store in tests.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open cache store at %s: %w", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to initialize cache store: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Load returns every persisted entry. Rows that no longer decode (schema
// drift between versions) are skipped and removed lazily on the next Reset.
func (s *Store) Load() (map[cache.Key]*cache.Entry, error) {
	rows, err := s.db.Query(`SELECT key_parts, entry FROM cache_entries`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to read cache entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[cache.Key]*cache.Entry)
	for rows.Next() {
		var rawKey, rawEntry string
		if err := rows.Scan(&rawKey, &rawEntry); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan cache entry: %w", err)
		}

		var key cache.Key
		var entry cache.Entry
		if err := json.Unmarshal([]byte(rawKey), &key); err != nil {
			s.logger.Warn("skipping undecodable cache key", zap.Error(err))
			continue
		}
		if err := json.Unmarshal([]byte(rawEntry), &entry); err != nil {
			s.logger.Warn("skipping undecodable cache entry", zap.String("key", key.String()), zap.Error(err))
			continue
		}
		entries[key] = &entry
	}
	return entries, rows.Err()
}

// Save writes or replaces one entry.
func (s *Store) Save(key cache.Key, entry *cache.Entry) error {
	rawKey, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode cache key: %w", err)
	}
	rawEntry, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode cache entry: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO cache_entries (key, key_parts, entry) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET key_parts = excluded.key_parts, entry = excluded.entry, saved_at = CURRENT_TIMESTAMP`,
		key.String(), string(rawKey), string(rawEntry),
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to save cache entry: %w", err)
	}
	return nil
}

// Delete removes one entry; deleting an absent key is not an error.
func (s *Store) Delete(key cache.Key) error {
	if _, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key.String()); err != nil {
		return fmt.Errorf("sqlite: failed to delete cache entry: %w", err)
	}
	return nil
}

// Reset removes every entry.
func (s *Store) Reset() error {
	if _, err := s.db.Exec(`DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("sqlite: failed to reset cache store: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
