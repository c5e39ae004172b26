package cache

// Store persists cache entries across sessions. Implementations live
// outside the core (see the sqlite package); the cache treats persistence
// as best-effort and never fails an operation over a store error.
type Store interface {
	// Load returns every persisted entry. Entries that fail to decode may
	// be silently skipped.
	Load() (map[Key]*Entry, error)

	// Save writes or replaces one entry.
	Save(key Key, entry *Entry) error

	// Delete removes one entry. Deleting an absent key is not an error.
	Delete(key Key) error

	// Reset removes every entry.
	Reset() error

	// Close releases the store's resources.
	Close() error
}
