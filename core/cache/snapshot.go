package cache

import "go.uber.org/zap"

// Snapshot captures the exact state of a set of keys, including their
// absence, so a failed mutation can put the cache back bit-identically.
type Snapshot struct {
	entries map[Key]*Entry // nil value records that the key was absent
}

// Snapshot deep-copies the current state of the given keys.
func (c *Cache) Snapshot(keys ...Key) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{entries: make(map[Key]*Entry, len(keys))}
	for _, key := range keys {
		if entry, ok := c.entries[key]; ok {
			snap.entries[key] = entry.clone()
		} else {
			snap.entries[key] = nil
		}
	}
	return snap
}

// Restore replaces every snapshotted key with its captured state: present
// entries are reinstated verbatim, keys that were absent are deleted again.
func (c *Cache) Restore(snap Snapshot) {
	restored := make([]Key, 0, len(snap.entries))

	c.mu.Lock()
	for key, entry := range snap.entries {
		if entry == nil {
			delete(c.entries, key)
			if c.store != nil {
				if err := c.store.Delete(key); err != nil {
					c.logger.Warn("failed to delete persisted cache entry on restore", zap.String("key", key.String()), zap.Error(err))
				}
			}
		} else {
			c.entries[key] = entry.clone()
			c.persist(key, entry)
		}
		restored = append(restored, key)
	}
	c.mu.Unlock()

	for _, key := range restored {
		c.emit(EntryUpdated, key)
	}
}

// Keys returns the snapshotted keys.
func (s Snapshot) Keys() []Key {
	keys := make([]Key, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys
}
