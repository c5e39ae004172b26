package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"go.uber.org/zap"
)

// Cache is the single shared mutable resource of the client. All access goes
// through its mutex; reads and writes hand out deep copies so no caller ever
// aliases cache-owned data, which is what makes snapshot/restore a plain
// structural replace.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
	ttl     time.Duration
	now     func() time.Time
	bus     *events.TypedEventBus[Event]
	store   Store
	logger  *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the default freshness window applied to new entries.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock injects the time source, used by tests to age entries.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger attaches a logger for persistence diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithStore attaches a persistence store. Previously saved entries are
// loaded eagerly; save failures are logged, never surfaced, since the store
// is a warm-start convenience and the remote API remains the source of
// truth.
func WithStore(store Store) Option {
	return func(c *Cache) { c.store = store }
}

// New creates an empty cache.
func New(opts ...Option) (*Cache, error) {
	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize cache event bus: %w", err)
	}

	c := &Cache{
		entries: make(map[Key]*Entry),
		ttl:     DefaultTTL,
		now:     time.Now,
		bus:     bus,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.store != nil {
		loaded, err := c.store.Load()
		if err != nil {
			c.logger.Warn("failed to load persisted cache entries", zap.Error(err))
		} else {
			for key, entry := range loaded {
				c.entries[key] = entry
			}
		}
	}

	return c, nil
}

// Get returns a deep copy of the entry for key and whether it is still
// fresh. A missing entry returns (nil, false); a present but stale entry
// returns (entry, false) so the caller may display it while refetching.
func (c *Cache) Get(key Key) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.clone(), !entry.Stale(c.now())
}

// Set stores a deep copy of entry under key, stamping FetchedAt and the
// cache TTL when the entry carries none.
func (c *Cache) Set(key Key, entry *Entry) {
	stored := entry.clone()
	if stored.FetchedAt.IsZero() {
		stored.FetchedAt = c.now()
	}
	if stored.TTL <= 0 {
		stored.TTL = c.ttl
	}

	c.mu.Lock()
	c.entries[key] = stored
	c.persist(key, stored)
	c.mu.Unlock()

	c.emit(EntryUpdated, key)
}

// Invalidate drops the entry for key. Invalidating an absent key is a
// no-op, so the operation is idempotent.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	if existed && c.store != nil {
		if err := c.store.Delete(key); err != nil {
			c.logger.Warn("failed to delete persisted cache entry", zap.String("key", key.String()), zap.Error(err))
		}
	}
	c.mu.Unlock()

	if existed {
		c.emit(EntryInvalidated, key)
	}
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[Key]*Entry)
	if c.store != nil {
		if err := c.store.Reset(); err != nil {
			c.logger.Warn("failed to reset persisted cache", zap.Error(err))
		}
	}
	c.mu.Unlock()

	c.emit(CacheCleared, Key{})
}

// Keys returns the keys of all entries for a resource, optionally narrowed
// to one collection.
func (c *Cache) Keys(resource Resource, collection string) []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys []Key
	for key := range c.entries {
		if key.Resource != resource {
			continue
		}
		if collection != "" && key.Collection != collection {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func (c *Cache) persist(key Key, entry *Entry) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(key, entry); err != nil {
		c.logger.Warn("failed to persist cache entry", zap.String("key", key.String()), zap.Error(err))
	}
}
