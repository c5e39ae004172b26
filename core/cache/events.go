package cache

import (
	"context"
	"time"
)

// EventType names a cache change notification.
type EventType string

const (
	EntryUpdated     EventType = "cache.entry.updated"
	EntryInvalidated EventType = "cache.entry.invalidated"
	CacheCleared     EventType = "cache.cleared"
)

// Event describes one change to the cache, emitted on the shared event bus
// so the UI layer can re-render the affected page without polling.
type Event struct {
	Type       EventType `json:"type"`
	Key        string    `json:"key,omitempty"`
	Resource   Resource  `json:"resource,omitempty"`
	Collection string    `json:"collection,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// CallbackFunction is the signature of cache event subscribers.
type CallbackFunction func(ctx context.Context, event Event) error

func (c *Cache) emit(eventType EventType, key Key) {
	if c.bus == nil {
		return
	}
	c.bus.Emit(string(eventType), Event{
		Type:       eventType,
		Key:        key.String(),
		Resource:   key.Resource,
		Collection: key.Collection,
		Timestamp:  c.now(),
	})
}

// Subscribe registers a callback for one event type and returns its
// unsubscribe function.
func (c *Cache) Subscribe(eventType EventType, callback CallbackFunction) func() {
	if c.bus == nil {
		return func() {}
	}
	return c.bus.Subscribe(string(eventType), callback)
}
