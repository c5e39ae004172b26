package cache

import "go.uber.org/zap"

// Patch operations apply one entity change across every cached page of a
// resource. Unfiltered pages are patched in place; pages restricted by a
// search term or filter set are invalidated whenever the item's membership
// in that view cannot be decided without a refetch.

// idField is the document key that identifies an item within a page.
const idField = "id"

// ApplyInsert inserts doc into the cached pages of (resource, collection).
// The first unfiltered page gets the item prepended and trimmed to its page
// size; other unfiltered pages only see their total count grow; filtered
// pages are invalidated.
func (c *Cache) ApplyInsert(resource Resource, collection string, doc Document) {
	var updated, invalidated []Key

	c.mu.Lock()
	for key, entry := range c.entries {
		if key.Resource != resource || key.Collection != collection {
			continue
		}
		if key.Filtered() {
			delete(c.entries, key)
			c.dropPersisted(key)
			invalidated = append(invalidated, key)
			continue
		}
		if key.Page <= 1 {
			entry.Items = append([]Document{deepCopyDocument(doc)}, entry.Items...)
			if key.PageSize > 0 && len(entry.Items) > key.PageSize {
				entry.Items = entry.Items[:key.PageSize]
			}
		}
		entry.Pagination.TotalCount++
		c.persist(key, entry)
		updated = append(updated, key)
	}
	c.mu.Unlock()

	c.emitAll(updated, invalidated)
}

// ApplyReplace swaps the item with doc's id for doc on every unfiltered
// page that holds it. Filtered pages are invalidated: an edit can move a
// record in or out of a filtered view.
func (c *Cache) ApplyReplace(resource Resource, collection string, doc Document) {
	id, _ := doc[idField].(string)
	var updated, invalidated []Key

	c.mu.Lock()
	for key, entry := range c.entries {
		if key.Resource != resource || key.Collection != collection {
			continue
		}
		if key.Filtered() {
			delete(c.entries, key)
			c.dropPersisted(key)
			invalidated = append(invalidated, key)
			continue
		}
		if i := entry.indexOf(idField, id); i >= 0 {
			entry.Items[i] = deepCopyDocument(doc)
			c.persist(key, entry)
			updated = append(updated, key)
		}
	}
	c.mu.Unlock()

	c.emitAll(updated, invalidated)
}

// ApplyRemove deletes the item with the given id from every page of
// (resource, collection) and decrements each unfiltered page's total count.
// A filtered page that does not hold the item is invalidated, since its
// count cannot be adjusted locally.
func (c *Cache) ApplyRemove(resource Resource, collection string, id string) {
	var updated, invalidated []Key

	c.mu.Lock()
	for key, entry := range c.entries {
		if key.Resource != resource || key.Collection != collection {
			continue
		}
		i := entry.indexOf(idField, id)
		if key.Filtered() && i < 0 {
			delete(c.entries, key)
			c.dropPersisted(key)
			invalidated = append(invalidated, key)
			continue
		}
		if i >= 0 {
			entry.Items = append(entry.Items[:i], entry.Items[i+1:]...)
		}
		if entry.Pagination.TotalCount > 0 {
			entry.Pagination.TotalCount--
		}
		c.persist(key, entry)
		updated = append(updated, key)
	}
	c.mu.Unlock()

	c.emitAll(updated, invalidated)
}

// Reconcile swaps an optimistic placeholder for the server's canonical
// document on every page that holds it. Counts were already adjusted when
// the placeholder was inserted.
func (c *Cache) Reconcile(resource Resource, collection string, placeholderID string, doc Document) {
	var updated []Key

	c.mu.Lock()
	for key, entry := range c.entries {
		if key.Resource != resource || key.Collection != collection {
			continue
		}
		if i := entry.indexOf(idField, placeholderID); i >= 0 {
			entry.Items[i] = deepCopyDocument(doc)
			c.persist(key, entry)
			updated = append(updated, key)
		}
	}
	c.mu.Unlock()

	c.emitAll(updated, nil)
}

func (c *Cache) dropPersisted(key Key) {
	if c.store == nil {
		return
	}
	if err := c.store.Delete(key); err != nil {
		c.logger.Warn("failed to delete persisted cache entry", zap.String("key", key.String()), zap.Error(err))
	}
}

func (c *Cache) emitAll(updated, invalidated []Key) {
	for _, key := range updated {
		c.emit(EntryUpdated, key)
	}
	for _, key := range invalidated {
		c.emit(EntryInvalidated, key)
	}
}
