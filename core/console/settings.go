package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/wanjohi/go-curator/core/api"
	"github.com/wanjohi/go-curator/core/cache"
)

// SettingsByCategory returns the settings of one category, read through the
// cache.
func (c *Client) SettingsByCategory(ctx context.Context, category string) ([]api.Setting, error) {
	key := cache.SettingsKey(category)
	entry, fresh := c.cache.Get(key)
	if fresh {
		return entryToSettings(entry)
	}

	settings, err := c.backend.GetSettingsByCategory(ctx, category)
	if err != nil {
		if entry != nil {
			c.logger.Warn("serving stale settings after refetch failure",
				zap.String("category", category), zap.Error(err))
			return entryToSettings(entry)
		}
		return nil, err
	}

	items := make([]cache.Document, 0, len(settings))
	for _, setting := range settings {
		doc, err := settingToDocument(setting)
		if err != nil {
			return nil, err
		}
		items = append(items, doc)
	}
	c.cache.Set(key, &cache.Entry{
		Items:      items,
		Pagination: api.Pagination{TotalCount: len(settings)},
	})
	return settings, nil
}

// UpdateSetting writes one setting value, patching the cached category
// optimistically. Settings are keyed by their key, not an id, so the patch
// is done here rather than through the generic document operations; the
// rollback discipline is the same snapshot/restore pair, and same-key
// updates take the executor's entity lock so a second update never
// snapshots the first one's uncommitted value.
func (c *Client) UpdateSetting(ctx context.Context, category, key string, value any) (*api.Setting, error) {
	unlock := c.executor.LockEntity(settingEntityKey(category, key))
	defer unlock()

	cacheKey := cache.SettingsKey(category)
	snap := c.cache.Snapshot(cacheKey)

	if entry, _ := c.cache.Get(cacheKey); entry != nil {
		for _, item := range entry.Items {
			if item["key"] == key {
				item["value"] = value
			}
		}
		c.cache.Set(cacheKey, entry)
	}

	updated, err := c.backend.UpdateSetting(ctx, category, key, value)
	if err != nil {
		c.cache.Restore(snap)
		return nil, err
	}

	// The server may normalize the value; refetch lazily next read.
	c.cache.Invalidate(cacheKey)
	return updated, nil
}

// settingEntityKey names the serialization slot of one setting.
func settingEntityKey(category, key string) string {
	return string(cache.ResourceSettings) + "/" + category + "/" + key
}

func entryToSettings(entry *cache.Entry) ([]api.Setting, error) {
	settings := make([]api.Setting, 0, len(entry.Items))
	for _, doc := range entry.Items {
		setting, err := documentToSetting(doc)
		if err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}
	return settings, nil
}
