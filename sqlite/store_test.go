package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanjohi/go-curator/core/api"
	"github.com/wanjohi/go-curator/core/cache"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntry() *cache.Entry {
	return &cache.Entry{
		Items: []cache.Document{
			{"id": "rec_1", "data": map[string]any{"title": "Espresso", "price": 12.5}},
		},
		Pagination: api.Pagination{CurrentPage: 1, PageSize: 30, TotalCount: 1},
		FetchedAt:  time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		TTL:        5 * time.Minute,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	store := newTestStore(t)
	key := cache.RecordsKey("products", api.ListOptions{Page: 1, PageSize: 30})

	require.NoError(t, store.Save(key, sampleEntry()))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	entry, ok := loaded[key]
	require.True(t, ok)
	require.Len(t, entry.Items, 1)
	assert.Equal(t, "rec_1", entry.Items[0]["id"])
	assert.Equal(t, sampleEntry().FetchedAt, entry.FetchedAt)
	assert.Equal(t, 5*time.Minute, entry.TTL)
	assert.Equal(t, 1, entry.Pagination.TotalCount)
}

func TestStoreSaveReplaces(t *testing.T) {
	store := newTestStore(t)
	key := cache.CollectionsKey()

	require.NoError(t, store.Save(key, sampleEntry()))

	replacement := sampleEntry()
	replacement.Items[0]["id"] = "rec_2"
	require.NoError(t, store.Save(key, replacement))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "rec_2", loaded[key].Items[0]["id"])
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	key := cache.CollectionsKey()
	require.NoError(t, store.Save(key, sampleEntry()))

	require.NoError(t, store.Delete(key))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete(key))
}

func TestStoreReset(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(cache.CollectionsKey(), sampleEntry()))
	require.NoError(t, store.Save(cache.SettingsKey("mail"), sampleEntry()))

	require.NoError(t, store.Reset())
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	key := cache.RecordsKey("products", api.ListOptions{Page: 1, PageSize: 30})

	store, err := NewStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(key, sampleEntry()))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "rec_1", loaded[key].Items[0]["id"])
}

func TestStoreSkipsUndecodableRows(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(cache.CollectionsKey(), sampleEntry()))

	_, err := store.db.Exec(
		`INSERT INTO cache_entries (key, key_parts, entry) VALUES (?, ?, ?)`,
		"corrupt", "not json", "also not json",
	)
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}
