// Package cache holds the client's view of the remote record store: one
// entry per fetched list page, stamped with a fetch time and a TTL. The
// cache performs no network I/O of its own; callers decide what a stale
// entry means (display it, refetch it) while the mutation layer patches or
// invalidates entries around optimistic writes.
package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wanjohi/go-curator/core/api"
)

// Resource names a logical entity list held by the cache.
type Resource string

const (
	ResourceCollections Resource = "collections"
	ResourceRecords     Resource = "records"
	ResourceUsers       Resource = "users"
	ResourceSettings    Resource = "settings"
)

// Key identifies one cached list page. Record pages are partitioned per
// collection, page, search term and filter set; flat resources leave
// Collection empty. Its canonical string form doubles as the persistence
// key.
type Key struct {
	Resource   Resource
	Collection string
	Page       int
	PageSize   int
	Search     string
	Filter     string
}

// CollectionsKey keys the single collections list.
func CollectionsKey() Key {
	return Key{Resource: ResourceCollections}
}

// RecordsKey keys one page of records within a collection.
func RecordsKey(collection string, opts api.ListOptions) Key {
	return Key{
		Resource:   ResourceRecords,
		Collection: collection,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		Search:     opts.Search,
		Filter:     CanonicalFilter(opts.Filter),
	}
}

// UsersKey keys one page of the user list.
func UsersKey(opts api.ListOptions) Key {
	return Key{
		Resource: ResourceUsers,
		Page:     opts.Page,
		PageSize: opts.PageSize,
		Search:   opts.Search,
		Filter:   CanonicalFilter(opts.Filter),
	}
}

// SettingsKey keys the settings of one category.
func SettingsKey(category string) Key {
	return Key{Resource: ResourceSettings, Collection: category}
}

// Filtered reports whether this page is a restricted view whose membership
// cannot be decided locally.
func (k Key) Filtered() bool {
	return k.Search != "" || k.Filter != ""
}

// String renders the canonical form used for map keying and persistence.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s?page=%d&size=%d&search=%s&filter=%s",
		k.Resource, k.Collection, k.Page, k.PageSize, k.Search, k.Filter)
}

// CanonicalFilter renders a filter set in a stable order so equal filters
// produce equal keys.
func CanonicalFilter(filter map[string]string) string {
	if len(filter) == 0 {
		return ""
	}
	parts := make([]string, 0, len(filter))
	for k, v := range filter {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}
