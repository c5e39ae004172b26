package cache

import (
	"time"

	"github.com/wanjohi/go-curator/core/api"
)

// DefaultTTL is the freshness window applied when an entry carries none.
const DefaultTTL = 5 * time.Minute

// Document is the uniform item shape held by cache entries. Collections,
// records and users are all stored as plain maps so snapshots and patches
// need no per-type code.
type Document = map[string]any

// Entry is one cached list page.
type Entry struct {
	Items      []Document     `json:"items"`
	Pagination api.Pagination `json:"pagination"`
	FetchedAt  time.Time      `json:"fetched_at"`
	TTL        time.Duration  `json:"ttl"`
}

// Stale reports whether the entry is older than its TTL at the given time.
// A stale entry may still be displayed optimistically, but must not be
// trusted for a write decision.
func (e *Entry) Stale(now time.Time) bool {
	ttl := e.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now.Sub(e.FetchedAt) >= ttl
}

// indexOf returns the position of the item with the given id, or -1.
func (e *Entry) indexOf(idField, id string) int {
	for i, item := range e.Items {
		if v, ok := item[idField].(string); ok && v == id {
			return i
		}
	}
	return -1
}

// clone deep-copies the entry so cache internals never alias caller-held
// data.
func (e *Entry) clone() *Entry {
	if e == nil {
		return nil
	}
	out := &Entry{
		Pagination: e.Pagination,
		FetchedAt:  e.FetchedAt,
		TTL:        e.TTL,
	}
	out.Items = make([]Document, len(e.Items))
	for i, item := range e.Items {
		out.Items[i] = deepCopyDocument(item)
	}
	return out
}

func deepCopyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return deepCopyDocument(value)
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return value
	}
}
