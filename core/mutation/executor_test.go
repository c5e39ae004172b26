package mutation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanjohi/go-curator/core/api"
	"github.com/wanjohi/go-curator/core/cache"
	"github.com/wanjohi/go-curator/core/schema"
)

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New()
	require.NoError(t, err)
	return c
}

func seedPage(c *cache.Cache, collection string, ids ...string) cache.Key {
	key := cache.RecordsKey(collection, api.ListOptions{Page: 1, PageSize: 30})
	items := make([]cache.Document, len(ids))
	for i, id := range ids {
		items[i] = cache.Document{"id": id, "data": map[string]any{"title": "item " + id}}
	}
	c.Set(key, &cache.Entry{
		Items:      items,
		Pagination: api.Pagination{CurrentPage: 1, PageSize: 30, TotalCount: len(ids)},
	})
	return key
}

func compiled(t *testing.T) *schema.RecordValidator {
	t.Helper()
	rv, serr := schema.Compile(&schema.CollectionSchema{
		Name: "products",
		Fields: []schema.FieldDefinition{
			{Name: "title", Type: schema.FieldTypeText, Required: true},
			{Name: "price", Type: schema.FieldTypeNumber},
		},
	})
	require.Nil(t, serr)
	return rv
}

func TestRunCreate(t *testing.T) {
	t.Run("successful create reconciles the placeholder", func(t *testing.T) {
		c := newTestCache(t)
		key := seedPage(c, "products", "a")
		e := NewExecutor(c)

		var committed map[string]any
		outcome := e.Run(context.Background(), Mutation{
			Kind:       KindCreate,
			Resource:   cache.ResourceRecords,
			Collection: "products",
			Payload:    map[string]any{"title": "Espresso", "price": "12.5"},
			Validator:  compiled(t),
			Commit: func(ctx context.Context, payload map[string]any) (cache.Document, error) {
				committed = payload
				return cache.Document{"id": "rec_9", "title": "Espresso", "price": 12.5}, nil
			},
		})

		assert.Equal(t, StateDone, outcome.State)
		require.NotNil(t, outcome.Document)
		assert.Equal(t, "rec_9", outcome.Document["id"])

		// The commit received the normalized payload, not the raw form.
		assert.Equal(t, 12.5, committed["price"])

		entry, _ := c.Get(key)
		require.Len(t, entry.Items, 2)
		assert.Equal(t, "rec_9", entry.Items[0]["id"])
		assert.Equal(t, 2, entry.Pagination.TotalCount)
	})

	t.Run("rejected create touches neither cache nor network", func(t *testing.T) {
		c := newTestCache(t)
		key := seedPage(c, "products", "a")
		e := NewExecutor(c)

		var commits int32
		outcome := e.Run(context.Background(), Mutation{
			Kind:       KindCreate,
			Resource:   cache.ResourceRecords,
			Collection: "products",
			Payload:    map[string]any{"title": "", "price": "abc"},
			Validator:  compiled(t),
			Commit: func(ctx context.Context, payload map[string]any) (cache.Document, error) {
				atomic.AddInt32(&commits, 1)
				return nil, nil
			},
		})

		assert.Equal(t, StateRejected, outcome.State)
		require.Len(t, outcome.FieldErrors, 2)
		assert.Equal(t, schema.CodeRequiredFieldMissing, outcome.FieldErrors["title"].Code)
		assert.Equal(t, schema.CodeInvalidNumber, outcome.FieldErrors["price"].Code)
		assert.Zero(t, atomic.LoadInt32(&commits))

		entry, _ := c.Get(key)
		assert.Len(t, entry.Items, 1)
		assert.Equal(t, 1, entry.Pagination.TotalCount)
	})

	t.Run("failed commit rolls the cache back exactly", func(t *testing.T) {
		c := newTestCache(t)
		key := seedPage(c, "products", "a", "b")
		before, _ := c.Get(key)
		e := NewExecutor(c)

		commitErr := &api.NetworkError{Err: errors.New("connection refused")}
		outcome := e.Run(context.Background(), Mutation{
			Kind:       KindCreate,
			Resource:   cache.ResourceRecords,
			Collection: "products",
			Payload:    map[string]any{"title": "Espresso"},
			Validator:  compiled(t),
			Commit: func(ctx context.Context, payload map[string]any) (cache.Document, error) {
				return nil, commitErr
			},
		})

		assert.Equal(t, StateFailed, outcome.State)
		assert.ErrorIs(t, outcome.Err, commitErr)

		after, _ := c.Get(key)
		assert.Equal(t, before.Items, after.Items)
		assert.Equal(t, before.Pagination, after.Pagination)
	})
}

func TestRunUpdate(t *testing.T) {
	t.Run("successful update replaces the cached item", func(t *testing.T) {
		c := newTestCache(t)
		key := seedPage(c, "products", "a", "b")
		e := NewExecutor(c)

		outcome := e.Run(context.Background(), Mutation{
			Kind:       KindUpdate,
			Resource:   cache.ResourceRecords,
			Collection: "products",
			RecordID:   "b",
			Payload:    map[string]any{"title": "Edited"},
			Commit: func(ctx context.Context, payload map[string]any) (cache.Document, error) {
				return cache.Document{"id": "b", "title": "Edited"}, nil
			},
		})

		assert.Equal(t, StateDone, outcome.State)
		entry, _ := c.Get(key)
		require.Len(t, entry.Items, 2)
		assert.Equal(t, "Edited", entry.Items[1]["title"])
	})

	t.Run("failed update restores the original item", func(t *testing.T) {
		c := newTestCache(t)
		key := seedPage(c, "products", "a")
		e := NewExecutor(c)

		outcome := e.Run(context.Background(), Mutation{
			Kind:       KindUpdate,
			Resource:   cache.ResourceRecords,
			Collection: "products",
			RecordID:   "a",
			Payload:    map[string]any{"title": "Edited"},
			Commit: func(ctx context.Context, payload map[string]any) (cache.Document, error) {
				return nil, &api.ServerError{Status: 500, Message: "boom"}
			},
		})

		assert.Equal(t, StateFailed, outcome.State)
		entry, _ := c.Get(key)
		data := entry.Items[0]["data"].(map[string]any)
		assert.Equal(t, "item a", data["title"])
	})
}

func TestRunDelete(t *testing.T) {
	t.Run("successful delete removes the item", func(t *testing.T) {
		c := newTestCache(t)
		key := seedPage(c, "products", "a", "b")
		e := NewExecutor(c)

		outcome := e.Run(context.Background(), Mutation{
			Kind:       KindDelete,
			Resource:   cache.ResourceRecords,
			Collection: "products",
			RecordID:   "a",
			Commit: func(ctx context.Context, payload map[string]any) (cache.Document, error) {
				return nil, nil
			},
		})

		assert.Equal(t, StateDone, outcome.State)
		entry, _ := c.Get(key)
		require.Len(t, entry.Items, 1)
		assert.Equal(t, "b", entry.Items[0]["id"])
		assert.Equal(t, 1, entry.Pagination.TotalCount)
	})

	t.Run("failed delete reinstates the item", func(t *testing.T) {
		c := newTestCache(t)
		key := seedPage(c, "products", "a", "b")
		before, _ := c.Get(key)
		e := NewExecutor(c)

		outcome := e.Run(context.Background(), Mutation{
			Kind:       KindDelete,
			Resource:   cache.ResourceRecords,
			Collection: "products",
			RecordID:   "a",
			Commit: func(ctx context.Context, payload map[string]any) (cache.Document, error) {
				return nil, &api.NetworkError{Err: errors.New("timeout")}
			},
		})

		assert.Equal(t, StateFailed, outcome.State)
		after, _ := c.Get(key)
		assert.Equal(t, before.Items, after.Items)
		assert.Equal(t, before.Pagination, after.Pagination)
	})
}

func TestRunSerialization(t *testing.T) {
	t.Run("mutations on the same entity never overlap", func(t *testing.T) {
		c := newTestCache(t)
		seedPage(c, "products", "a")
		e := NewExecutor(c)

		var inFlight, maxInFlight int32
		commit := func(ctx context.Context, payload map[string]any) (cache.Document, error) {
			current := atomic.AddInt32(&inFlight, 1)
			for {
				max := atomic.LoadInt32(&maxInFlight)
				if current <= max || atomic.CompareAndSwapInt32(&maxInFlight, max, current) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return cache.Document{"id": "a"}, nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				e.Run(context.Background(), Mutation{
					Kind:       KindUpdate,
					Resource:   cache.ResourceRecords,
					Collection: "products",
					RecordID:   "a",
					Payload:    map[string]any{"title": "x"},
					Commit:     commit,
				})
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
	})

	t.Run("mutations on different entities run concurrently", func(t *testing.T) {
		c := newTestCache(t)
		seedPage(c, "products", "a", "b")
		e := NewExecutor(c)

		release := make(chan struct{})
		started := make(chan string, 2)
		commit := func(id string) func(context.Context, map[string]any) (cache.Document, error) {
			return func(ctx context.Context, payload map[string]any) (cache.Document, error) {
				started <- id
				<-release
				return cache.Document{"id": id}, nil
			}
		}

		var wg sync.WaitGroup
		for _, id := range []string{"a", "b"} {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				e.Run(context.Background(), Mutation{
					Kind:       KindUpdate,
					Resource:   cache.ResourceRecords,
					Collection: "products",
					RecordID:   id,
					Payload:    map[string]any{"title": "x"},
					Commit:     commit(id),
				})
			}(id)
		}

		// Both commits must be in flight at once; a serialized pair would
		// deadlock here instead of producing two starts.
		for i := 0; i < 2; i++ {
			select {
			case <-started:
			case <-time.After(time.Second):
				t.Fatal("expected both mutations to start concurrently")
			}
		}
		close(release)
		wg.Wait()
	})
}

func TestEntityLockPruning(t *testing.T) {
	c := newTestCache(t)
	seedPage(c, "products", "a", "b")
	e := NewExecutor(c)

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "a", "b", "a"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			e.Run(context.Background(), Mutation{
				Kind:       KindUpdate,
				Resource:   cache.ResourceRecords,
				Collection: "products",
				RecordID:   id,
				Payload:    map[string]any{"title": "x"},
				Commit: func(ctx context.Context, payload map[string]any) (cache.Document, error) {
					return cache.Document{"id": id}, nil
				},
			})
		}(id)
	}
	wg.Wait()

	// Slots are dropped once nobody holds or waits on them; a long session
	// must not accumulate one mutex per entity ever touched.
	e.mu.Lock()
	defer e.mu.Unlock()
	assert.Empty(t, e.locks)
}

func TestLockEntity(t *testing.T) {
	c := newTestCache(t)
	e := NewExecutor(c)

	unlock := e.LockEntity("settings/mail/sender")

	acquired := make(chan struct{})
	go func() {
		second := e.LockEntity("settings/mail/sender")
		close(acquired)
		second()
	}()

	select {
	case <-acquired:
		t.Fatal("second caller acquired a held entity slot")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("entity slot was not released")
	}
}

func TestRunCommitTimeout(t *testing.T) {
	c := newTestCache(t)
	key := seedPage(c, "products", "a")
	before, _ := c.Get(key)
	e := NewExecutor(c, WithCommitTimeout(20*time.Millisecond))

	outcome := e.Run(context.Background(), Mutation{
		Kind:       KindUpdate,
		Resource:   cache.ResourceRecords,
		Collection: "products",
		RecordID:   "a",
		Payload:    map[string]any{"title": "x"},
		Commit: func(ctx context.Context, payload map[string]any) (cache.Document, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	assert.Equal(t, StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, context.DeadlineExceeded)

	after, _ := c.Get(key)
	assert.Equal(t, before.Items, after.Items)
}

func TestRunWithoutCommit(t *testing.T) {
	c := newTestCache(t)
	seedPage(c, "products", "a")
	e := NewExecutor(c)

	outcome := e.Run(context.Background(), Mutation{
		Kind:       KindDelete,
		Resource:   cache.ResourceRecords,
		Collection: "products",
		RecordID:   "a",
	})

	assert.Equal(t, StateFailed, outcome.State)
	assert.Error(t, outcome.Err)
}
