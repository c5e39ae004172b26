package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wanjohi/go-curator/core/api"
	"github.com/wanjohi/go-curator/core/cache"
	"github.com/wanjohi/go-curator/core/mutation"
	"github.com/wanjohi/go-curator/core/schema"
)

// Collections returns the collection list, read through the cache. A fresh
// entry is served as-is; otherwise the backend is queried and the cache
// refilled. When the refetch fails but a stale entry exists, the stale data
// is served so the console stays usable offline-ish; write paths never take
// that shortcut.
func (c *Client) Collections(ctx context.Context) ([]api.Collection, error) {
	key := cache.CollectionsKey()
	entry, fresh := c.cache.Get(key)
	if fresh {
		return entryToCollections(entry)
	}

	cols, err := c.backend.ListCollections(ctx)
	if err != nil {
		if entry != nil {
			c.logger.Warn("serving stale collection list after refetch failure", zap.Error(err))
			return entryToCollections(entry)
		}
		return nil, err
	}

	items := make([]cache.Document, 0, len(cols))
	for _, col := range cols {
		doc, err := collectionToDocument(col)
		if err != nil {
			return nil, err
		}
		items = append(items, doc)
	}
	c.cache.Set(key, &cache.Entry{
		Items:      items,
		Pagination: api.Pagination{TotalCount: len(cols)},
	})
	return cols, nil
}

// Collection returns one collection with its schema. A stale cached list is
// never trusted here: this lookup feeds write decisions, so anything older
// than the TTL forces a refetch.
func (c *Client) Collection(ctx context.Context, name string) (*api.Collection, error) {
	entry, fresh := c.cache.Get(cache.CollectionsKey())
	if fresh {
		cols, err := entryToCollections(entry)
		if err == nil {
			for i := range cols {
				if cols[i].Name == name {
					return &cols[i], nil
				}
			}
		}
	}
	return c.backend.GetCollection(ctx, name)
}

// checkCollectionSchema runs every schema-level invariant: a well-formed,
// non-reserved collection name and a compilable field list. Failures block
// the mutation before any cache or network activity.
func checkCollectionSchema(col *api.Collection) error {
	if schema.IsReservedCollectionName(col.Name) {
		return &SchemaError{Issue: schema.FieldError{
			Code:    schema.CodeReservedName,
			Message: fmt.Sprintf("'%s' is a reserved collection name", col.Name),
		}}
	}
	if !schema.IsValidCollectionName(col.Name) {
		return &SchemaError{Issue: schema.FieldError{
			Code:    schema.CodeInvalidFieldName,
			Message: fmt.Sprintf("'%s' is not a valid collection name", col.Name),
		}}
	}
	if _, ferr := schema.Compile(&col.Schema); ferr != nil {
		return &SchemaError{Issue: *ferr}
	}
	return nil
}

// CreateCollection validates the schema locally, applies the new collection
// optimistically and commits it to the backend.
func (c *Client) CreateCollection(ctx context.Context, col api.Collection) (*api.Collection, error) {
	col.Schema.Name = col.Name
	if err := checkCollectionSchema(&col); err != nil {
		return nil, err
	}

	payload, err := collectionToDocument(col)
	if err != nil {
		return nil, err
	}
	delete(payload, "id")

	outcome := c.executor.Run(ctx, mutation.Mutation{
		Kind:     mutation.KindCreate,
		Resource: cache.ResourceCollections,
		Payload:  payload,
		Commit: func(ctx context.Context, _ map[string]any) (cache.Document, error) {
			created, err := c.backend.CreateCollection(ctx, col)
			if err != nil {
				return nil, err
			}
			return collectionToDocument(*created)
		},
	})
	if err := outcomeError(outcome); err != nil {
		return nil, err
	}

	created, err := documentToCollection(outcome.Document)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCollection validates the edited schema locally and commits it.
func (c *Client) UpdateCollection(ctx context.Context, name string, col api.Collection) (*api.Collection, error) {
	col.Schema.Name = col.Name
	if err := checkCollectionSchema(&col); err != nil {
		return nil, err
	}

	payload, err := collectionToDocument(col)
	if err != nil {
		return nil, err
	}

	outcome := c.executor.Run(ctx, mutation.Mutation{
		Kind:     mutation.KindUpdate,
		Resource: cache.ResourceCollections,
		RecordID: name,
		Payload:  payload,
		Commit: func(ctx context.Context, _ map[string]any) (cache.Document, error) {
			updated, err := c.backend.UpdateCollection(ctx, name, col)
			if err != nil {
				return nil, err
			}
			return collectionToDocument(*updated)
		},
	})
	if err := outcomeError(outcome); err != nil {
		return nil, err
	}

	updated, err := documentToCollection(outcome.Document)
	if err != nil {
		return nil, err
	}

	// A schema edit can invalidate the shape of every cached record page.
	for _, key := range c.cache.Keys(cache.ResourceRecords, name) {
		c.cache.Invalidate(key)
	}
	return &updated, nil
}

// DeleteCollection removes a collection and drops every cached record page
// that belonged to it.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	outcome := c.executor.Run(ctx, mutation.Mutation{
		Kind:     mutation.KindDelete,
		Resource: cache.ResourceCollections,
		RecordID: name,
		Commit: func(ctx context.Context, _ map[string]any) (cache.Document, error) {
			return nil, c.backend.DeleteCollection(ctx, name)
		},
	})
	if err := outcomeError(outcome); err != nil {
		return err
	}

	for _, key := range c.cache.Keys(cache.ResourceRecords, name) {
		c.cache.Invalidate(key)
	}
	return nil
}
