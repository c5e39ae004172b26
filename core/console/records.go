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

// Records returns one page of a collection's records, read through the
// cache with the stale-fallback behavior described on Collections.
func (c *Client) Records(ctx context.Context, collection string, opts api.ListOptions) (*api.RecordPage, error) {
	key := cache.RecordsKey(collection, opts)
	entry, fresh := c.cache.Get(key)
	if fresh {
		return entryToRecordPage(entry)
	}

	page, err := c.backend.ListRecords(ctx, collection, opts)
	if err != nil {
		if entry != nil {
			c.logger.Warn("serving stale record page after refetch failure",
				zap.String("collection", collection), zap.Error(err))
			return entryToRecordPage(entry)
		}
		return nil, err
	}

	items := make([]cache.Document, 0, len(page.Records))
	for _, rec := range page.Records {
		doc, err := recordToDocument(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, doc)
	}
	c.cache.Set(key, &cache.Entry{Items: items, Pagination: page.Pagination})
	return page, nil
}

// ValidateRecord normalizes raw form values and validates them against the
// schema, reporting every invalid field at once. It performs no cache or
// network activity.
func (c *Client) ValidateRecord(s *schema.CollectionSchema, formData map[string]any) (map[string]any, error) {
	validator, ferr := schema.Compile(s)
	if ferr != nil {
		return nil, &SchemaError{Issue: *ferr}
	}

	normalized, fieldErrs := validator.Validate(normalizeForm(s, formData))
	if len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}
	return normalized, nil
}

// CreateRecord validates and normalizes formData against the collection's
// current schema, inserts the record optimistically and commits it.
func (c *Client) CreateRecord(ctx context.Context, collection string, formData map[string]any) (*api.Record, error) {
	validator, s, err := c.recordValidator(ctx, collection)
	if err != nil {
		return nil, err
	}

	outcome := c.executor.Run(ctx, mutation.Mutation{
		Kind:          mutation.KindCreate,
		Resource:      cache.ResourceRecords,
		Collection:    collection,
		Payload:       normalizeForm(s, formData),
		Validator:     validator,
		BuildDocument: recordDocument,
		Commit: func(ctx context.Context, payload map[string]any) (cache.Document, error) {
			created, err := c.backend.CreateRecord(ctx, collection, payload)
			if err != nil {
				return nil, err
			}
			return recordToDocument(*created)
		},
	})
	if err := outcomeError(outcome); err != nil {
		return nil, err
	}

	created, err := documentToRecord(outcome.Document)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateRecord validates and normalizes formData, replaces the cached
// record optimistically and commits the edit.
func (c *Client) UpdateRecord(ctx context.Context, collection, id string, formData map[string]any) (*api.Record, error) {
	validator, s, err := c.recordValidator(ctx, collection)
	if err != nil {
		return nil, err
	}

	outcome := c.executor.Run(ctx, mutation.Mutation{
		Kind:          mutation.KindUpdate,
		Resource:      cache.ResourceRecords,
		Collection:    collection,
		RecordID:      id,
		Payload:       normalizeForm(s, formData),
		Validator:     validator,
		BuildDocument: recordDocument,
		Commit: func(ctx context.Context, payload map[string]any) (cache.Document, error) {
			updated, err := c.backend.UpdateRecord(ctx, collection, id, payload)
			if err != nil {
				return nil, err
			}
			return recordToDocument(*updated)
		},
	})
	if err := outcomeError(outcome); err != nil {
		return nil, err
	}

	updated, err := documentToRecord(outcome.Document)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteRecord removes the record optimistically and commits the deletion.
func (c *Client) DeleteRecord(ctx context.Context, collection, id string) error {
	outcome := c.executor.Run(ctx, mutation.Mutation{
		Kind:       mutation.KindDelete,
		Resource:   cache.ResourceRecords,
		Collection: collection,
		RecordID:   id,
		Commit: func(ctx context.Context, _ map[string]any) (cache.Document, error) {
			return nil, c.backend.DeleteRecord(ctx, collection, id)
		},
	})
	return outcomeError(outcome)
}

// recordValidator compiles the validator for a collection's current schema,
// refetching the schema when the cached copy is stale.
func (c *Client) recordValidator(ctx context.Context, collection string) (*schema.RecordValidator, *schema.CollectionSchema, error) {
	col, err := c.Collection(ctx, collection)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load schema for collection '%s': %w", collection, err)
	}

	validator, ferr := schema.Compile(&col.Schema)
	if ferr != nil {
		return nil, nil, &SchemaError{Issue: *ferr}
	}
	return validator, &col.Schema, nil
}

// normalizeForm coerces each raw form value into its wire shape before
// validation, per the field's type and required-ness.
func normalizeForm(s *schema.CollectionSchema, formData map[string]any) map[string]any {
	normalized := make(map[string]any, len(formData))
	for name, value := range formData {
		if field := s.Field(name); field != nil {
			normalized[name] = schema.ToWire(field.Type, value, field.Required)
		} else {
			normalized[name] = value
		}
	}
	return normalized
}

// recordDocument shapes the optimistic cache document for a record: the
// normalized payload sits under "data", matching the fetched record shape.
func recordDocument(payload map[string]any) cache.Document {
	return cache.Document{"data": payload}
}

func entryToRecordPage(entry *cache.Entry) (*api.RecordPage, error) {
	records, err := entryToRecords(entry)
	if err != nil {
		return nil, err
	}
	return &api.RecordPage{Records: records, Pagination: entry.Pagination}, nil
}
