package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/wanjohi/go-curator/core/api"
	"github.com/wanjohi/go-curator/core/cache"
	"github.com/wanjohi/go-curator/core/mutation"
)

// Users returns one page of the user list, read through the cache.
func (c *Client) Users(ctx context.Context, opts api.ListOptions) (*api.UserPage, error) {
	key := cache.UsersKey(opts)
	entry, fresh := c.cache.Get(key)
	if fresh {
		return entryToUserPage(entry)
	}

	page, err := c.backend.ListUsers(ctx, opts)
	if err != nil {
		if entry != nil {
			c.logger.Warn("serving stale user page after refetch failure", zap.Error(err))
			return entryToUserPage(entry)
		}
		return nil, err
	}

	items := make([]cache.Document, 0, len(page.Users))
	for _, user := range page.Users {
		doc, err := userToDocument(user)
		if err != nil {
			return nil, err
		}
		items = append(items, doc)
	}
	c.cache.Set(key, &cache.Entry{Items: items, Pagination: page.Pagination})
	return page, nil
}

// CreateUser inserts the user optimistically and commits it.
func (c *Client) CreateUser(ctx context.Context, user api.User) (*api.User, error) {
	payload, err := userToDocument(user)
	if err != nil {
		return nil, err
	}
	delete(payload, "id")

	outcome := c.executor.Run(ctx, mutation.Mutation{
		Kind:     mutation.KindCreate,
		Resource: cache.ResourceUsers,
		Payload:  payload,
		Commit: func(ctx context.Context, _ map[string]any) (cache.Document, error) {
			created, err := c.backend.CreateUser(ctx, user)
			if err != nil {
				return nil, err
			}
			return userToDocument(*created)
		},
	})
	if err := outcomeError(outcome); err != nil {
		return nil, err
	}

	created, err := documentToUser(outcome.Document)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUser replaces the cached user optimistically and commits the edit.
func (c *Client) UpdateUser(ctx context.Context, id string, user api.User) (*api.User, error) {
	payload, err := userToDocument(user)
	if err != nil {
		return nil, err
	}

	outcome := c.executor.Run(ctx, mutation.Mutation{
		Kind:     mutation.KindUpdate,
		Resource: cache.ResourceUsers,
		RecordID: id,
		Payload:  payload,
		Commit: func(ctx context.Context, _ map[string]any) (cache.Document, error) {
			updated, err := c.backend.UpdateUser(ctx, id, user)
			if err != nil {
				return nil, err
			}
			return userToDocument(*updated)
		},
	})
	if err := outcomeError(outcome); err != nil {
		return nil, err
	}

	updated, err := documentToUser(outcome.Document)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteUser removes the user optimistically and commits the deletion.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	outcome := c.executor.Run(ctx, mutation.Mutation{
		Kind:     mutation.KindDelete,
		Resource: cache.ResourceUsers,
		RecordID: id,
		Commit: func(ctx context.Context, _ map[string]any) (cache.Document, error) {
			return nil, c.backend.DeleteUser(ctx, id)
		},
	})
	return outcomeError(outcome)
}

// UnlockUser clears a user's lockout flag. The optimistic patch flips
// `locked` locally; the server response is the authority on the final
// state.
func (c *Client) UnlockUser(ctx context.Context, id string) (*api.User, error) {
	outcome := c.executor.Run(ctx, mutation.Mutation{
		Kind:     mutation.KindUpdate,
		Resource: cache.ResourceUsers,
		RecordID: id,
		Payload:  map[string]any{"locked": false},
		BuildDocument: func(payload map[string]any) cache.Document {
			return c.patchedUser(id, payload)
		},
		Commit: func(ctx context.Context, _ map[string]any) (cache.Document, error) {
			unlocked, err := c.backend.UnlockUser(ctx, id)
			if err != nil {
				return nil, err
			}
			return userToDocument(*unlocked)
		},
	})
	if err := outcomeError(outcome); err != nil {
		return nil, err
	}

	unlocked, err := documentToUser(outcome.Document)
	if err != nil {
		return nil, err
	}
	return &unlocked, nil
}

// patchedUser merges a partial payload over the cached copy of a user so a
// field-level patch does not wipe the other fields optimistically.
func (c *Client) patchedUser(id string, payload map[string]any) cache.Document {
	for _, key := range c.cache.Keys(cache.ResourceUsers, "") {
		entry, _ := c.cache.Get(key)
		if entry == nil {
			continue
		}
		for _, item := range entry.Items {
			if item["id"] == id {
				for k, v := range payload {
					item[k] = v
				}
				return item
			}
		}
	}
	return payload
}

func entryToUserPage(entry *cache.Entry) (*api.UserPage, error) {
	users, err := entryToUsers(entry)
	if err != nil {
		return nil, err
	}
	return &api.UserPage{Users: users, Pagination: entry.Pagination}, nil
}
