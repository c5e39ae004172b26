package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/wanjohi/go-curator/core/api"
)

// The methods below are the api.Backend surface, one HTTP round trip each.

func (c *Client) ListCollections(ctx context.Context) ([]api.Collection, error) {
	var out []api.Collection
	if err := c.do(ctx, http.MethodGet, "/api/collections", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCollection(ctx context.Context, name string) (*api.Collection, error) {
	var out api.Collection
	if err := c.do(ctx, http.MethodGet, "/api/collections/"+url.PathEscape(name), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCollection(ctx context.Context, collection api.Collection) (*api.Collection, error) {
	var out api.Collection
	if err := c.do(ctx, http.MethodPost, "/api/collections", nil, collection, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCollection(ctx context.Context, name string, collection api.Collection) (*api.Collection, error) {
	var out api.Collection
	if err := c.do(ctx, http.MethodPatch, "/api/collections/"+url.PathEscape(name), nil, collection, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/collections/"+url.PathEscape(name), nil, nil, nil)
}

func (c *Client) ListRecords(ctx context.Context, collection string, opts api.ListOptions) (*api.RecordPage, error) {
	var out api.RecordPage
	path := "/api/collections/" + url.PathEscape(collection) + "/records"
	if err := c.do(ctx, http.MethodGet, path, listQuery(opts), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRecord(ctx context.Context, collection string, data map[string]any) (*api.Record, error) {
	var out api.Record
	path := "/api/collections/" + url.PathEscape(collection) + "/records"
	if err := c.do(ctx, http.MethodPost, path, nil, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRecord(ctx context.Context, collection, id string, data map[string]any) (*api.Record, error) {
	var out api.Record
	path := "/api/collections/" + url.PathEscape(collection) + "/records/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, nil, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRecord(ctx context.Context, collection, id string) error {
	path := "/api/collections/" + url.PathEscape(collection) + "/records/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) ListUsers(ctx context.Context, opts api.ListOptions) (*api.UserPage, error) {
	var out api.UserPage
	if err := c.do(ctx, http.MethodGet, "/api/users", listQuery(opts), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, user api.User) (*api.User, error) {
	var out api.User
	if err := c.do(ctx, http.MethodPost, "/api/users", nil, user, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, user api.User) (*api.User, error) {
	var out api.User
	if err := c.do(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(id), nil, user, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) UnlockUser(ctx context.Context, id string) (*api.User, error) {
	var out api.User
	if err := c.do(ctx, http.MethodPost, "/api/users/"+url.PathEscape(id)+"/unlock", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSettingsByCategory(ctx context.Context, category string) ([]api.Setting, error) {
	var out []api.Setting
	if err := c.do(ctx, http.MethodGet, "/api/settings/"+url.PathEscape(category), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateSetting(ctx context.Context, category, key string, value any) (*api.Setting, error) {
	var out api.Setting
	path := "/api/settings/" + url.PathEscape(category) + "/" + url.PathEscape(key)
	body := map[string]any{"value": value}
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
