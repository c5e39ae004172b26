// Package api defines the remote record-store backend as the core sees it:
// the resource types it exchanges and the minimal operation surface the
// cache and mutation layers call. The wire format beyond these shapes is the
// backend's business.
package api

import (
	"time"

	"github.com/wanjohi/go-curator/core/schema"
)

// Collection is a named, user-defined record type together with its schema.
type Collection struct {
	Name      string                  `json:"name"`
	Schema    schema.CollectionSchema `json:"schema"`
	System    bool                    `json:"system,omitempty"`
	CreatedAt time.Time               `json:"created_at,omitempty"`
	UpdatedAt time.Time               `json:"updated_at,omitempty"`
}

// Record is one entry of a collection. Data maps field names to wire values
// conforming to the owning schema; ID and the timestamps are server-assigned.
type Record struct {
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

// User is an operator account of the admin console.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role,omitempty"`
	Locked    bool      `json:"locked,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Setting is a single configuration entry within a category.
type Setting struct {
	Category string `json:"category"`
	Key      string `json:"key"`
	Value    any    `json:"value"`
}

// Pagination describes the position of a fetched page within its full
// result set.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalCount  int `json:"total_count"`
}

// ListOptions carries the paging, search and filter parameters of a list
// call. Filter entries are opaque to the client and interpreted server-side.
type ListOptions struct {
	Page     int
	PageSize int
	Search   string
	Filter   map[string]string
}

// RecordPage is one fetched page of records.
type RecordPage struct {
	Records    []Record   `json:"records"`
	Pagination Pagination `json:"pagination"`
}

// UserPage is one fetched page of users.
type UserPage struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}
