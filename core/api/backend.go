package api

import "context"

// Backend is the remote record-store API the core consumes. Implementations
// perform the actual network I/O; the cache and mutation layers never talk
// to the network themselves. Every call honors its context for cancellation
// and deadline.
type Backend interface {
	ListCollections(ctx context.Context) ([]Collection, error)
	GetCollection(ctx context.Context, name string) (*Collection, error)
	CreateCollection(ctx context.Context, collection Collection) (*Collection, error)
	UpdateCollection(ctx context.Context, name string, collection Collection) (*Collection, error)
	DeleteCollection(ctx context.Context, name string) error

	ListRecords(ctx context.Context, collection string, opts ListOptions) (*RecordPage, error)
	CreateRecord(ctx context.Context, collection string, data map[string]any) (*Record, error)
	UpdateRecord(ctx context.Context, collection string, id string, data map[string]any) (*Record, error)
	DeleteRecord(ctx context.Context, collection string, id string) error

	ListUsers(ctx context.Context, opts ListOptions) (*UserPage, error)
	CreateUser(ctx context.Context, user User) (*User, error)
	UpdateUser(ctx context.Context, id string, user User) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	UnlockUser(ctx context.Context, id string) (*User, error)

	GetSettingsByCategory(ctx context.Context, category string) ([]Setting, error)
	UpdateSetting(ctx context.Context, category, key string, value any) (*Setting, error)
}
