// Package console is the client facade of the admin console core. It wires
// the entity cache, the optimistic mutation executor and the compiled
// record validators over a remote Backend, and exposes the read, validate
// and mutate operations the UI layer consumes.
package console

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wanjohi/go-curator/core/api"
	"github.com/wanjohi/go-curator/core/cache"
	"github.com/wanjohi/go-curator/core/mutation"
)

// Client is the single entry point for UI-triggered reads and writes.
type Client struct {
	backend  api.Backend
	cache    *cache.Cache
	executor *mutation.Executor
	logger   *zap.Logger

	ttl           time.Duration
	commitTimeout time.Duration
	store         cache.Store
	clock         func() time.Time

	subs *subscriptionRegistry
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger to the client and its components.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTTL overrides the default cache freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// WithCommitTimeout bounds each remote commit.
func WithCommitTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.commitTimeout = timeout }
}

// WithStore persists cache entries across sessions.
func WithStore(store cache.Store) Option {
	return func(c *Client) { c.store = store }
}

// WithClock injects the time source, used by tests to age cache entries.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.clock = now }
}

// New creates a Client over the given backend.
func New(backend api.Backend, opts ...Option) (*Client, error) {
	if backend == nil {
		return nil, fmt.Errorf("console: backend must not be nil")
	}

	c := &Client{
		backend:       backend,
		logger:        zap.NewNop(),
		ttl:           cache.DefaultTTL,
		commitTimeout: mutation.DefaultCommitTimeout,
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	cacheOpts := []cache.Option{
		cache.WithTTL(c.ttl),
		cache.WithLogger(c.logger),
		cache.WithClock(c.clock),
	}
	if c.store != nil {
		cacheOpts = append(cacheOpts, cache.WithStore(c.store))
	}

	store, err := cache.New(cacheOpts...)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	c.cache = store
	c.executor = mutation.NewExecutor(store,
		mutation.WithLogger(c.logger),
		mutation.WithCommitTimeout(c.commitTimeout),
	)
	c.subs = newSubscriptionRegistry()
	return c, nil
}

// Cache exposes the underlying cache, mainly for tests and diagnostics.
func (c *Client) Cache() *cache.Cache {
	return c.cache
}

// InvalidateAll drops every cached page, forcing refetches everywhere.
func (c *Client) InvalidateAll() {
	c.cache.InvalidateAll()
}
