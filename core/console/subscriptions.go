package console

import (
	"sync"

	"github.com/google/uuid"

	"github.com/wanjohi/go-curator/core/cache"
)

// RegisterSubscriptionOptions defines options for subscribing to cache
// change notifications.
type RegisterSubscriptionOptions struct {
	Event       cache.EventType
	Callback    cache.CallbackFunction
	Label       *string
	Description *string
}

// SubscriptionInfo describes one active subscription.
type SubscriptionInfo struct {
	ID          string `json:"id"`
	Event       cache.EventType
	Unsubscribe func() `json:"-"`
	Label       *string
	Description *string
}

type subscriptionRegistry struct {
	mu   sync.RWMutex
	subs map[string]*SubscriptionInfo
}

func newSubscriptionRegistry() *subscriptionRegistry {
	return &subscriptionRegistry{subs: make(map[string]*SubscriptionInfo)}
}

// RegisterSubscription subscribes a callback to a cache event and returns a
// unique id for later unregistration. This is the subscribable read API the
// UI uses to re-render pages the mutation layer touched.
func (c *Client) RegisterSubscription(options RegisterSubscriptionOptions) string {
	c.subs.mu.Lock()
	defer c.subs.mu.Unlock()

	unsubscribe := c.cache.Subscribe(options.Event, options.Callback)
	id := uuid.NewString()

	c.subs.subs[id] = &SubscriptionInfo{
		ID:          id,
		Event:       options.Event,
		Unsubscribe: unsubscribe,
		Label:       options.Label,
		Description: options.Description,
	}
	return id
}

// UnregisterSubscription removes a subscription by its id.
func (c *Client) UnregisterSubscription(id string) {
	c.subs.mu.Lock()
	defer c.subs.mu.Unlock()

	if info, ok := c.subs.subs[id]; ok {
		info.Unsubscribe()
		delete(c.subs.subs, id)
	}
}

// Subscriptions returns all currently active subscriptions.
func (c *Client) Subscriptions() []SubscriptionInfo {
	c.subs.mu.RLock()
	defer c.subs.mu.RUnlock()

	out := make([]SubscriptionInfo, 0, len(c.subs.subs))
	for _, info := range c.subs.subs {
		out = append(out, *info)
	}
	return out
}
