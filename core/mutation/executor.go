package mutation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanjohi/go-curator/core/cache"
)

// DefaultCommitTimeout bounds the remote call of a single commit. A timed
// out commit is treated exactly like a network failure: roll back, surface,
// never retry automatically.
const DefaultCommitTimeout = 30 * time.Second

// Executor runs mutations through the optimistic state machine against a
// shared cache.
type Executor struct {
	cache   *cache.Cache
	logger  *zap.Logger
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*entityLock
}

// entityLock is one serialization slot, refcounted so the slot map can be
// pruned once nobody holds or waits on it.
type entityLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger attaches a logger for state-transition diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithCommitTimeout overrides the per-commit deadline. Zero disables the
// bound (the caller's context still applies).
func WithCommitTimeout(timeout time.Duration) Option {
	return func(e *Executor) { e.timeout = timeout }
}

// NewExecutor creates an executor over the given cache.
func NewExecutor(c *cache.Cache, opts ...Option) *Executor {
	e := &Executor{
		cache:   c,
		logger:  zap.NewNop(),
		timeout: DefaultCommitTimeout,
		locks:   make(map[string]*entityLock),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one mutation to completion and reports its outcome. The call
// blocks while an earlier mutation against the same entity is in flight, so
// a second update to an id always sees the first one's cache state. A
// cancelled or timed-out commit takes the rollback path like any other
// failure; the cache is never left reflecting an unconfirmed write.
func (e *Executor) Run(ctx context.Context, m Mutation) *Outcome {
	unlock := e.lockEntity(m.entityKey())
	defer unlock()

	outcome := &Outcome{ID: uuid.NewString(), State: StateValidating}
	log := e.logger.With(
		zap.String("mutation", outcome.ID),
		zap.String("kind", string(m.Kind)),
		zap.String("resource", string(m.Resource)),
		zap.String("collection", m.Collection),
	)

	payload := m.Payload
	if m.Validator != nil && (m.Kind == KindCreate || m.Kind == KindUpdate) {
		normalized, fieldErrs := m.Validator.Validate(m.Payload)
		if len(fieldErrs) > 0 {
			outcome.State = StateRejected
			outcome.FieldErrors = fieldErrs
			log.Debug("mutation rejected by validation", zap.Int("fields", len(fieldErrs)))
			return outcome
		}
		payload = normalized
	}

	outcome.State = StateApplying
	snap, placeholderID := e.apply(m, payload)

	outcome.State = StateCommitting
	doc, err := e.commit(ctx, m, payload)
	if err != nil {
		outcome.State = StateRollingBack
		e.cache.Restore(snap)
		outcome.State = StateFailed
		outcome.Err = err
		log.Warn("mutation commit failed, cache restored", zap.Error(err))
		return outcome
	}

	e.reconcile(m, placeholderID, doc)
	outcome.State = StateDone
	outcome.Document = doc
	log.Debug("mutation committed")
	return outcome
}

// apply snapshots every cache key the mutation can touch, then patches the
// cache so the UI reflects the change before the network round trip.
// Creates insert a placeholder document under a locally-synthesized id that
// the commit step replaces with the server's.
func (e *Executor) apply(m Mutation, payload map[string]any) (cache.Snapshot, string) {
	keys := e.cache.Keys(m.Resource, m.Collection)
	snap := e.cache.Snapshot(keys...)

	buildDocument := m.BuildDocument
	if buildDocument == nil {
		buildDocument = func(p map[string]any) cache.Document {
			doc := make(cache.Document, len(p)+1)
			for k, v := range p {
				doc[k] = v
			}
			return doc
		}
	}

	var placeholderID string
	switch m.Kind {
	case KindCreate:
		placeholderID = uuid.NewString()
		doc := buildDocument(payload)
		doc["id"] = placeholderID
		e.cache.ApplyInsert(m.Resource, m.Collection, doc)
	case KindUpdate:
		doc := buildDocument(payload)
		doc["id"] = m.RecordID
		e.cache.ApplyReplace(m.Resource, m.Collection, doc)
	case KindDelete:
		e.cache.ApplyRemove(m.Resource, m.Collection, m.RecordID)
	}
	return snap, placeholderID
}

// commit issues the remote call under the configured deadline.
func (e *Executor) commit(ctx context.Context, m Mutation, payload map[string]any) (cache.Document, error) {
	if m.Commit == nil {
		return nil, fmt.Errorf("mutation has no commit function")
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return m.Commit(ctx, payload)
}

// reconcile folds the server's authoritative response back into the cache,
// replacing any locally-synthesized fields.
func (e *Executor) reconcile(m Mutation, placeholderID string, doc cache.Document) {
	if doc == nil {
		return
	}
	switch m.Kind {
	case KindCreate:
		e.cache.Reconcile(m.Resource, m.Collection, placeholderID, doc)
	case KindUpdate:
		e.cache.ApplyReplace(m.Resource, m.Collection, doc)
	}
}

// LockEntity blocks until no other mutation holds the given entity slot and
// returns its release function. Mutations that cannot go through Run but
// still need same-entity ordering (the settings write path manages its own
// snapshot and rollback) take the slot through here, so they serialize with
// everything else touching that entity.
func (e *Executor) LockEntity(key string) func() {
	return e.lockEntity(key)
}

func (e *Executor) lockEntity(key string) func() {
	e.mu.Lock()
	lock, ok := e.locks[key]
	if !ok {
		lock = &entityLock{}
		e.locks[key] = lock
	}
	lock.refs++
	e.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		e.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(e.locks, key)
		}
		e.mu.Unlock()
	}
}
