// Package mutation applies create, update and delete operations
// optimistically: the cache reflects the change immediately, the remote call
// follows, and a failed commit restores the exact pre-mutation cache state
// from a snapshot. Mutations against the same entity are serialized;
// mutations against different entities run concurrently.
package mutation

import (
	"context"

	"github.com/wanjohi/go-curator/core/cache"
	"github.com/wanjohi/go-curator/core/schema"
)

// Kind is the mutation operation type.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// State tracks a mutation through its lifecycle. The only legal paths are
// Validating → Rejected, Validating → Applying → Committing → Done, and
// Applying/Committing → RollingBack → Failed.
type State string

const (
	StateValidating  State = "validating"
	StateApplying    State = "applying"
	StateCommitting  State = "committing"
	StateDone        State = "done"
	StateRejected    State = "rejected"
	StateRollingBack State = "rolling_back"
	StateFailed      State = "failed"
)

// Mutation describes one requested change against a resource.
type Mutation struct {
	Kind       Kind
	Resource   cache.Resource
	Collection string // collection name for records, empty for flat resources
	RecordID   string // target id for update/delete
	Payload    map[string]any
	Validator  *schema.RecordValidator // runs for record create/update when set

	// BuildDocument shapes the optimistic cache document from the
	// normalized payload. When nil the payload itself is the document.
	// The executor assigns the document id either way.
	BuildDocument func(payload map[string]any) cache.Document

	// Commit issues the remote call with the already-normalized payload and
	// returns the server's canonical document, or nil for deletes.
	Commit func(ctx context.Context, payload map[string]any) (cache.Document, error)
}

// Outcome reports how a mutation ended.
type Outcome struct {
	ID          string             // pending-mutation id
	State       State              // Done, Rejected or Failed
	FieldErrors schema.FieldErrors // set when State is Rejected
	Document    cache.Document     // server response for create/update
	Err         error              // commit error when State is Failed
}

// entityKey identifies the serialization domain of a mutation: one slot per
// entity id, plus a collection-level slot for creates, which have no id yet.
func (m *Mutation) entityKey() string {
	if m.RecordID != "" {
		return string(m.Resource) + "/" + m.Collection + "/" + m.RecordID
	}
	return string(m.Resource) + "/" + m.Collection
}
