package queue

import (
	"sync"

	"github.com/google/uuid"
)

// receiptEntry binds an issued handle to the actor and receive-generation
// it was minted for (spec.md §4.4, §9's Open Question resolution: only the
// latest handle per message is valid).
type receiptEntry struct {
	actor      *MessageActor
	generation uint64
}

// ReceiptTable is the per-queue opaque-handle -> Message Actor mapping from
// spec.md §4.4. Handles are never reused; older handles for a message that
// has since been re-received resolve to ErrReceiptHandleInvalid because
// their recorded generation no longer matches the actor's current one.
type ReceiptTable struct {
	mu      sync.Mutex
	entries map[string]receiptEntry
}

// NewReceiptTable returns an empty ReceiptTable.
func NewReceiptTable() *ReceiptTable {
	return &ReceiptTable{entries: make(map[string]receiptEntry)}
}

// Issue mints a fresh unguessable handle bound to actor's current
// generation.
func (t *ReceiptTable) Issue(actor *MessageActor) string {
	handle := uuid.NewString()
	t.mu.Lock()
	t.entries[handle] = receiptEntry{actor: actor, generation: actor.Generation()}
	t.mu.Unlock()
	return handle
}

// Resolve looks up the actor for handle, failing if the handle is unknown
// or if the actor has since been re-received (a newer generation than the
// one this handle was issued for is now live).
func (t *ReceiptTable) Resolve(handle string) (*MessageActor, *SQSError) {
	t.mu.Lock()
	entry, ok := t.entries[handle]
	t.mu.Unlock()
	if !ok {
		return nil, ErrReceiptHandleInvalid()
	}
	if entry.actor.Generation() != entry.generation {
		return nil, ErrReceiptHandleInvalid()
	}
	return entry.actor, nil
}

// Revoke idempotently removes handle from the table.
func (t *ReceiptTable) Revoke(handle string) {
	t.mu.Lock()
	delete(t.entries, handle)
	t.mu.Unlock()
}
