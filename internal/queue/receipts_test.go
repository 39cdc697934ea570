package queue

import (
	"context"
	"testing"
	"time"
)

func TestReceiptTableIssueAndResolve(t *testing.T) {
	a, vq := newTestActor([]byte("hello"), 0, 345600, 30000, nil, nil)
	vq.Dequeue(context.Background(), 1, 500*time.Millisecond)
	if _, ok := a.Receive(context.Background(), nil); !ok {
		t.Fatalf("expected receive to succeed")
	}

	table := NewReceiptTable()
	handle := table.Issue(a)

	resolved, err := table.Resolve(handle)
	if err != nil {
		t.Fatalf("unexpected error resolving handle: %v", err)
	}
	if resolved != a {
		t.Fatalf("expected resolved actor to match")
	}
}

func TestReceiptTableResolveUnknownHandle(t *testing.T) {
	table := NewReceiptTable()
	if _, err := table.Resolve("does-not-exist"); err == nil {
		t.Fatalf("expected ReceiptHandleIsInvalid for unknown handle")
	} else if err.Code != CodeReceiptHandleBad {
		t.Fatalf("expected code %s, got %s", CodeReceiptHandleBad, err.Code)
	}
}

func TestReceiptTableStaleHandleAfterRereceive(t *testing.T) {
	a, vq := newTestActor([]byte("hello"), 0, 345600, 100, nil, nil)
	vq.Dequeue(context.Background(), 1, 500*time.Millisecond)
	if _, ok := a.Receive(context.Background(), nil); !ok {
		t.Fatalf("expected first receive to succeed")
	}

	table := NewReceiptTable()
	oldHandle := table.Issue(a)

	// Wait for visibility to expire and re-receive, bumping the actor's
	// generation past what oldHandle was issued for.
	vq.Dequeue(context.Background(), 1, 500*time.Millisecond)
	if _, ok := a.Receive(context.Background(), nil); !ok {
		t.Fatalf("expected second receive to succeed")
	}

	if _, err := table.Resolve(oldHandle); err == nil {
		t.Fatalf("expected stale handle to be rejected")
	}
}

func TestReceiptTableRevoke(t *testing.T) {
	a, vq := newTestActor([]byte("hello"), 0, 345600, 30000, nil, nil)
	vq.Dequeue(context.Background(), 1, 500*time.Millisecond)
	a.Receive(context.Background(), nil)

	table := NewReceiptTable()
	handle := table.Issue(a)
	table.Revoke(handle)

	if _, err := table.Resolve(handle); err == nil {
		t.Fatalf("expected revoked handle to be rejected")
	}

	// Revoking twice is a no-op.
	table.Revoke(handle)
}
