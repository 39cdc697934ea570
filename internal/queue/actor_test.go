package queue

import (
	"context"
	"testing"
	"time"
)

func newTestActor(body []byte, delayMs, retentionSecs, visMs int64, maxRetries *int, dlq dlqSender) (*MessageActor, *VisibleQueue) {
	vq := NewVisibleQueue()
	a := NewMessageActor(newMessageActorParams{
		body:                body,
		delayMs:             delayMs,
		retentionSecs:       retentionSecs,
		defaultVisibilityMs: visMs,
		maxRetries:          maxRetries,
		visibleQueue:        vq,
		sendToDLQ:           dlq,
	}, time.Now)
	return a, vq
}

func TestMessageActorDelayThenVisible(t *testing.T) {
	a, vq := newTestActor([]byte("hello"), 0, 345600, 30000, nil, nil)

	msgs := vq.Dequeue(context.Background(), 1, 500*time.Millisecond)
	if len(msgs) != 1 || msgs[0] != a {
		t.Fatalf("expected the message to become visible, got %v", msgs)
	}
}

func TestMessageActorReceiveTransitionsToInFlight(t *testing.T) {
	a, vq := newTestActor([]byte("hello"), 0, 345600, 100, nil, nil)
	vq.Dequeue(context.Background(), 1, 500*time.Millisecond)

	info, ok := a.Receive(context.Background(), nil)
	if !ok {
		t.Fatalf("expected receive to succeed")
	}
	if info.ApproxReceiveCount != 1 {
		t.Fatalf("expected ApproxReceiveCount=1, got %d", info.ApproxReceiveCount)
	}
	if a.State() != StateInFlight {
		t.Fatalf("expected state IN_FLIGHT, got %s", a.State())
	}

	if _, ok := a.Receive(context.Background(), nil); ok {
		t.Fatalf("expected second immediate receive to fail while in flight")
	}
}

func TestMessageActorVisibilityExpiryReenqueues(t *testing.T) {
	a, vq := newTestActor([]byte("hello"), 0, 345600, 100, nil, nil)
	vq.Dequeue(context.Background(), 1, 500*time.Millisecond)
	if _, ok := a.Receive(context.Background(), nil); !ok {
		t.Fatalf("expected first receive to succeed")
	}

	msgs := vq.Dequeue(context.Background(), 1, 500*time.Millisecond)
	if len(msgs) != 1 || msgs[0] != a {
		t.Fatalf("expected message to reappear after visibility timeout, got %v", msgs)
	}

	info, ok := a.Receive(context.Background(), nil)
	if !ok {
		t.Fatalf("expected second receive to succeed")
	}
	if info.ApproxReceiveCount != 2 {
		t.Fatalf("expected ApproxReceiveCount=2, got %d", info.ApproxReceiveCount)
	}
}

func TestMessageActorChangeVisibilityToZeroReenqueuesImmediately(t *testing.T) {
	a, vq := newTestActor([]byte("hello"), 0, 345600, 30000, nil, nil)
	vq.Dequeue(context.Background(), 1, 500*time.Millisecond)
	if _, ok := a.Receive(context.Background(), nil); !ok {
		t.Fatalf("expected receive to succeed")
	}

	if err := a.ChangeVisibility(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error from ChangeVisibility: %v", err)
	}

	msgs := vq.Dequeue(context.Background(), 1, 500*time.Millisecond)
	if len(msgs) != 1 {
		t.Fatalf("expected message to be immediately visible again, got %v", msgs)
	}
}

func TestMessageActorDelete(t *testing.T) {
	a, vq := newTestActor([]byte("hello"), 0, 345600, 30000, nil, nil)
	vq.Dequeue(context.Background(), 1, 500*time.Millisecond)

	a.Delete(context.Background())

	if _, ok := a.Receive(context.Background(), nil); ok {
		t.Fatalf("expected receive on deleted actor to fail")
	}
}

func TestMessageActorMaxRetriesRoutesToDLQ(t *testing.T) {
	var dlqBody []byte
	dlq := func(body []byte) error {
		dlqBody = body
		return nil
	}

	maxRetries := 1
	a, vq := newTestActor([]byte("x"), 0, 345600, 50, &maxRetries, dlq)
	vq.Dequeue(context.Background(), 1, 500*time.Millisecond)

	if _, ok := a.Receive(context.Background(), nil); !ok {
		t.Fatalf("expected first receive to succeed")
	}

	msgs := vq.Dequeue(context.Background(), 1, 500*time.Millisecond)
	if len(msgs) != 1 {
		t.Fatalf("expected message back on the visible queue after timeout")
	}

	if _, ok := a.Receive(context.Background(), nil); ok {
		t.Fatalf("expected second receive to dead-letter instead of succeeding")
	}

	if string(dlqBody) != "x" {
		t.Fatalf("expected dead-lettered body %q, got %q", "x", dlqBody)
	}
	if a.State() != StateDeleted {
		t.Fatalf("expected state DELETED after dead-lettering, got %s", a.State())
	}
}

func TestMessageActorRetentionExpiryDeletes(t *testing.T) {
	a, vq := newTestActor([]byte("hello"), 0, 1, 30000, nil, nil)
	vq.Dequeue(context.Background(), 1, 500*time.Millisecond)

	time.Sleep(1200 * time.Millisecond)

	if _, ok := a.Receive(context.Background(), nil); ok {
		t.Fatalf("expected receive after retention expiry to fail")
	}
	if a.State() != StateDeleted {
		t.Fatalf("expected state DELETED after retention expiry, got %s", a.State())
	}
}
