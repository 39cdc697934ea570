package queue

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/deque"
)

// VisibleQueue is the per-queue FIFO of message actor references that are
// currently visible and eligible for delivery (spec.md §4.3). Backed by
// gammazero/deque, a ring-buffer deque pulled in directly for this purpose
// rather than reimplementing one over container/list (see DESIGN.md).
//
// Blocking Dequeue is implemented with a lock plus a "broadcast" channel
// that is closed and replaced on every Enqueue, waking every blocked
// dequeuer at once the way sync.Cond.Broadcast would, but with select-
// friendly timeout support, which sync.Cond lacks.
type VisibleQueue struct {
	mu       sync.Mutex
	items    deque.Deque[*MessageActor]
	notifyCh chan struct{}
	closed   bool
}

// NewVisibleQueue returns an empty VisibleQueue.
func NewVisibleQueue() *VisibleQueue {
	return &VisibleQueue{notifyCh: make(chan struct{})}
}

// Enqueue appends a reference to the tail, per spec.md §4.3's FIFO ordering:
// messages re-enqueued after visibility timeout go to the tail, same as a
// first-time send.
func (q *VisibleQueue) Enqueue(m *MessageActor) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items.PushBack(m)
	old := q.notifyCh
	q.notifyCh = make(chan struct{})
	q.mu.Unlock()
	close(old)
}

// Dequeue returns between 0 and maxCount references. If the queue is
// non-empty it returns immediately; otherwise it blocks up to wait,
// returning as soon as anything is enqueued or ctx is cancelled (spec.md
// §4.3, §5's cancellation requirement).
func (q *VisibleQueue) Dequeue(ctx context.Context, maxCount int, wait time.Duration) []*MessageActor {
	if maxCount <= 0 {
		return nil
	}

	deadline := time.Now().Add(wait)
	for {
		q.mu.Lock()
		if q.items.Len() > 0 {
			out := q.takeLocked(maxCount)
			q.mu.Unlock()
			return out
		}
		if q.closed {
			q.mu.Unlock()
			return nil
		}
		ch := q.notifyCh
		q.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}

		timer := time.NewTimer(remaining)
		select {
		case <-ch:
			timer.Stop()
			// Loop around: something was enqueued (or the queue was
			// closed), re-check under the lock.
		case <-timer.C:
			return nil
		case <-ctx.Done():
			timer.Stop()
			return nil
		}
	}
}

// takeLocked must be called with q.mu held.
func (q *VisibleQueue) takeLocked(maxCount int) []*MessageActor {
	n := q.items.Len()
	if n > maxCount {
		n = maxCount
	}
	out := make([]*MessageActor, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, q.items.PopFront())
	}
	return out
}

// Requeue pushes m back onto the head of the queue. Used when a reference
// handed out by Dequeue could not be claimed (e.g. the caller's context was
// cancelled before Receive completed) and must be made available again
// ahead of anything enqueued since, rather than dropped (spec.md §5:
// cancellation must not leak a dequeued reference).
func (q *VisibleQueue) Requeue(m *MessageActor) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items.PushFront(m)
	old := q.notifyCh
	q.notifyCh = make(chan struct{})
	q.mu.Unlock()
	close(old)
}

// Remove detaches m from the queue if present, used when a message is
// deleted or dead-lettered while still sitting in the visible queue (e.g. a
// race between delete and a blocked receiver, spec.md §5's cancellation
// note). O(n); visible queues are expected to be short-lived in practice.
func (q *VisibleQueue) Remove(m *MessageActor) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := 0; i < q.items.Len(); i++ {
		if q.items.At(i) == m {
			q.items.Remove(i)
			return
		}
	}
}

// Len reports the current number of visible references, used for
// GetQueueAttributes' ApproximateNumberOfMessages.
func (q *VisibleQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Close releases any blocked dequeuers with an empty result and marks the
// queue as torn down, called by DeleteQueue (spec.md §4.5, §7: "receive on a
// deleted queue observes empty list... never hangs indefinitely").
func (q *VisibleQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	old := q.notifyCh
	q.mu.Unlock()
	close(old)
}
