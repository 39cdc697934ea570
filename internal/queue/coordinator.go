package queue

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jn-rp/vassal/internal/logging"
)

// ReceivedMessage is what ReceiveMessage hands back to a caller: a message
// body plus the receipt handle needed to delete or extend it (spec.md
// §4.5).
type ReceivedMessage struct {
	MessageID     string
	ReceiptHandle string
	Body          []byte
	BodyMD5       string
	Attributes    map[string]string
}

// Coordinator is the per-queue façade from spec.md §4.5: it owns a queue's
// Visible-Message Queue and Receipt Handle Table, and is the only thing
// that constructs Message Actors for its queue. One Coordinator exists per
// registered queue name, held by the Store.
type Coordinator struct {
	name  string
	store *Store

	cfg atomic.Pointer[QueueConfig]

	visibleQueue *VisibleQueue
	receipts     *ReceiptTable

	msgMu   sync.Mutex
	members map[*MessageActor]struct{}

	logger logging.Logger
}

func newCoordinator(name string, cfg QueueConfig, store *Store, logger logging.Logger) *Coordinator {
	c := &Coordinator{
		name:         name,
		store:        store,
		visibleQueue: NewVisibleQueue(),
		receipts:     NewReceiptTable(),
		members:      make(map[*MessageActor]struct{}),
		logger:       logger,
	}
	c.cfg.Store(&cfg)
	return c
}

// Config returns the queue's current configuration.
func (c *Coordinator) Config() QueueConfig {
	return *c.cfg.Load()
}

// SetQueueAttributes atomically swaps in a new configuration, per spec.md
// §3's "immutable after creation unless explicitly updated". Overlays mut
// onto the current config: only the fields named in set are copied from
// mut (zero values included); every other field keeps its current value.
func (c *Coordinator) SetQueueAttributes(mut QueueConfig, set map[string]bool) {
	cur := c.Config()
	if set["DelayMs"] {
		cur.DelayMs = mut.DelayMs
	}
	if set["MaxMessageBytes"] {
		cur.MaxMessageBytes = mut.MaxMessageBytes
	}
	if set["RetentionSecs"] {
		cur.RetentionSecs = mut.RetentionSecs
	}
	if set["RecvWaitTimeMs"] {
		cur.RecvWaitTimeMs = mut.RecvWaitTimeMs
	}
	if set["VisibilityTimeoutMs"] {
		cur.VisibilityTimeoutMs = mut.VisibilityTimeoutMs
	}
	if set["MaxRetries"] {
		cur.MaxRetries = mut.MaxRetries
	}
	if set["DeadLetterQueue"] {
		cur.DeadLetterQueue = mut.DeadLetterQueue
	}
	c.cfg.Store(&cur)
}

// GetQueueAttributes reports the queue's configuration plus the approximate
// message counts SPEC_FULL.md §5 adds on top of spec.md, computed by
// walking the queue's live message set states, grounded on
// robmorgan-infraspec's buildQueueAttributesMap.
func (c *Coordinator) GetQueueAttributes() map[string]string {
	cfg := c.Config()
	notVisible, delayed := c.memberStateCounts()
	attrs := map[string]string{
		"DelaySeconds":                          strconv.FormatInt(cfg.DelayMs/1000, 10),
		"MaximumMessageSize":                    strconv.Itoa(cfg.MaxMessageBytes),
		"MessageRetentionPeriod":                strconv.FormatInt(cfg.RetentionSecs, 10),
		"ReceiveMessageWaitTimeSeconds":         strconv.FormatInt(cfg.RecvWaitTimeMs/1000, 10),
		"VisibilityTimeout":                     strconv.FormatInt(cfg.VisibilityTimeoutMs/1000, 10),
		"ApproximateNumberOfMessages":           strconv.Itoa(c.visibleQueue.Len()),
		"ApproximateNumberOfMessagesNotVisible": strconv.Itoa(notVisible),
		"ApproximateNumberOfMessagesDelayed":    strconv.Itoa(delayed),
	}
	if cfg.DeadLetterQueue != "" {
		attrs["RedrivePolicy"] = cfg.DeadLetterQueue
	}
	return attrs
}

// memberStateCounts walks the queue's member actor set and buckets it into
// in-flight (NotVisible) and delayed counts; VISIBLE messages are already
// counted by visibleQueue.Len() and DELETED actors have detached themselves
// from members by the time this runs.
func (c *Coordinator) memberStateCounts() (notVisible, delayed int) {
	c.msgMu.Lock()
	defer c.msgMu.Unlock()
	for a := range c.members {
		switch a.State() {
		case StateInFlight:
			notVisible++
		case StateDelayed:
			delayed++
		}
	}
	return notVisible, delayed
}

// SendMessage creates and registers a new Message Actor for body, applying
// per-message overrides of the queue's DelayMs (spec.md §4.2's "per-message
// overrides of queue config, captured at send time").
func (c *Coordinator) SendMessage(body []byte, delayMsOverride *int64) (MessageInfo, *SQSError) {
	cfg := c.Config()
	if len(body) > cfg.MaxMessageBytes {
		return MessageInfo{}, ErrBodyTooLarge(cfg.MaxMessageBytes)
	}

	delayMs := cfg.DelayMs
	if delayMsOverride != nil {
		delayMs = *delayMsOverride
	}

	dlqName := cfg.DeadLetterQueue
	var sender dlqSender
	if dlqName != "" {
		sender = func(b []byte) error {
			dst, err := c.store.Queue(dlqName)
			if err != nil {
				return err
			}
			_, sendErr := dst.SendMessage(b, nil)
			return sendErr
		}
	}

	a := NewMessageActor(newMessageActorParams{
		body:                body,
		delayMs:             delayMs,
		retentionSecs:       cfg.RetentionSecs,
		defaultVisibilityMs: cfg.VisibilityTimeoutMs,
		maxRetries:          cfg.MaxRetries,
		visibleQueue:        c.visibleQueue,
		sendToDLQ:           sender,
		onTerminate:         c.detach,
	}, time.Now)

	c.msgMu.Lock()
	c.members[a] = struct{}{}
	c.msgMu.Unlock()

	return a.Snapshot(), nil
}

// ReceiveMessage dequeues up to maxMessages visible actors, transitions
// each to IN_FLIGHT, and mints a receipt handle for each (spec.md §4.3,
// §4.4). waitMs bounds long-polling; visibilityMsOverride overrides the
// queue default for this batch only.
func (c *Coordinator) ReceiveMessage(ctx context.Context, maxMessages int, waitMs *int64, visibilityMsOverride *int64) ([]ReceivedMessage, *SQSError) {
	if maxMessages < 1 || maxMessages > 10 {
		return nil, ErrInvalidMaxMessages()
	}

	cfg := c.Config()
	wait := time.Duration(cfg.RecvWaitTimeMs) * time.Millisecond
	if waitMs != nil {
		wait = time.Duration(*waitMs) * time.Millisecond
	}

	candidates := c.visibleQueue.Dequeue(ctx, maxMessages, wait)

	out := make([]ReceivedMessage, 0, len(candidates))
	for _, a := range candidates {
		info, ok := a.Receive(ctx, visibilityMsOverride)
		if !ok {
			// If the actor is still VISIBLE, Receive failed only because
			// ctx was cancelled before it reached the actor's mailbox: the
			// reference Dequeue handed us must go back on the queue rather
			// than be dropped, or the message is orphaned (spec.md §5).
			// Otherwise it was dead-lettered or deleted out from under us
			// between dequeue and receive, and is correctly excluded.
			if a.State() == StateVisible {
				c.visibleQueue.Requeue(a)
			}
			continue
		}
		handle := c.receipts.Issue(a)
		out = append(out, ReceivedMessage{
			MessageID:     info.MessageID,
			ReceiptHandle: handle,
			Body:          info.Body,
			BodyMD5:       info.BodyMD5,
			Attributes:    info.Attributes(),
		})
	}
	return out, nil
}

// DeleteMessage resolves receiptHandle and terminates the corresponding
// actor (spec.md §4.4).
func (c *Coordinator) DeleteMessage(receiptHandle string) *SQSError {
	a, err := c.receipts.Resolve(receiptHandle)
	if err != nil {
		return err
	}
	a.Delete(context.Background())
	c.receipts.Revoke(receiptHandle)
	return nil
}

// ChangeMessageVisibility resolves receiptHandle and resets its actor's
// in-flight visibility timer (spec.md §4.4).
func (c *Coordinator) ChangeMessageVisibility(ctx context.Context, receiptHandle string, ms int64) *SQSError {
	a, err := c.receipts.Resolve(receiptHandle)
	if err != nil {
		return err
	}
	_ = a.ChangeVisibility(ctx, ms)
	return nil
}

// PurgeQueue deletes every message currently owned by the queue without
// deleting the queue itself, supplementing spec.md per SPEC_FULL.md §5.
func (c *Coordinator) PurgeQueue() {
	c.msgMu.Lock()
	members := make([]*MessageActor, 0, len(c.members))
	for a := range c.members {
		members = append(members, a)
	}
	c.msgMu.Unlock()

	for _, a := range members {
		a.Delete(context.Background())
	}
}

// detach removes a terminated actor from the member set. Passed to
// NewMessageActor as its onTerminate callback.
func (c *Coordinator) detach(a *MessageActor) {
	c.msgMu.Lock()
	delete(c.members, a)
	c.msgMu.Unlock()
}

// teardown terminates every member actor and closes the visible queue so
// blocked receivers unblock with an empty result, called by
// Store.DeleteQueue.
func (c *Coordinator) teardown() {
	c.PurgeQueue()
	c.visibleQueue.Close()
}
