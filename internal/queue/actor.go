package queue

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// dlqSender forwards a message body to a dead-letter queue's coordinator.
// Injected by the owning Coordinator so MessageActor never depends on
// Coordinator directly (spec.md §4.2: "route to dead_letter_queue instead:
// synchronously send body to DLQ's Coordinator").
type dlqSender func(body []byte) error

// terminateFunc is invoked exactly once when an actor reaches StateDeleted,
// letting the owning Queue detach it from its message set (spec.md §3:
// "message_set ... required for DeleteQueue cleanup").
type terminateFunc func(*MessageActor)

// MessageActor owns one message's full lifecycle: state machine, delay/
// visibility/retention timers, receive counter, and timestamps (spec.md
// §4.2). It runs as a single goroutine with a serialized mailbox channel,
// the concurrency idiom the teacher uses throughout consumer.go
// (one goroutine per unit of work, coordinated over channels) and which
// mintel-elasticsearch-asg's squeues.Dispatcher uses for the same kind of
// per-message visibility bookkeeping.
type MessageActor struct {
	mailbox chan actorCmd
	done    chan struct{}

	// state and generation are updated only by the actor's own goroutine
	// but read from other goroutines (attribute counts, receipt
	// validation), so they are atomics rather than being guarded by a
	// mutex shared with the rest of the fields.
	state      atomic.Int32
	generation atomic.Uint64

	id      string
	body    []byte
	bodyMD5 string

	sentTimestamp         int64
	firstReceiveTimestamp int64
	approxReceiveCount    int64

	defaultVisibilityMs int64
	maxRetries          *int

	visibleQueue *VisibleQueue
	sendToDLQ    dlqSender
	onTerminate  terminateFunc
}

type actorCmd interface{ isActorCmd() }

type receiveCmd struct {
	visibilityTimeoutMs *int64
	reply                chan receiveResult
}

type receiveResult struct {
	info MessageInfo
	ok   bool
}

type changeVisibilityCmd struct {
	ms    int64
	reply chan error
}

type deleteCmd struct {
	reply chan struct{}
}

func (receiveCmd) isActorCmd()          {}
func (changeVisibilityCmd) isActorCmd() {}
func (deleteCmd) isActorCmd()           {}

// newMessageActorParams bundles MessageActor construction inputs so
// NewMessageActor itself stays a short, readable function.
type newMessageActorParams struct {
	body                []byte
	delayMs             int64
	retentionSecs       int64
	defaultVisibilityMs int64
	maxRetries          *int
	visibleQueue        *VisibleQueue
	sendToDLQ           dlqSender
	onTerminate         terminateFunc
}

// NewMessageActor creates and starts a Message Actor for a freshly sent
// message, arming its delay and retention timers. now() supplies the sent
// timestamp so tests can control it deterministically; production callers
// pass time.Now. The first-receive timestamp is read from time.Now.
func NewMessageActor(p newMessageActorParams, now func() time.Time) *MessageActor {
	sum := md5.Sum(p.body)

	a := &MessageActor{
		mailbox:             make(chan actorCmd),
		done:                make(chan struct{}),
		id:                  uuid.NewString(),
		body:                p.body,
		bodyMD5:             hex.EncodeToString(sum[:]),
		sentTimestamp:       now().Unix(),
		defaultVisibilityMs: p.defaultVisibilityMs,
		maxRetries:          p.maxRetries,
		visibleQueue:        p.visibleQueue,
		sendToDLQ:           p.sendToDLQ,
		onTerminate:         p.onTerminate,
	}
	a.state.Store(int32(StateDelayed))

	retention := time.Duration(p.retentionSecs) * time.Second
	if retention <= 0 {
		retention = time.Duration(DefaultRetentionSecs) * time.Second
	}

	go a.run(time.Duration(p.delayMs)*time.Millisecond, retention)
	return a
}

// ID returns the message's immutable id.
func (a *MessageActor) ID() string { return a.id }

// State returns the actor's current lifecycle state without going through
// the mailbox; acceptable because spec.md only requires the derived counts
// that read this to be "approximate".
func (a *MessageActor) State() State { return State(a.state.Load()) }

// Generation returns the receive generation last handed out, used by the
// Receipt Handle Table to invalidate stale handles (spec.md §4.4/§9).
func (a *MessageActor) Generation() uint64 { return a.generation.Load() }

// Snapshot reads a point-in-time MessageInfo without mutating state, used
// for attribute inspection outside of receive/delete flows.
func (a *MessageActor) Snapshot() MessageInfo {
	return MessageInfo{
		MessageID:             a.id,
		Body:                  a.body,
		BodyMD5:               a.bodyMD5,
		SentTimestamp:         a.sentTimestamp,
		FirstReceiveTimestamp: a.firstReceiveTimestamp,
		ApproxReceiveCount:    a.approxReceiveCount,
		State:                 a.State(),
	}
}

// Receive asks the actor to transition VISIBLE -> IN_FLIGHT. Returns
// (MessageInfo, false) if the message was not VISIBLE, was dead-lettered
// during this call, or the actor has already terminated (spec.md §4.2).
func (a *MessageActor) Receive(ctx context.Context, visibilityTimeoutMs *int64) (MessageInfo, bool) {
	reply := make(chan receiveResult, 1)
	if !a.send(ctx, receiveCmd{visibilityTimeoutMs: visibilityTimeoutMs, reply: reply}) {
		return MessageInfo{}, false
	}
	select {
	case r := <-reply:
		return r.info, r.ok
	case <-a.done:
		return MessageInfo{}, false
	}
}

// ChangeVisibility resets the in-flight visibility timer, or re-enqueues
// immediately if ms == 0 (spec.md §4.2). Always returns nil in the current
// implementation; "not in-flight" is a silent no-op per
// spec.md's "valid only in IN_FLIGHT" wording combined with the Receipt
// Handle Table already rejecting stale handles before this is ever called.
func (a *MessageActor) ChangeVisibility(ctx context.Context, ms int64) error {
	reply := make(chan error, 1)
	if !a.send(ctx, changeVisibilityCmd{ms: ms, reply: reply}) {
		return nil
	}
	select {
	case err := <-reply:
		return err
	case <-a.done:
		return nil
	}
}

// Delete terminates the actor. Idempotent: deleting an already-deleted or
// already-gone actor is a no-op.
func (a *MessageActor) Delete(ctx context.Context) {
	reply := make(chan struct{}, 1)
	if !a.send(ctx, deleteCmd{reply: reply}) {
		return
	}
	select {
	case <-reply:
	case <-a.done:
	}
}

// send delivers cmd to the mailbox, returning false if the actor has
// already terminated or ctx was cancelled first.
func (a *MessageActor) send(ctx context.Context, cmd actorCmd) bool {
	select {
	case a.mailbox <- cmd:
		return true
	case <-a.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// run is the actor's single goroutine: it owns every non-atomic field and
// is the only thing that ever mutates them.
func (a *MessageActor) run(delay, retention time.Duration) {
	if delay < 0 {
		delay = 0
	}
	delayTimer := time.NewTimer(delay)
	retentionTimer := time.NewTimer(retention)
	var visTimer *time.Timer

	defer func() {
		stopTimer(delayTimer)
		stopTimer(retentionTimer)
		stopTimer(visTimer)
		if a.onTerminate != nil {
			a.onTerminate(a)
		}
		close(a.done)
	}()

	for {
		var delayC, visC <-chan time.Time
		if delayTimer != nil {
			delayC = delayTimer.C
		}
		if visTimer != nil {
			visC = visTimer.C
		}

		select {
		case cmd := <-a.mailbox:
			switch c := cmd.(type) {
			case receiveCmd:
				visTimer = a.handleReceive(c, visTimer)
			case changeVisibilityCmd:
				visTimer = a.handleChangeVisibility(c, visTimer)
			case deleteCmd:
				a.setState(StateDeleted)
				c.reply <- struct{}{}
			}
		case <-delayC:
			delayTimer = nil
			a.handleDelayExpiry()
		case <-visC:
			visTimer = nil
			a.handleVisibilityExpiry()
		case <-retentionTimer.C:
			a.setState(StateDeleted)
		}

		if a.State() == StateDeleted {
			a.visibleQueue.Remove(a)
			return
		}
	}
}

func (a *MessageActor) setState(s State) { a.state.Store(int32(s)) }

func (a *MessageActor) handleDelayExpiry() {
	if a.State() != StateDelayed {
		return
	}
	a.setState(StateVisible)
	a.visibleQueue.Enqueue(a)
}

func (a *MessageActor) handleVisibilityExpiry() {
	if a.State() != StateInFlight {
		return
	}
	a.setState(StateVisible)
	a.visibleQueue.Enqueue(a)
}

func (a *MessageActor) handleChangeVisibility(c changeVisibilityCmd, visTimer *time.Timer) *time.Timer {
	defer close(c.reply)
	if a.State() != StateInFlight {
		return visTimer
	}

	stopTimer(visTimer)
	if c.ms <= 0 {
		a.setState(StateVisible)
		a.visibleQueue.Enqueue(a)
		return nil
	}
	return time.NewTimer(time.Duration(c.ms) * time.Millisecond)
}

func (a *MessageActor) handleReceive(c receiveCmd, visTimer *time.Timer) *time.Timer {
	if a.State() != StateVisible {
		c.reply <- receiveResult{}
		close(c.reply)
		return visTimer
	}

	a.approxReceiveCount++
	if a.firstReceiveTimestamp == 0 {
		a.firstReceiveTimestamp = time.Now().Unix()
	}

	if a.maxRetries != nil && a.approxReceiveCount > int64(*a.maxRetries) {
		stopTimer(visTimer)
		a.deadLetter()
		c.reply <- receiveResult{}
		close(c.reply)
		return nil
	}

	a.setState(StateInFlight)
	a.generation.Add(1)

	ms := a.defaultVisibilityMs
	if c.visibilityTimeoutMs != nil {
		ms = *c.visibilityTimeoutMs
	}
	stopTimer(visTimer)
	newTimer := time.NewTimer(time.Duration(ms) * time.Millisecond)

	c.reply <- receiveResult{info: a.Snapshot(), ok: true}
	close(c.reply)
	return newTimer
}

// deadLetter forwards the body to the configured DLQ (if any) and
// terminates this actor, per spec.md §3's "dead-lettering a message
// transfers its body (not its id...) and terminates the original actor".
func (a *MessageActor) deadLetter() {
	if a.sendToDLQ != nil {
		// Best-effort: a DLQ send failure still terminates the original
		// actor, matching spec.md's unconditional "and terminates the
		// original actor" wording. Failures are the caller's concern to
		// log, not this actor's.
		_ = a.sendToDLQ(a.body)
	}
	a.setState(StateDeleted)
}

func stopTimer(t *time.Timer) {
	if t == nil {
		return
	}
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
