package queue

import "strconv"

// State is a Message Actor's position in the lifecycle from spec.md §3/§4.2.
type State int32

const (
	// StateDelayed is the state every message starts in; with a zero delay
	// it moves to StateVisible as soon as the delay timer fires.
	StateDelayed State = iota
	// StateVisible means the message is referenced by the Visible-Message
	// Queue and eligible for delivery.
	StateVisible
	// StateInFlight means the message has been received and is under a
	// visibility lease with a live receipt handle.
	StateInFlight
	// StateDeleted is terminal: explicit delete, retention expiry, or
	// dead-lettering.
	StateDeleted
)

// String renders the state the way spec.md names it.
func (s State) String() string {
	switch s {
	case StateDelayed:
		return "DELAYED"
	case StateVisible:
		return "VISIBLE"
	case StateInFlight:
		return "IN_FLIGHT"
	case StateDeleted:
		return "DELETED"
	default:
		return "UNKNOWN"
	}
}

// MessageInfo is an immutable snapshot of a message's state, returned from
// SendMessage/ReceiveMessage. Field names follow spec.md §3's MessageInfo.
type MessageInfo struct {
	MessageID             string
	Body                  []byte
	BodyMD5               string
	SentTimestamp         int64
	FirstReceiveTimestamp int64
	ApproxReceiveCount    int64
	State                 State
}

// Attributes returns every SQS system attribute derived from this snapshot
// (spec.md §4.5's attribute mapping). Callers filter by requested_attributes
// themselves (internal/httpapi's filterAttributes) rather than this method
// duplicating that logic.
func (m MessageInfo) Attributes() map[string]string {
	return map[string]string{
		"SentTimestamp":                    strconv.FormatInt(m.SentTimestamp, 10),
		"ApproximateReceiveCount":          strconv.FormatInt(m.ApproxReceiveCount, 10),
		"ApproximateFirstReceiveTimestamp": strconv.FormatInt(m.FirstReceiveTimestamp, 10),
	}
}
