package queue

// Defaults from spec.md §3.
const (
	DefaultMaxMessageBytes = 262144
	DefaultRetentionSecs   = 345600
	DefaultDelayMs         = 0
	DefaultRecvWaitTimeMs  = 0
	DefaultVisibilityMs    = 30000
)

// QueueConfig is immutable after creation unless updated wholesale through
// SetQueueAttributes, matching spec.md §3's "immutable after creation unless
// explicitly updated" note. Generalized from the teacher's config.go, which
// plays the same defaulting-struct role for the SQS client itself.
type QueueConfig struct {
	DelayMs             int64
	MaxMessageBytes     int
	RetentionSecs       int64
	RecvWaitTimeMs      int64
	VisibilityTimeoutMs int64
	// MaxRetries is nil when unset (no DLQ routing based on retry count).
	MaxRetries      *int
	DeadLetterQueue string
}

// NewQueueConfig returns a QueueConfig with spec.md §3's defaults applied
// over whatever the caller provided (zero values are replaced by defaults,
// following CreateQueue's "default applies when unset" semantics).
func NewQueueConfig(c QueueConfig) QueueConfig {
	out := c
	if out.MaxMessageBytes == 0 {
		out.MaxMessageBytes = DefaultMaxMessageBytes
	}
	if out.RetentionSecs == 0 {
		out.RetentionSecs = DefaultRetentionSecs
	}
	if out.VisibilityTimeoutMs == 0 {
		out.VisibilityTimeoutMs = DefaultVisibilityMs
	}
	// DelayMs and RecvWaitTimeMs default to zero, which is already the Go
	// zero value, so there is nothing to overlay for them.
	return out
}

// Equal reports whether two configs are identical, used by CreateQueue to
// decide between the idempotent-success and QueueNameExists paths (spec.md
// §4.1).
func (c QueueConfig) Equal(o QueueConfig) bool {
	if c.DelayMs != o.DelayMs ||
		c.MaxMessageBytes != o.MaxMessageBytes ||
		c.RetentionSecs != o.RetentionSecs ||
		c.RecvWaitTimeMs != o.RecvWaitTimeMs ||
		c.VisibilityTimeoutMs != o.VisibilityTimeoutMs ||
		c.DeadLetterQueue != o.DeadLetterQueue {
		return false
	}
	switch {
	case c.MaxRetries == nil && o.MaxRetries == nil:
		return true
	case c.MaxRetries == nil || o.MaxRetries == nil:
		return false
	default:
		return *c.MaxRetries == *o.MaxRetries
	}
}
