package queue

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jn-rp/vassal/internal/logging"
)

// Store is the process-wide queue registry from spec.md §4.1: a thread-safe
// map from queue name to its runtime Coordinator. Mutations (create/delete)
// are serialized; reads (exists/config/handle) are concurrent, matching
// spec.md §5's "many readers, exclusive writer" requirement.
type Store struct {
	mu      sync.RWMutex
	queues  map[string]*Coordinator
	baseURL string
	logger  logging.Logger
}

// NewStore returns an empty Store. baseURL is prefixed to queue names to
// build queue URLs (spec.md §6: "<configured_base_url>/<queue_name>").
func NewStore(baseURL string, logger logging.Logger) *Store {
	return &Store{
		queues:  make(map[string]*Coordinator),
		baseURL: baseURL,
		logger:  logger,
	}
}

// QueueURL formats the queue URL for name, regardless of whether it exists.
func (s *Store) QueueURL(name string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, name)
}

// CreateQueue is idempotent on an identical configuration (spec.md §4.1/
// §4.5): a second CreateQueue for an existing name with the same config
// succeeds and returns the same URL; a different config fails with
// QueueNameExists.
func (s *Store) CreateQueue(name string, cfg QueueConfig) (string, *SQSError) {
	resolved := NewQueueConfig(cfg)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.queues[name]; ok {
		if existing.Config().Equal(resolved) {
			return s.QueueURL(name), nil
		}
		return "", ErrQueueNameExists(name)
	}

	s.queues[name] = newCoordinator(name, resolved, s, s.logger)
	return s.QueueURL(name), nil
}

// GetQueueUrl resolves name to its queue URL, failing with
// NonExistentQueue when unknown.
func (s *Store) GetQueueUrl(name string) (string, *SQSError) {
	s.mu.RLock()
	_, ok := s.queues[name]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNonExistentQueue(name)
	}
	return s.QueueURL(name), nil
}

// ListQueues returns the URLs of every queue whose name has the given
// prefix (an empty prefix matches everything), supplementing spec.md per
// SPEC_FULL.md §5.
func (s *Store) ListQueues(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.queues))
	for name := range s.queues {
		if prefix == "" || strings.HasPrefix(name, prefix) {
			out = append(out, s.QueueURL(name))
		}
	}
	return out
}

// QueueExists reports whether name is registered.
func (s *Store) QueueExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.queues[name]
	return ok
}

// QueueConfig returns the current configuration for name.
func (s *Store) QueueConfig(name string) (QueueConfig, *SQSError) {
	c, err := s.Queue(name)
	if err != nil {
		return QueueConfig{}, err
	}
	return c.Config(), nil
}

// Queue returns the Coordinator for name, failing with NonExistentQueue
// when unknown. This is spec.md §4.1's queue_handle.
func (s *Store) Queue(name string) (*Coordinator, *SQSError) {
	s.mu.RLock()
	c, ok := s.queues[name]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNonExistentQueue(name)
	}
	return c, nil
}

// DeleteQueue removes name from the registry and tears down its runtime:
// every owned Message Actor is terminated and its Visible-Message Queue is
// closed so blocked receivers observe an empty result instead of hanging
// (spec.md §4.5, §7). Idempotent.
func (s *Store) DeleteQueue(name string) {
	s.mu.Lock()
	c, ok := s.queues[name]
	if ok {
		delete(s.queues, name)
	}
	s.mu.Unlock()

	if ok {
		c.teardown()
	}
}

// Reset drops every queue and tears down its runtime, used between test
// cases per spec.md §9's "Tests must reset it between cases" and by
// process shutdown.
func (s *Store) Reset() {
	s.mu.Lock()
	queues := s.queues
	s.queues = make(map[string]*Coordinator)
	s.mu.Unlock()

	for _, c := range queues {
		c.teardown()
	}
}
