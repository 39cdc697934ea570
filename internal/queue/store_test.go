package queue

import (
	"testing"

	"github.com/jn-rp/vassal/internal/logging"
)

func testLogger() logging.Logger { return logging.New("error") }

func TestStoreCreateQueueIdempotent(t *testing.T) {
	s := NewStore("http://localhost:9324", testLogger())

	url1, err := s.CreateQueue("q1", QueueConfig{})
	if err != nil {
		t.Fatalf("unexpected error creating queue: %v", err)
	}

	url2, err := s.CreateQueue("q1", QueueConfig{})
	if err != nil {
		t.Fatalf("expected idempotent create to succeed, got %v", err)
	}
	if url1 != url2 {
		t.Fatalf("expected the same URL, got %q and %q", url1, url2)
	}
}

func TestStoreCreateQueueDifferentConfigConflicts(t *testing.T) {
	s := NewStore("http://localhost:9324", testLogger())

	if _, err := s.CreateQueue("q1", QueueConfig{VisibilityTimeoutMs: 1000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := s.CreateQueue("q1", QueueConfig{VisibilityTimeoutMs: 2000})
	if err == nil {
		t.Fatalf("expected QueueNameExists for a conflicting config")
	}
	if err.Code != CodeQueueNameExists {
		t.Fatalf("expected code %s, got %s", CodeQueueNameExists, err.Code)
	}
}

func TestStoreGetQueueUrlNonExistent(t *testing.T) {
	s := NewStore("http://localhost:9324", testLogger())
	if _, err := s.GetQueueUrl("nope"); err == nil {
		t.Fatalf("expected NonExistentQueue")
	} else if err.Code != CodeNonExistentQueue {
		t.Fatalf("expected code %s, got %s", CodeNonExistentQueue, err.Code)
	}
}

func TestStoreListQueuesWithPrefix(t *testing.T) {
	s := NewStore("http://localhost:9324", testLogger())
	s.CreateQueue("orders-high", QueueConfig{})
	s.CreateQueue("orders-low", QueueConfig{})
	s.CreateQueue("events", QueueConfig{})

	urls := s.ListQueues("orders-")
	if len(urls) != 2 {
		t.Fatalf("expected 2 matching queues, got %d: %v", len(urls), urls)
	}

	all := s.ListQueues("")
	if len(all) != 3 {
		t.Fatalf("expected 3 total queues, got %d", len(all))
	}
}

func TestStoreDeleteQueueRemovesAndTearsDown(t *testing.T) {
	s := NewStore("http://localhost:9324", testLogger())
	s.CreateQueue("q1", QueueConfig{})

	s.DeleteQueue("q1")

	if s.QueueExists("q1") {
		t.Fatalf("expected queue to be removed")
	}
	// Idempotent.
	s.DeleteQueue("q1")
}
