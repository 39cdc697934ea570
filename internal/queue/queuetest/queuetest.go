// Package queuetest provides test fixtures for exercising internal/queue
// without standing up the HTTP front end, adapted from the teacher's
// sqstesting package (stubConsumer.go): small constructors that take a
// *testing.T and fail fast via t.Fatalf instead of returning an error.
package queuetest

import (
	"encoding/json"
	"testing"

	"github.com/jn-rp/vassal/internal/logging"
	"github.com/jn-rp/vassal/internal/queue"
)

// NewStore builds a Store rooted at a fixed test base URL, with a
// discard-level logger so test output stays quiet.
func NewStore(t *testing.T) *queue.Store {
	t.Helper()
	return queue.NewStore("http://localhost:9324", logging.New("error"))
}

// MustCreateQueue creates a queue with cfg and fails the test immediately
// if creation is rejected, mirroring the teacher's NewStubMessage's
// t.Fatalf-on-setup-error pattern.
func MustCreateQueue(t *testing.T, store *queue.Store, name string, cfg queue.QueueConfig) *queue.Coordinator {
	t.Helper()
	if _, err := store.CreateQueue(name, cfg); err != nil {
		t.Fatalf("CreateQueue(%s) failed: %v", name, err)
	}
	c, err := store.Queue(name)
	if err != nil {
		t.Fatalf("Queue(%s) failed after create: %v", name, err)
	}
	return c
}

// JSONBody marshals in to JSON, failing the test on encode error, the way
// NewStubMessage marshals a fixture payload before handing it to the
// consumer under test.
func JSONBody(t *testing.T, in interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("error while marshalling body: %v", err)
	}
	return data
}
