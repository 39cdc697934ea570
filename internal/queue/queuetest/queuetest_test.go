package queuetest

import (
	"context"
	"testing"

	"github.com/jn-rp/vassal/internal/queue"
)

func TestMustCreateQueueAndJSONBody(t *testing.T) {
	store := NewStore(t)
	c := MustCreateQueue(t, store, "q1", queue.QueueConfig{})

	type payload struct {
		ID string `json:"id"`
	}
	body := JSONBody(t, payload{ID: "abc"})

	if _, err := c.SendMessage(body, nil); err != nil {
		t.Fatalf("unexpected error sending fixture body: %v", err)
	}

	wait := int64(50)
	msgs, err := c.ReceiveMessage(context.Background(), 1, &wait, nil)
	if err != nil {
		t.Fatalf("unexpected error receiving: %v", err)
	}
	if len(msgs) != 1 || string(msgs[0].Body) != string(body) {
		t.Fatalf("expected to receive the fixture body back, got %v", msgs)
	}
}
