package httpapi

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jn-rp/vassal/internal/config"
	"github.com/jn-rp/vassal/internal/logging"
	"github.com/jn-rp/vassal/internal/queue"
)

func newTestServer(t *testing.T) (*httptest.Server, *queue.Store) {
	t.Helper()
	store := queue.NewStore("http://localhost:9324", logging.New("error"))
	srv := NewServer(config.Config{BindIP: "127.0.0.1", Port: "0", BaseURL: "http://localhost:9324"}, store, logging.New("error"))
	ts := httptest.NewServer(srv.http.Handler)
	t.Cleanup(ts.Close)
	return ts, store
}

func post(t *testing.T, ts *httptest.Server, form url.Values) *http.Response {
	t.Helper()
	resp, err := http.PostForm(ts.URL+"/", form)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestCreateQueueThenGetQueueUrl(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := post(t, ts, url.Values{"Action": {"CreateQueue"}, "QueueName": {"q1"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var created CreateQueueResponse
	if err := xml.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode CreateQueueResponse: %v", err)
	}
	resp.Body.Close()

	resp = post(t, ts, url.Values{"Action": {"GetQueueUrl"}, "QueueName": {"q1"}})
	var got GetQueueUrlResponse
	if err := xml.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode GetQueueUrlResponse: %v", err)
	}
	resp.Body.Close()

	if got.Result.QueueURL != created.Result.QueueURL {
		t.Fatalf("expected same URL, got %q and %q", created.Result.QueueURL, got.Result.QueueURL)
	}
}

func TestCreateQueueConflictReturnsErrorDocument(t *testing.T) {
	ts, _ := newTestServer(t)

	post(t, ts, url.Values{"Action": {"CreateQueue"}, "QueueName": {"q1"}, "Attribute.1.Name": {"VisibilityTimeout"}, "Attribute.1.Value": {"10"}})

	resp := post(t, ts, url.Values{"Action": {"CreateQueue"}, "QueueName": {"q1"}, "Attribute.1.Name": {"VisibilityTimeout"}, "Attribute.1.Value": {"20"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var errResp ErrorResponse
	if err := xml.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode ErrorResponse: %v", err)
	}
	if errResp.Error.Code != "AWS.SimpleQueueService.QueueNameExists" {
		t.Fatalf("expected QueueNameExists, got %q", errResp.Error.Code)
	}
}

func TestSendAndReceiveMessageRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)

	post(t, ts, url.Values{"Action": {"CreateQueue"}, "QueueName": {"q1"}})
	sendResp := post(t, ts, url.Values{"Action": {"SendMessage"}, "QueueUrl": {"http://localhost:9324/q1"}, "MessageBody": {"hello"}})

	var sent SendMessageResponse
	if err := xml.NewDecoder(sendResp.Body).Decode(&sent); err != nil {
		t.Fatalf("failed to decode SendMessageResponse: %v", err)
	}
	if sent.Result.MessageID == "" {
		t.Fatalf("expected a non-empty MessageId")
	}

	resp := post(t, ts, url.Values{"Action": {"ReceiveMessage"}, "QueueUrl": {"http://localhost:9324/q1"}, "MaxNumberOfMessages": {"1"}, "WaitTimeSeconds": {"1"}})
	var received ReceiveMessageResponse
	if err := xml.NewDecoder(resp.Body).Decode(&received); err != nil {
		t.Fatalf("failed to decode ReceiveMessageResponse: %v", err)
	}
	if len(received.Result.Message) != 1 {
		t.Fatalf("expected 1 message, got %d", len(received.Result.Message))
	}
	if string(received.Result.Message[0].Body) != "hello" {
		t.Fatalf("expected body %q, got %q", "hello", received.Result.Message[0].Body)
	}
}

func TestUnrecognizedActionReturnsInvalidAction(t *testing.T) {
	ts, _ := newTestServer(t)
	post(t, ts, url.Values{"Action": {"CreateQueue"}, "QueueName": {"q1"}})

	resp := post(t, ts, url.Values{"Action": {"NotARealAction"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var errResp ErrorResponse
	xml.NewDecoder(resp.Body).Decode(&errResp)
	if errResp.Error.Code != "InvalidAction" {
		t.Fatalf("expected InvalidAction, got %q", errResp.Error.Code)
	}
}

func TestReceiveFromNonExistentQueue(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/does-not-exist?Action=ReceiveMessage")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var errResp ErrorResponse
	xml.NewDecoder(resp.Body).Decode(&errResp)
	if errResp.Error.Code != "AWS.SimpleQueueService.NonExistentQueue" {
		t.Fatalf("expected NonExistentQueue, got %q", errResp.Error.Code)
	}
}

func TestQueueScopedRouteByPath(t *testing.T) {
	ts, _ := newTestServer(t)
	post(t, ts, url.Values{"Action": {"CreateQueue"}, "QueueName": {"q1"}})

	resp, err := http.PostForm(ts.URL+"/q1", url.Values{"Action": {"SendMessage"}, "MessageBody": {"by-path"}})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
