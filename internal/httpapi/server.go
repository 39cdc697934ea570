package httpapi

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jn-rp/vassal/internal/config"
	"github.com/jn-rp/vassal/internal/logging"
	"github.com/jn-rp/vassal/internal/queue"
)

// Server is the HTTP/XML front end from SPEC_FULL.md §2, built the way the
// teacher's examples/http-service.go wires its own handler: a plain
// net/http.ServeMux, no router framework.
type Server struct {
	http   *http.Server
	store  *queue.Store
	logger logging.Logger
}

// NewServer builds a Server wrapping an http.ServeMux registered against
// "/" and routes to individual queues.
func NewServer(cfg config.Config, store *queue.Store, logger logging.Logger) *Server {
	s := &Server{store: store, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)

	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.BindIP, cfg.Port),
		Handler: mux,
	}
	return s
}

// ListenAndServe starts serving and blocks, matching net/http.Server's
// contract.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the listener, used by cmd/vassald on
// SIGINT/SIGTERM.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handle dispatches every request, recovering from a handler panic so one
// bad action never takes down the listener (spec.md §4.5/§7's per-action
// isolation requirement).
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Errorf("panic handling action %q: %v", r.FormValue("Action"), rec)
			writeError(w, &actionError{code: queue.CodeUnknown, msg: "an internal error occurred"})
		}
	}()

	if err := r.ParseForm(); err != nil {
		writeError(w, invalidParameterValue("could not parse request"))
		return
	}

	action := r.FormValue("Action")
	queueName := strings.TrimPrefix(r.URL.Path, "/")
	if queueName == "" {
		queueName = queueNameFromURL(r.FormValue("QueueUrl"))
	}

	err := s.dispatch(w, r, action, queueName, requestID)

	elapsed := time.Since(start)
	if err != nil {
		s.logger.Warnf("action=%s queue=%s status=error elapsed=%s err=%v", action, queueName, elapsed, err)
		writeError(w, err)
		return
	}
	s.logger.Infof("action=%s queue=%s status=ok elapsed=%s", action, queueName, elapsed)
}

// queueNameFromURL extracts the trailing path segment of a queue URL
// ("<base_url>/<name>" per spec.md §6), used when the caller posts to "/"
// and names the queue via QueueUrl instead of the path.
func queueNameFromURL(url string) string {
	if url == "" {
		return ""
	}
	idx := strings.LastIndex(url, "/")
	if idx < 0 {
		return url
	}
	return url[idx+1:]
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, action, queueName, requestID string) error {
	switch action {
	case "CreateQueue":
		return s.createQueue(w, r, requestID)
	case "GetQueueUrl":
		return s.getQueueURL(w, r, requestID)
	case "ListQueues":
		return s.listQueues(w, r, requestID)
	case "DeleteQueue":
		return s.deleteQueue(w, queueName, requestID)
	case "PurgeQueue":
		return s.purgeQueue(w, queueName, requestID)
	case "SendMessage":
		return s.sendMessage(w, r, queueName, requestID)
	case "ReceiveMessage":
		return s.receiveMessage(w, r, queueName, requestID)
	case "DeleteMessage":
		return s.deleteMessage(w, r, queueName, requestID)
	case "ChangeMessageVisibility":
		return s.changeMessageVisibility(w, r, queueName, requestID)
	case "GetQueueAttributes":
		return s.getQueueAttributes(w, r, queueName, requestID)
	case "SetQueueAttributes":
		return s.setQueueAttributes(w, r, queueName, requestID)
	case "":
		return missingParameter("Action")
	default:
		return invalidAction(action)
	}
}

func (s *Server) createQueue(w http.ResponseWriter, r *http.Request, requestID string) error {
	name := r.FormValue("QueueName")
	if name == "" {
		return missingParameter("QueueName")
	}

	cfg, err := parseQueueAttributes(r, "Attribute")
	if err != nil {
		return err
	}

	url, sqsErr := s.store.CreateQueue(name, cfg)
	if sqsErr != nil {
		return sqsErr
	}

	return writeXML(w, CreateQueueResponse{
		Xmlns:    xmlns,
		Result:   CreateQueueResult{QueueURL: url},
		Metadata: ResponseMetadata{RequestID: requestID},
	})
}

func (s *Server) getQueueURL(w http.ResponseWriter, r *http.Request, requestID string) error {
	name := r.FormValue("QueueName")
	if name == "" {
		return missingParameter("QueueName")
	}
	url, err := s.store.GetQueueUrl(name)
	if err != nil {
		return err
	}
	return writeXML(w, GetQueueUrlResponse{
		Xmlns:    xmlns,
		Result:   GetQueueUrlResult{QueueURL: url},
		Metadata: ResponseMetadata{RequestID: requestID},
	})
}

func (s *Server) listQueues(w http.ResponseWriter, r *http.Request, requestID string) error {
	prefix := r.FormValue("QueueNamePrefix")
	urls := s.store.ListQueues(prefix)
	return writeXML(w, ListQueuesResponse{
		Xmlns:    xmlns,
		Result:   ListQueuesResult{QueueURL: urls},
		Metadata: ResponseMetadata{RequestID: requestID},
	})
}

func (s *Server) deleteQueue(w http.ResponseWriter, queueName, requestID string) error {
	if queueName == "" {
		return missingParameter("QueueUrl")
	}
	if !s.store.QueueExists(queueName) {
		return queue.ErrNonExistentQueue(queueName)
	}
	s.store.DeleteQueue(queueName)
	return writeXML(w, DeleteQueueResponse{Xmlns: xmlns, Metadata: ResponseMetadata{RequestID: requestID}})
}

func (s *Server) purgeQueue(w http.ResponseWriter, queueName, requestID string) error {
	c, err := s.store.Queue(queueName)
	if err != nil {
		return err
	}
	c.PurgeQueue()
	return writeXML(w, PurgeQueueResponse{Xmlns: xmlns, Metadata: ResponseMetadata{RequestID: requestID}})
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request, queueName, requestID string) error {
	c, err := s.store.Queue(queueName)
	if err != nil {
		return err
	}

	body := r.FormValue("MessageBody")
	if body == "" {
		return missingParameter("MessageBody")
	}

	var delayOverride *int64
	if v := r.FormValue("DelaySeconds"); v != "" {
		secs, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			return invalidParameterValue("DelaySeconds must be an integer")
		}
		ms := secs * 1000
		delayOverride = &ms
	}

	info, sqsErr := c.SendMessage([]byte(body), delayOverride)
	if sqsErr != nil {
		return sqsErr
	}

	return writeXML(w, SendMessageResponse{
		Xmlns:    xmlns,
		Result:   SendMessageResult{MD5OfMessageBody: info.BodyMD5, MessageID: info.MessageID},
		Metadata: ResponseMetadata{RequestID: requestID},
	})
}

func (s *Server) receiveMessage(w http.ResponseWriter, r *http.Request, queueName, requestID string) error {
	c, err := s.store.Queue(queueName)
	if err != nil {
		return err
	}

	maxMessages := 1
	if v := r.FormValue("MaxNumberOfMessages"); v != "" {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			return invalidParameterValue("MaxNumberOfMessages must be an integer")
		}
		maxMessages = n
	}

	var waitMs *int64
	if v := r.FormValue("WaitTimeSeconds"); v != "" {
		secs, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			return invalidParameterValue("WaitTimeSeconds must be an integer")
		}
		ms := secs * 1000
		waitMs = &ms
	}

	var visOverride *int64
	if v := r.FormValue("VisibilityTimeout"); v != "" {
		secs, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			return invalidParameterValue("VisibilityTimeout must be an integer")
		}
		ms := secs * 1000
		visOverride = &ms
	}

	msgs, sqsErr := c.ReceiveMessage(r.Context(), maxMessages, waitMs, visOverride)
	if sqsErr != nil {
		return sqsErr
	}

	requested := formValues(r, "AttributeName")
	result := receiveMessageResult{Message: make([]resultMessage, 0, len(msgs))}
	for _, m := range msgs {
		attrs := filterAttributes(m.Attributes, requested)
		rm := resultMessage{
			MessageID:     m.MessageID,
			ReceiptHandle: m.ReceiptHandle,
			MD5OfBody:     m.BodyMD5,
			Body:          m.Body,
		}
		for name, value := range attrs {
			rm.Attribute = append(rm.Attribute, attribute{Name: name, Value: value})
		}
		result.Message = append(result.Message, rm)
	}

	return writeXML(w, ReceiveMessageResponse{
		Xmlns:    xmlns,
		Result:   result,
		Metadata: ResponseMetadata{RequestID: requestID},
	})
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request, queueName, requestID string) error {
	c, err := s.store.Queue(queueName)
	if err != nil {
		return err
	}
	handle := r.FormValue("ReceiptHandle")
	if handle == "" {
		return missingParameter("ReceiptHandle")
	}
	if sqsErr := c.DeleteMessage(handle); sqsErr != nil {
		return sqsErr
	}
	return writeXML(w, DeleteMessageResponse{Xmlns: xmlns, Metadata: ResponseMetadata{RequestID: requestID}})
}

func (s *Server) changeMessageVisibility(w http.ResponseWriter, r *http.Request, queueName, requestID string) error {
	c, err := s.store.Queue(queueName)
	if err != nil {
		return err
	}
	handle := r.FormValue("ReceiptHandle")
	if handle == "" {
		return missingParameter("ReceiptHandle")
	}
	v := r.FormValue("VisibilityTimeout")
	if v == "" {
		return missingParameter("VisibilityTimeout")
	}
	secs, perr := strconv.ParseInt(v, 10, 64)
	if perr != nil {
		return invalidParameterValue("VisibilityTimeout must be an integer")
	}
	if sqsErr := c.ChangeMessageVisibility(r.Context(), handle, secs*1000); sqsErr != nil {
		return sqsErr
	}
	return writeXML(w, ChangeMessageVisibilityResponse{Xmlns: xmlns, Metadata: ResponseMetadata{RequestID: requestID}})
}

func (s *Server) getQueueAttributes(w http.ResponseWriter, r *http.Request, queueName, requestID string) error {
	c, err := s.store.Queue(queueName)
	if err != nil {
		return err
	}
	attrs := filterAttributes(c.GetQueueAttributes(), formValues(r, "AttributeName"))
	result := getQueueAttributesResult{Attribute: make([]queueAttribute, 0, len(attrs))}
	for name, value := range attrs {
		result.Attribute = append(result.Attribute, queueAttribute{Name: name, Value: value})
	}
	return writeXML(w, GetQueueAttributesResponse{
		Xmlns:    xmlns,
		Result:   result,
		Metadata: ResponseMetadata{RequestID: requestID},
	})
}

func (s *Server) setQueueAttributes(w http.ResponseWriter, r *http.Request, queueName, requestID string) error {
	c, err := s.store.Queue(queueName)
	if err != nil {
		return err
	}
	mut, set, perr := parseQueueAttributeUpdates(r)
	if perr != nil {
		return perr
	}
	c.SetQueueAttributes(mut, set)
	return writeXML(w, SetQueueAttributesResponse{Xmlns: xmlns, Metadata: ResponseMetadata{RequestID: requestID}})
}

func writeXML(w http.ResponseWriter, v interface{}) error {
	out, err := xml.Marshal(v)
	if err != nil {
		return &actionError{code: queue.CodeUnknown, msg: "failed to render response"}
	}
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
	return nil
}
