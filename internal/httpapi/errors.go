package httpapi

import (
	"encoding/xml"
	"net/http"

	"github.com/jn-rp/vassal/internal/queue"
)

// actionError is a locally raised failure that doesn't originate from
// queue.SQSError (missing parameter, unrecognized action), carrying its
// own stable code from spec.md §7.
type actionError struct {
	code queue.Code
	msg  string
}

func (e *actionError) Error() string { return e.msg }

func missingParameter(name string) *actionError {
	return &actionError{code: queue.CodeMissingParameter, msg: "missing required parameter: " + name}
}

func invalidAction(name string) *actionError {
	return &actionError{code: queue.CodeInvalidAction, msg: "unrecognized Action: " + name}
}

func invalidParameterValue(msg string) *actionError {
	return &actionError{code: queue.CodeInvalidParamValue, msg: msg}
}

// writeError renders the <ErrorResponse> document from spec.md §7 as
// HTTP 400, for both queue.SQSError and the locally raised actionError.
func writeError(w http.ResponseWriter, err error) {
	code := queue.CodeUnknown
	msg := err.Error()

	switch e := err.(type) {
	case *queue.SQSError:
		code = e.Code
		msg = e.Msg
	case *actionError:
		code = e.code
		msg = e.msg
	}

	body := ErrorResponse{Error: errorBody{Type: "Sender", Code: string(code), Message: msg}}
	out, marshalErr := xml.Marshal(body)
	if marshalErr != nil {
		// Truly shouldn't happen; fall back to a bare string rather than
		// a second, recursive error path.
		out = []byte(`<ErrorResponse><Error><Type>Sender</Type><Code>AWS.SimpleQueueService.Unknown</Code><Message>internal error</Message></Error></ErrorResponse>`)
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}
