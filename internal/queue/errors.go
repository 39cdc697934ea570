package queue

import "fmt"

// Code is a stable SQS-compatible error code, bit-exact to the values real
// SQS clients switch on.
type Code string

// Error codes from spec.md §7. These strings are part of the wire contract;
// never rename them.
const (
	CodeNonExistentQueue  Code = "AWS.SimpleQueueService.NonExistentQueue"
	CodeQueueNameExists   Code = "AWS.SimpleQueueService.QueueNameExists"
	CodeInvalidParamValue Code = "InvalidParameterValue"
	CodeReceiptHandleBad  Code = "ReceiptHandleIsInvalid"
	CodeInvalidAction     Code = "InvalidAction"
	CodeMissingParameter  Code = "MissingParameter"
	CodeUnknown           Code = "AWS.SimpleQueueService.Unknown"
)

// SQSError is the typed error every user-visible operation in this package
// returns. Adapted from the teacher's errs.go: a stable message plus an
// optional wrapped context error, chained via Context.
type SQSError struct {
	Code Code
	Msg  string

	contextErr error
}

// Error satisfies the error interface.
func (e *SQSError) Error() string {
	if e.contextErr != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Msg, e.contextErr.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap exposes the wrapped context error to errors.Is/errors.As.
func (e *SQSError) Unwrap() error {
	return e.contextErr
}

// Context returns a copy of e with a contextual error attached, mirroring
// the teacher's SQSError.Context chaining helper.
func (e *SQSError) Context(err error) *SQSError {
	cp := *e
	cp.contextErr = err
	return &cp
}

func newErr(code Code, msg string) *SQSError {
	return &SQSError{Code: code, Msg: msg}
}

// ErrNonExistentQueue is returned when an operation names a queue that does
// not exist in the Queue Store.
func ErrNonExistentQueue(name string) *SQSError {
	return newErr(CodeNonExistentQueue, fmt.Sprintf("the specified queue does not exist: %s", name))
}

// ErrQueueNameExists is returned by CreateQueue when the name is already
// registered with a different configuration.
func ErrQueueNameExists(name string) *SQSError {
	return newErr(CodeQueueNameExists, fmt.Sprintf("a queue already exists with a different configuration: %s", name))
}

// ErrBodyTooLarge is returned by SendMessage when the body exceeds
// max_message_bytes.
func ErrBodyTooLarge(limit int) *SQSError {
	return newErr(CodeInvalidParamValue, fmt.Sprintf("message body exceeds the maximum of %d bytes", limit))
}

// ErrInvalidMaxMessages is returned when MaxNumberOfMessages is out of the
// [1,10] range.
func ErrInvalidMaxMessages() *SQSError {
	return newErr(CodeInvalidParamValue, "MaxNumberOfMessages must be between 1 and 10")
}

// ErrReceiptHandleInvalid is returned when a receipt handle is unknown or no
// longer the latest handle for its message.
func ErrReceiptHandleInvalid() *SQSError {
	return newErr(CodeReceiptHandleBad, "the receipt handle provided is not valid")
}

// ErrMissingParameter is returned when a required action parameter is absent.
func ErrMissingParameter(name string) *SQSError {
	return newErr(CodeMissingParameter, fmt.Sprintf("missing required parameter: %s", name))
}

// ErrUnknown wraps an unexpected internal failure so it never escapes as a
// raw Go error across the action boundary.
func ErrUnknown(err error) *SQSError {
	return newErr(CodeUnknown, "an internal error occurred").Context(err)
}
