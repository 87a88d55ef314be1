package errors

import (
	"errors"
	"fmt"
	"time"
)

// ClientError is the base interface for all MCP client errors.
type ClientError interface {
	error
	IsClientError() bool
}

// Compile-time verification that all error types implement ClientError.
var (
	_ ClientError = (*StartError)(nil)
	_ ClientError = (*ProtocolError)(nil)
	_ ClientError = (*DecodeError)(nil)
	_ ClientError = (*CorrelationError)(nil)
	_ ClientError = (*TimeoutError)(nil)
	_ ClientError = (*InvalidStateError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrTransportClosed indicates the server process has exited or its
	// streams are closed.
	ErrTransportClosed = errors.New("transport closed")

	// ErrNotConnected indicates an operation was attempted before the
	// transport was started or after the process died.
	ErrNotConnected = errors.New("transport not connected")

	// ErrNoResult indicates a response carried neither result nor error.
	ErrNoResult = errors.New("response has no result")

	// ErrEmptyStep indicates a batch step string was empty.
	ErrEmptyStep = errors.New("empty batch step")
)

// StartError indicates the server process could not be spawned or exited
// immediately after starting. Callers must not proceed to Initialize.
type StartError struct {
	Command string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start server %q: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// IsClientError implements ClientError.
func (e *StartError) IsClientError() bool { return true }

// ProtocolError indicates the server returned a JSON-RPC error object.
type ProtocolError struct {
	Code    int
	Message string
	Data    any
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// IsClientError implements ClientError.
func (e *ProtocolError) IsClientError() bool { return true }

// DecodeError indicates a malformed response line, a missing result, or a
// result that does not match the expected shape.
type DecodeError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode response: %s: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("decode response: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsClientError implements ClientError.
func (e *DecodeError) IsClientError() bool { return true }

// CorrelationError indicates a response id that does not match the
// outstanding request id. It signals transport-level desynchronization.
type CorrelationError struct {
	Expected int64
	Received int64
}

func (e *CorrelationError) Error() string {
	return fmt.Sprintf(
		"response id mismatch: expected %d, received %d",
		e.Expected, e.Received,
	)
}

// IsClientError implements ClientError.
func (e *CorrelationError) IsClientError() bool { return true }

// TimeoutError indicates no response arrived within the call's deadline.
// The timeout is fatal to that call only; the connection stays open.
type TimeoutError struct {
	Method  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no response to %q within %s", e.Method, e.Timeout)
}

// IsClientError implements ClientError.
func (e *TimeoutError) IsClientError() bool { return true }

// InvalidStateError indicates an operation was invoked in the wrong
// lifecycle state, such as a tool call before Initialize or a second
// StartServer on the same client.
type InvalidStateError struct {
	Op    string
	State string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: invalid in state %q", e.Op, e.State)
}

// IsClientError implements ClientError.
func (e *InvalidStateError) IsClientError() bool { return true }
