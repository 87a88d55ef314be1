package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/stoicstudio/McpCli/internal/errors"
)

// Version is the JSON-RPC protocol tag carried by every message.
const Version = "2.0"

// Request is an outgoing JSON-RPC request.
//
// Params is omitted from the encoded line entirely when nil, never emitted
// as null.
type Request struct {
	Version string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Notification is an outgoing JSON-RPC notification. It carries no id and
// expects no response.
type Notification struct {
	Version string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response is an incoming JSON-RPC message. Exactly one of Result/Error is
// meaningfully present on a response; Method is set only on server-issued
// notifications, which carry no id.
type Response struct {
	Version string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
	Method  string          `json:"method,omitempty"`
}

// IsNotification reports whether the message is a server-issued notification
// rather than a response to one of our requests.
func (r *Response) IsNotification() bool {
	return r.ID == nil && r.Method != ""
}

// ErrorObject is the JSON-RPC error payload.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// EncodeRequest serializes a request to a single line of JSON text.
func EncodeRequest(id int64, method string, params any) (string, error) {
	data, err := json.Marshal(Request{
		Version: Version,
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request %q: %w", method, err)
	}

	return string(data), nil
}

// EncodeNotification serializes an id-less notification to a single line.
func EncodeNotification(method string, params any) (string, error) {
	data, err := json.Marshal(Notification{
		Version: Version,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return "", fmt.Errorf("marshal notification %q: %w", method, err)
	}

	return string(data), nil
}

// DecodeResponse parses one line of server output.
//
// Returns a DecodeError if the line is not well-formed JSON-RPC or cannot be
// identified: a message with neither an id nor a notification method has no
// place in the protocol.
func DecodeResponse(line string) (*Response, error) {
	var resp Response

	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		return nil, &errors.DecodeError{
			Reason: "malformed JSON-RPC line",
			Raw:    line,
			Err:    err,
		}
	}

	if resp.Version != Version {
		return nil, &errors.DecodeError{
			Reason: fmt.Sprintf("unexpected jsonrpc version %q", resp.Version),
			Raw:    line,
		}
	}

	if resp.ID == nil && resp.Method == "" {
		return nil, &errors.DecodeError{
			Reason: "message has no id",
			Raw:    line,
		}
	}

	return &resp, nil
}

// ExtractResult decodes a response's result into the caller-specified shape.
//
// If the response carries an error object, the returned error is a
// ProtocolError with the server's code, message, and data. A response with
// neither result nor error, or a result that does not match T, yields a
// DecodeError.
func ExtractResult[T any](resp *Response) (T, error) {
	var out T

	if resp.Error != nil {
		return out, &errors.ProtocolError{
			Code:    resp.Error.Code,
			Message: resp.Error.Message,
			Data:    resp.Error.Data,
		}
	}

	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return out, &errors.DecodeError{
			Reason: "no result",
			Err:    errors.ErrNoResult,
		}
	}

	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return out, &errors.DecodeError{
			Reason: fmt.Sprintf("result does not match %T", out),
			Raw:    string(resp.Result),
			Err:    err,
		}
	}

	return out, nil
}
