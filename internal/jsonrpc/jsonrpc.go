// Package jsonrpc holds the JSON-RPC 2.0 envelope used by both HTTP transports.
package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the only accepted "jsonrpc" member value.
const Version = "2.0"

type ErrorCode int

const (
	CodeParseError     ErrorCode = -32700
	CodeInvalidRequest ErrorCode = -32600
	CodeMethodNotFound ErrorCode = -32601
	CodeInvalidParams  ErrorCode = -32602
	CodeInternalError  ErrorCode = -32603
)

// Error is a JSON-RPC error object.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

func (e *Error) Error() string { return fmt.Sprintf("jsonrpc %d: %s", e.Code, e.Message) }

// Message is any inbound envelope: a request, a notification or a response.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *ID             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Parse decodes and validates a single envelope. Batches are rejected.
func Parse(data []byte) (*Message, error) {
	for _, b := range data {
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			continue
		}
		if b == '[' {
			return nil, errors.New("batch requests are not supported")
		}
		break
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if m.JSONRPC != Version {
		return nil, fmt.Errorf("invalid JSON-RPC version: expected %q, got %q", Version, m.JSONRPC)
	}
	hasResult := len(m.Result) > 0
	if m.Method != "" {
		if hasResult || m.Error != nil {
			return nil, errors.New("request message cannot have result or error fields")
		}
	} else if hasResult == (m.Error != nil) {
		return nil, errors.New("response message must have exactly one of result or error")
	}
	return &m, nil
}

// IsRequest reports a call that expects a response.
func (m *Message) IsRequest() bool { return m.Method != "" && !m.ID.IsNil() }

// IsNotification reports a call without an id.
func (m *Message) IsNotification() bool { return m.Method != "" && m.ID.IsNil() }

// IsResponse reports a reply from the client to a server-initiated request.
func (m *Message) IsResponse() bool { return m.Method == "" }

// Kind names the message shape for logs.
func (m *Message) Kind() string {
	switch {
	case m.IsRequest():
		return "request"
	case m.IsNotification():
		return "notification"
	default:
		return "response"
	}
}

// Response is an outbound reply.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *ID             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResult marshals result into a success response for id.
func NewResult(id *ID, result any) (*Response, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return &Response{JSONRPC: Version, ID: id, Result: b}, nil
}

func NewError(id *ID, code ErrorCode, msg string) *Response {
	return &Response{JSONRPC: Version, ID: id, Error: &Error{Code: code, Message: msg}}
}
