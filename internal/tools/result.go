package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Result is the outcome of exactly one invocation: a payload on success or a message on
// failure.
type Result struct {
	IsError bool            `json:"isError"`
	Payload json.RawMessage `json:"result,omitempty"`
	Message string          `json:"error,omitempty"`
}

// Success wraps a payload. json.RawMessage values are kept byte for byte.
func Success(v any) Result {
	if raw, ok := v.(json.RawMessage); ok {
		return Result{Payload: raw}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Failure(fmt.Sprintf("encode result: %v", err))
	}
	return Result{Payload: b}
}

func Failure(msg string) Result {
	return Result{IsError: true, Message: msg}
}

// Text renders the result the way it is shown to a model: indented JSON on success,
// "Error: <message>" on failure.
func (r Result) Text() string {
	if r.IsError {
		return "Error: " + r.Message
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Payload, "", "  "); err != nil {
		return string(r.Payload)
	}
	return buf.String()
}
