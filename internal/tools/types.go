// Package tools defines the Slack tool catalog and dispatches tool invocations to the
// Slack Web API.
package tools

import "encoding/json"

// Definition is the advertised shape of one tool.
type Definition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the object schema advertised for a tool's arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string      `json:"type,omitempty"`
	Description string      `json:"description,omitempty"`
	Default     any         `json:"default,omitempty"`
	Minimum     json.Number `json:"minimum,omitempty"`
	Maximum     json.Number `json:"maximum,omitempty"`
	Enum        []any       `json:"enum,omitempty"`
	Items       *Property   `json:"items,omitempty"`
}

// Request is one tool invocation as received from a caller.
type Request struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}
