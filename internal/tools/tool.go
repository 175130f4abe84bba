package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"slack-mcp/internal/slack"
)

// Env carries the per-call collaborators of a handler.
type Env struct {
	API    slack.API
	TeamID string
}

// Tool pairs a Definition with its validated handler.
type Tool struct {
	Definition Definition
	invoke     func(ctx context.Context, env Env, args map[string]any) (any, error)
}

// ArgumentError reports arguments rejected before any Slack call.
type ArgumentError struct {
	Missing []string
	Reason  string
}

func (e *ArgumentError) Error() string {
	switch {
	case len(e.Missing) == 1:
		return "Missing required argument: " + e.Missing[0]
	case len(e.Missing) > 1:
		return "Missing required arguments: " + strings.Join(e.Missing, ", ")
	default:
		return "Invalid arguments: " + e.Reason
	}
}

// newTool builds a Tool from a typed argument struct. Required fields are checked on the
// raw map first, then the map is decoded into A; keys A does not declare are ignored.
func newTool[A any](name, description string, fn func(ctx context.Context, env Env, args A) (any, error)) Tool {
	schema := reflectInputSchema[A]()
	required := schema.Required
	return Tool{
		Definition: Definition{Name: name, Description: description, InputSchema: schema},
		invoke: func(ctx context.Context, env Env, raw map[string]any) (any, error) {
			if missing := missingArgs(raw, required); len(missing) > 0 {
				return nil, &ArgumentError{Missing: missing}
			}
			var a A
			if len(raw) > 0 {
				b, err := json.Marshal(raw)
				if err != nil {
					return nil, &ArgumentError{Reason: err.Error()}
				}
				if err := json.Unmarshal(b, &a); err != nil {
					return nil, &ArgumentError{Reason: err.Error()}
				}
			}
			return fn(ctx, env, a)
		},
	}
}

// missingArgs returns the required keys that are absent, null or empty strings, in
// declaration order.
func missingArgs(raw map[string]any, required []string) []string {
	var missing []string
	for _, key := range required {
		v, ok := raw[key]
		if !ok || v == nil {
			missing = append(missing, key)
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// Catalog is the immutable set of tools, in advertisement order.
type Catalog struct {
	order  []string
	byName map[string]Tool
}

// NewCatalog verifies that every tool has a unique name and a handler.
func NewCatalog(tools ...Tool) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Definition.Name
		if name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if t.invoke == nil {
			return nil, fmt.Errorf("tool %q has no handler", name)
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		c.byName[name] = t
		c.order = append(c.order, name)
	}
	return c, nil
}

func (c *Catalog) Lookup(name string) (Tool, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Definitions lists every tool definition in catalog order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name].Definition)
	}
	return out
}

// clampLimit applies a default when v is unset or non-positive and caps the result.
func clampLimit(v *int, def, ceiling int) int {
	n := def
	if v != nil && *v > 0 {
		n = *v
	}
	if n > ceiling {
		n = ceiling
	}
	return n
}
