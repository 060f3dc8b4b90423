// Package capability describes the callable capabilities an agent exposes
// to requesters and language models.
package capability

import (
	"context"
	"encoding/json"
	"sort"
)

// Descriptor is the public description of a capability: its name, what it
// does, and the JSON schema of its arguments.
type Descriptor struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	InputSchema map[string]any `json:"input_schema" yaml:"input_schema"`

	// ArgumentSchema, when set, is checked instead of InputSchema before the
	// capability runs. It is never advertised.
	ArgumentSchema map[string]any `json:"-" yaml:"-"`
}

// ValidationSchema returns the schema arguments are checked against.
func (d Descriptor) ValidationSchema() map[string]any {
	if len(d.ArgumentSchema) > 0 {
		return d.ArgumentSchema
	}
	return d.InputSchema
}

// Required returns the argument names the schema marks as required.
func (d Descriptor) Required() []string {
	raw, ok := d.InputSchema["required"]
	if !ok {
		return nil
	}
	var names []string
	switch v := raw.(type) {
	case []string:
		names = append(names, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
	}
	return names
}

// Properties returns the argument names declared by the schema, sorted.
func (d Descriptor) Properties() []string {
	props, ok := d.InputSchema["properties"].(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Capability is something the agent can run with JSON arguments. The
// returned string is surfaced to the requester verbatim.
type Capability interface {
	Descriptor() Descriptor
	Run(ctx context.Context, args json.RawMessage) (string, error)
}

// Invocation records a single capability call and its output.
type Invocation struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Output    string          `json:"output"`
}
