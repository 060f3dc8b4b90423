// Package schema validates capability arguments against JSON schemas.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrEmptySchema indicates a schema with no content was supplied.
var ErrEmptySchema = errors.New("schema is empty")

// Validator compiles schemas once and validates payloads against them.
// It is safe for concurrent use.
type Validator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewValidator creates an empty Validator.
func NewValidator() *Validator {
	return &Validator{compiled: make(map[string]*jsonschema.Schema)}
}

// Register compiles the schema under id, replacing any previous schema.
func (v *Validator) Register(id string, schema map[string]any) error {
	if len(schema) == 0 {
		return ErrEmptySchema
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiled, err := compile(id, data)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.compiled[id] = compiled
	return nil
}

// Validate checks payload against the schema registered under id.
// Payload may be raw JSON bytes or an already decoded value.
func (v *Validator) Validate(id string, payload any) error {
	v.mu.RLock()
	compiled, ok := v.compiled[id]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("schema %q not registered", id)
	}

	value, err := normalizeValue(payload)
	if err != nil {
		return fmt.Errorf("normalize payload: %w", err)
	}
	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compile(id string, schema []byte) (*jsonschema.Schema, error) {
	resourceID := schemaID(id)
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceID, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceID)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return decode(v)
	case []byte:
		return decode(v)
	default:
		return value, nil
	}
}

func decode(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}

func schemaID(id string) string {
	if id == "" {
		id = "schema"
	}
	return "inmemory://" + id
}
