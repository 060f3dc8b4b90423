package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/helixml/numrange/domain/capability"
	"github.com/helixml/numrange/domain/numrange"
	"github.com/helixml/numrange/infrastructure/schema"
)

// Registry holds the capabilities an agent exposes and validates arguments
// against each capability's input schema before running it.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[string]capability.Capability
	validator    *schema.Validator
	logger       *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		capabilities: make(map[string]capability.Capability),
		validator:    schema.NewValidator(),
		logger:       logger,
	}
}

// Register adds a capability. Names must be unique.
func (r *Registry) Register(c capability.Capability) error {
	desc := c.Descriptor()
	if desc.Name == "" {
		return fmt.Errorf("register capability: name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.capabilities[desc.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCapability, desc.Name)
	}
	if err := r.validator.Register(desc.Name, desc.ValidationSchema()); err != nil {
		return fmt.Errorf("register capability %s: %w", desc.Name, err)
	}
	r.capabilities[desc.Name] = c
	return nil
}

// List returns the descriptors of every registered capability, sorted by name.
func (r *Registry) List() []capability.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]capability.Descriptor, 0, len(r.capabilities))
	for _, c := range r.capabilities {
		out = append(out, c.Descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the descriptor of a registered capability.
func (r *Registry) Get(name string) (capability.Descriptor, error) {
	r.mu.RLock()
	c, ok := r.capabilities[name]
	r.mu.RUnlock()
	if !ok {
		return capability.Descriptor{}, fmt.Errorf("%w: %s", ErrCapabilityNotFound, name)
	}
	return c.Descriptor(), nil
}

// Invoke validates args and runs the named capability, returning the string
// it produced.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (string, error) {
	r.mu.RLock()
	c, ok := r.capabilities[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrCapabilityNotFound, name)
	}

	if err := r.validator.Validate(name, args); err != nil {
		r.logger.DebugContext(ctx, "capability arguments rejected",
			slog.String("capability", name),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	return c.Run(ctx, args)
}

// rangeDescription is shown to requesters and language models.
const rangeDescription = "Returns a string of numbers between two given numbers, separated by commas"

// RangeCapability exposes the Range service as the getNumberRange capability.
type RangeCapability struct {
	service *Range
}

// NewRangeCapability wraps a Range service as a capability.
func NewRangeCapability(service *Range) *RangeCapability {
	return &RangeCapability{service: service}
}

// RangeInputSchema returns the advertised JSON schema of getNumberRange
// arguments.
func RangeInputSchema() map[string]any {
	return rangeSchema("integer")
}

// rangeArgumentSchema is what arguments are checked against. Bounds are
// numbers so fractional input reaches the validator and gets its
// descriptive message.
func rangeArgumentSchema() map[string]any {
	return rangeSchema("number")
}

func rangeSchema(boundType string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start": map[string]any{
				"type":        boundType,
				"description": "The starting number of the range (inclusive)",
			},
			"end": map[string]any{
				"type":        boundType,
				"description": "The ending number of the range (inclusive)",
			},
		},
		"required": []any{"start", "end"},
	}
}

// Descriptor implements capability.Capability.
func (c *RangeCapability) Descriptor() capability.Descriptor {
	return capability.Descriptor{
		Name:           RangeCapabilityName,
		Description:    rangeDescription,
		InputSchema:    RangeInputSchema(),
		ArgumentSchema: rangeArgumentSchema(),
	}
}

// Run implements capability.Capability. Domain failures are returned as
// the rendered string, never as an error.
func (c *RangeCapability) Run(ctx context.Context, args json.RawMessage) (string, error) {
	var req numrange.Request
	if err := json.Unmarshal(args, &req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return c.service.Generate(ctx, req.Start, req.End).String(), nil
}
