// Package dto holds the request and response bodies of the v1 API.
package dto

import "github.com/helixml/numrange/domain/capability"

// CapabilityResponse describes one capability.
type CapabilityResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// CapabilityListResponse lists every registered capability.
type CapabilityListResponse struct {
	Data []CapabilityResponse `json:"data"`
}

// InvocationResponse carries the string a capability returned.
type InvocationResponse struct {
	Name   string `json:"name"`
	Output string `json:"output"`
}

// NewCapabilityResponse converts a descriptor.
func NewCapabilityResponse(d capability.Descriptor) CapabilityResponse {
	return CapabilityResponse{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: d.InputSchema,
	}
}

// NewCapabilityListResponse converts descriptors, keeping their order.
func NewCapabilityListResponse(descriptors []capability.Descriptor) CapabilityListResponse {
	data := make([]CapabilityResponse, 0, len(descriptors))
	for _, d := range descriptors {
		data = append(data, NewCapabilityResponse(d))
	}
	return CapabilityListResponse{Data: data}
}
