package service

import "errors"

var (
	// ErrCapabilityNotFound indicates no capability is registered under the requested name.
	ErrCapabilityNotFound = errors.New("capability not found")

	// ErrDuplicateCapability indicates a capability name is already registered.
	ErrDuplicateCapability = errors.New("capability already registered")

	// ErrInvalidArguments indicates capability arguments failed schema validation.
	ErrInvalidArguments = errors.New("invalid capability arguments")

	// ErrAgentUnavailable indicates no language model is configured for the agent.
	ErrAgentUnavailable = errors.New("agent unavailable: no language model configured")

	// ErrToolRoundsExceeded indicates the model kept requesting tools past the round limit.
	ErrToolRoundsExceeded = errors.New("tool call rounds exceeded")
)
