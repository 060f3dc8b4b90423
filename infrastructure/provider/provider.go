// Package provider provides LLM chat-completion abstractions with tool
// calling, used to let a language model invoke agent capabilities.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Common errors.
var (
	// ErrNoChoices indicates the provider answered without any completion choice.
	ErrNoChoices = errors.New("no choices in response")
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a model's request to run a named tool with JSON arguments.
type ToolCall struct {
	id        string
	name      string
	arguments string
}

// NewToolCall creates a ToolCall.
func NewToolCall(id, name, arguments string) ToolCall {
	return ToolCall{id: id, name: name, arguments: arguments}
}

// ID returns the provider-assigned call identifier.
func (c ToolCall) ID() string { return c.id }

// Name returns the tool name.
func (c ToolCall) Name() string { return c.name }

// Arguments returns the raw JSON arguments.
func (c ToolCall) Arguments() json.RawMessage { return json.RawMessage(c.arguments) }

// Message represents a chat message.
type Message struct {
	role       string
	content    string
	toolCalls  []ToolCall
	toolCallID string
}

// NewMessage creates a new Message.
func NewMessage(role, content string) Message {
	return Message{role: role, content: content}
}

// Role returns the message role (e.g., "system", "user", "assistant", "tool").
func (m Message) Role() string { return m.role }

// Content returns the message content.
func (m Message) Content() string { return m.content }

// ToolCalls returns the tool calls requested by an assistant message.
func (m Message) ToolCalls() []ToolCall {
	calls := make([]ToolCall, len(m.toolCalls))
	copy(calls, m.toolCalls)
	return calls
}

// ToolCallID returns the call a tool message answers.
func (m Message) ToolCallID() string { return m.toolCallID }

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// AssistantMessage creates an assistant message. Tool calls are carried so
// the follow-up tool messages can reference them.
func AssistantMessage(content string, calls ...ToolCall) Message {
	m := NewMessage(RoleAssistant, content)
	if len(calls) > 0 {
		m.toolCalls = make([]ToolCall, len(calls))
		copy(m.toolCalls, calls)
	}
	return m
}

// ToolMessage creates the result message for a tool call.
func ToolMessage(callID, content string) Message {
	m := NewMessage(RoleTool, content)
	m.toolCallID = callID
	return m
}

// ToolDefinition describes a tool the model may call.
type ToolDefinition struct {
	name        string
	description string
	parameters  map[string]any
}

// NewToolDefinition creates a ToolDefinition with a JSON schema for its parameters.
func NewToolDefinition(name, description string, parameters map[string]any) ToolDefinition {
	return ToolDefinition{name: name, description: description, parameters: parameters}
}

// Name returns the tool name.
func (d ToolDefinition) Name() string { return d.name }

// Description returns the tool description.
func (d ToolDefinition) Description() string { return d.description }

// Parameters returns the JSON schema of the tool arguments.
func (d ToolDefinition) Parameters() map[string]any { return d.parameters }

// ChatCompletionRequest represents a request for text generation.
type ChatCompletionRequest struct {
	messages    []Message
	tools       []ToolDefinition
	maxTokens   int
	temperature float64
}

// NewChatCompletionRequest creates a new ChatCompletionRequest.
func NewChatCompletionRequest(messages []Message) ChatCompletionRequest {
	msgs := make([]Message, len(messages))
	copy(msgs, messages)
	return ChatCompletionRequest{
		messages:    msgs,
		maxTokens:   0, // Use provider default
		temperature: 0, // Use provider default
	}
}

// WithTools returns a new request offering the given tools to the model.
func (r ChatCompletionRequest) WithTools(tools []ToolDefinition) ChatCompletionRequest {
	r.tools = make([]ToolDefinition, len(tools))
	copy(r.tools, tools)
	return r
}

// WithMaxTokens returns a new request with the specified max tokens.
func (r ChatCompletionRequest) WithMaxTokens(n int) ChatCompletionRequest {
	r.maxTokens = n
	return r
}

// WithTemperature returns a new request with the specified temperature.
func (r ChatCompletionRequest) WithTemperature(t float64) ChatCompletionRequest {
	r.temperature = t
	return r
}

// Messages returns the messages.
func (r ChatCompletionRequest) Messages() []Message {
	msgs := make([]Message, len(r.messages))
	copy(msgs, r.messages)
	return msgs
}

// Tools returns the offered tools.
func (r ChatCompletionRequest) Tools() []ToolDefinition {
	tools := make([]ToolDefinition, len(r.tools))
	copy(tools, r.tools)
	return tools
}

// MaxTokens returns the max tokens setting.
func (r ChatCompletionRequest) MaxTokens() int { return r.maxTokens }

// Temperature returns the temperature setting.
func (r ChatCompletionRequest) Temperature() float64 { return r.temperature }

// ChatCompletionResponse represents a text generation response.
type ChatCompletionResponse struct {
	content      string
	finishReason string
	toolCalls    []ToolCall
	usage        Usage
}

// NewChatCompletionResponse creates a new ChatCompletionResponse.
func NewChatCompletionResponse(content, finishReason string, toolCalls []ToolCall, usage Usage) ChatCompletionResponse {
	calls := make([]ToolCall, len(toolCalls))
	copy(calls, toolCalls)
	return ChatCompletionResponse{
		content:      content,
		finishReason: finishReason,
		toolCalls:    calls,
		usage:        usage,
	}
}

// Content returns the generated content.
func (r ChatCompletionResponse) Content() string { return r.content }

// FinishReason returns why generation stopped.
func (r ChatCompletionResponse) FinishReason() string { return r.finishReason }

// ToolCalls returns the tools the model asked to run.
func (r ChatCompletionResponse) ToolCalls() []ToolCall {
	calls := make([]ToolCall, len(r.toolCalls))
	copy(calls, r.toolCalls)
	return calls
}

// HasToolCalls reports whether the model asked to run any tool.
func (r ChatCompletionResponse) HasToolCalls() bool { return len(r.toolCalls) > 0 }

// Usage returns token usage information.
func (r ChatCompletionResponse) Usage() Usage { return r.usage }

// Usage represents token usage information.
type Usage struct {
	promptTokens     int
	completionTokens int
	totalTokens      int
}

// NewUsage creates a new Usage.
func NewUsage(prompt, completion, total int) Usage {
	return Usage{
		promptTokens:     prompt,
		completionTokens: completion,
		totalTokens:      total,
	}
}

// PromptTokens returns the number of prompt tokens.
func (u Usage) PromptTokens() int { return u.promptTokens }

// CompletionTokens returns the number of completion tokens.
func (u Usage) CompletionTokens() int { return u.completionTokens }

// TotalTokens returns the total number of tokens.
func (u Usage) TotalTokens() int { return u.totalTokens }

// Add returns the sum of two usages.
func (u Usage) Add(other Usage) Usage {
	return NewUsage(
		u.promptTokens+other.promptTokens,
		u.completionTokens+other.completionTokens,
		u.totalTokens+other.totalTokens,
	)
}

// TextGenerator generates chat completions, optionally with tool calls.
type TextGenerator interface {
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error)
}

// ProviderError wraps provider errors with additional context.
type ProviderError struct {
	operation  string
	statusCode int
	message    string
	cause      error
}

// NewProviderError creates a new ProviderError.
func NewProviderError(operation string, statusCode int, message string, cause error) *ProviderError {
	return &ProviderError{
		operation:  operation,
		statusCode: statusCode,
		message:    message,
		cause:      cause,
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.cause
}

// Operation returns the operation that failed.
func (e *ProviderError) Operation() string { return e.operation }

// StatusCode returns the HTTP status code if available.
func (e *ProviderError) StatusCode() int { return e.statusCode }

// Message returns the error message.
func (e *ProviderError) Message() string { return e.message }

// IsRateLimited returns true if the error is due to rate limiting.
func (e *ProviderError) IsRateLimited() bool {
	return e.statusCode == http.StatusTooManyRequests
}
