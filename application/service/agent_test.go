package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/numrange/infrastructure/provider"
)

// scriptedLLM implements provider.TextGenerator by replaying responses.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []provider.ChatCompletionResponse
	err       error
	requests  []provider.ChatCompletionRequest
}

func (s *scriptedLLM) ChatCompletion(_ context.Context, req provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return provider.ChatCompletionResponse{}, s.err
	}
	if len(s.responses) == 0 {
		return provider.ChatCompletionResponse{}, errors.New("script exhausted")
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

func textResponse(content string) provider.ChatCompletionResponse {
	return provider.NewChatCompletionResponse(content, "stop", nil, provider.NewUsage(3, 2, 5))
}

func toolResponse(calls ...provider.ToolCall) provider.ChatCompletionResponse {
	return provider.NewChatCompletionResponse("", "tool_calls", calls, provider.NewUsage(3, 2, 5))
}

func TestAgent_RespondRunsToolCalls(t *testing.T) {
	llm := &scriptedLLM{responses: []provider.ChatCompletionResponse{
		toolResponse(provider.NewToolCall("call_1", RangeCapabilityName, `{"start":3,"end":8}`)),
		textResponse("3,4,5,6,7,8"),
	}}
	agent := NewAgent(llm, newTestRegistry(t), nil)

	reply, err := agent.Respond(context.Background(), "numbers from 3 to 8")
	require.NoError(t, err)

	assert.Equal(t, "3,4,5,6,7,8", reply.Content)
	assert.Equal(t, 1, reply.Rounds)
	require.Len(t, reply.Invocations, 1)
	assert.Equal(t, RangeCapabilityName, reply.Invocations[0].Name)
	assert.Equal(t, "3,4,5,6,7,8", reply.Invocations[0].Output)
	assert.Equal(t, 10, reply.Usage.TotalTokens())

	require.Len(t, llm.requests, 2)
	first := llm.requests[0]
	assert.Equal(t, provider.RoleSystem, first.Messages()[0].Role())
	assert.Equal(t, DefaultSystemPrompt, first.Messages()[0].Content())
	require.Len(t, first.Tools(), 1)
	assert.Equal(t, RangeCapabilityName, first.Tools()[0].Name())

	second := llm.requests[1].Messages()
	require.Len(t, second, 4)
	assert.Equal(t, provider.RoleTool, second[3].Role())
	assert.Equal(t, "call_1", second[3].ToolCallID())
	assert.Equal(t, "3,4,5,6,7,8", second[3].Content())
}

func TestAgent_ToolFailuresBecomeResults(t *testing.T) {
	llm := &scriptedLLM{responses: []provider.ChatCompletionResponse{
		toolResponse(
			provider.NewToolCall("a", RangeCapabilityName, `{"start":5,"end":1}`),
			provider.NewToolCall("b", "missing", `{}`),
			provider.NewToolCall("c", RangeCapabilityName, `{"start":1}`),
		),
		textResponse("could not do it"),
	}}
	agent := NewAgent(llm, newTestRegistry(t), nil)

	reply, err := agent.Respond(context.Background(), "5 to 1")
	require.NoError(t, err)

	require.Len(t, reply.Invocations, 3)
	assert.Equal(t, "Error: Start number (5) must be less than or equal to end number (1).", reply.Invocations[0].Output)
	assert.Contains(t, reply.Invocations[1].Output, "Error: capability not found")
	assert.Contains(t, reply.Invocations[2].Output, "Error: invalid capability arguments")
}

func TestAgent_ToolRoundsExceeded(t *testing.T) {
	llm := &scriptedLLM{responses: []provider.ChatCompletionResponse{
		toolResponse(provider.NewToolCall("loop", RangeCapabilityName, `{"start":1,"end":2}`)),
	}}
	agent := NewAgent(llm, newTestRegistry(t), nil, WithMaxToolRounds(2))

	_, err := agent.Respond(context.Background(), "forever")
	require.ErrorIs(t, err, ErrToolRoundsExceeded)
	assert.Len(t, llm.requests, 3)
}

func TestAgent_ProviderError(t *testing.T) {
	upstream := provider.NewProviderError("chat_completion", 500, "down", nil)
	agent := NewAgent(&scriptedLLM{err: upstream}, newTestRegistry(t), nil)

	_, err := agent.Respond(context.Background(), "hi")

	var providerErr *provider.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, 500, providerErr.StatusCode())
}

func TestAgent_Unavailable(t *testing.T) {
	agent := NewAgent(nil, newTestRegistry(t), nil)

	assert.False(t, agent.Available())
	_, err := agent.Respond(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrAgentUnavailable)
}

func TestAgent_Options(t *testing.T) {
	agent := NewAgent(&scriptedLLM{}, NewRegistry(nil), nil,
		WithSystemPrompt("custom"),
		WithSystemPrompt(""),
		WithMaxToolRounds(0),
	)

	assert.Equal(t, "custom", agent.SystemPrompt())
	assert.Equal(t, DefaultMaxToolRounds, agent.maxToolRounds)
}
