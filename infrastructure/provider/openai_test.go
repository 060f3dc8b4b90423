package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequestBody struct {
	Model    string `json:"model"`
	Messages []struct {
		Role       string `json:"role"`
		Content    string `json:"content"`
		ToolCallID string `json:"tool_call_id"`
	} `json:"messages"`
	Tools []struct {
		Type     string `json:"type"`
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	} `json:"tools"`
}

// fakeChatServer returns an httptest.Server that mimics the OpenAI chat
// completions endpoint. respond builds the JSON body for each request.
func fakeChatServer(t *testing.T, counter *atomic.Int64, respond func(n int64, body chatRequestBody) (int, any)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := counter.Add(1)

		var body chatRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		status, payload := respond(n, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func completion(content string, toolCalls []map[string]any) map[string]any {
	message := map[string]any{
		"role":    "assistant",
		"content": content,
	}
	finish := "stop"
	if len(toolCalls) > 0 {
		message["tool_calls"] = toolCalls
		finish = "tool_calls"
	}
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{
			{"index": 0, "message": message, "finish_reason": finish},
		},
		"usage": map[string]int{
			"prompt_tokens":     10,
			"completion_tokens": 5,
			"total_tokens":      15,
		},
	}
}

func apiError(message string) map[string]any {
	return map[string]any{
		"error": map[string]any{"message": message, "type": "server_error"},
	}
}

func testProvider(url string, maxRetries int) *OpenAIProvider {
	return NewOpenAIProviderFromConfig(OpenAIConfig{
		APIKey:       "test-key",
		BaseURL:      url,
		ChatModel:    "test-model",
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
	})
}

func TestOpenAIProvider_ChatCompletion_Content(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, func(_ int64, body chatRequestBody) (int, any) {
		assert.Equal(t, "test-model", body.Model)
		return http.StatusOK, completion("3,4,5", nil)
	})

	p := testProvider(srv.URL, 1)
	req := NewChatCompletionRequest([]Message{
		SystemMessage("be brief"),
		UserMessage("numbers from 3 to 5"),
	})

	resp, err := p.ChatCompletion(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "3,4,5", resp.Content())
	assert.Equal(t, "stop", resp.FinishReason())
	assert.False(t, resp.HasToolCalls())
	assert.Equal(t, 15, resp.Usage().TotalTokens())
	assert.Equal(t, int64(1), counter.Load())
}

func TestOpenAIProvider_ChatCompletion_ToolCalls(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, func(_ int64, body chatRequestBody) (int, any) {
		require.Len(t, body.Tools, 1)
		assert.Equal(t, "function", body.Tools[0].Type)
		assert.Equal(t, "getNumberRange", body.Tools[0].Function.Name)
		return http.StatusOK, completion("", []map[string]any{
			{
				"id":   "call_1",
				"type": "function",
				"function": map[string]any{
					"name":      "getNumberRange",
					"arguments": `{"start":3,"end":8}`,
				},
			},
		})
	})

	p := testProvider(srv.URL, 1)
	tool := NewToolDefinition("getNumberRange", "numbers", map[string]any{"type": "object"})
	req := NewChatCompletionRequest([]Message{UserMessage("3 to 8")}).WithTools([]ToolDefinition{tool})

	resp, err := p.ChatCompletion(context.Background(), req)
	require.NoError(t, err)

	require.True(t, resp.HasToolCalls())
	call := resp.ToolCalls()[0]
	assert.Equal(t, "call_1", call.ID())
	assert.Equal(t, "getNumberRange", call.Name())
	assert.JSONEq(t, `{"start":3,"end":8}`, string(call.Arguments()))
	assert.Equal(t, "tool_calls", resp.FinishReason())
}

func TestOpenAIProvider_ChatCompletion_SendsToolResults(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, func(_ int64, body chatRequestBody) (int, any) {
		require.Len(t, body.Messages, 3)
		assert.Equal(t, RoleTool, body.Messages[2].Role)
		assert.Equal(t, "call_1", body.Messages[2].ToolCallID)
		assert.Equal(t, "7", body.Messages[2].Content)
		return http.StatusOK, completion("The range is 7", nil)
	})

	p := testProvider(srv.URL, 1)
	call := NewToolCall("call_1", "getNumberRange", `{"start":7,"end":7}`)
	req := NewChatCompletionRequest([]Message{
		UserMessage("7 to 7"),
		AssistantMessage("", call),
		ToolMessage("call_1", "7"),
	})

	resp, err := p.ChatCompletion(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "The range is 7", resp.Content())
}

func TestOpenAIProvider_RetriesServerErrors(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, func(n int64, _ chatRequestBody) (int, any) {
		if n == 1 {
			return http.StatusInternalServerError, apiError("boom")
		}
		return http.StatusOK, completion("ok", nil)
	})

	p := testProvider(srv.URL, 2)
	resp, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Content())
	assert.Equal(t, int64(2), counter.Load())
}

func TestOpenAIProvider_DoesNotRetryBadRequest(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, func(_ int64, _ chatRequestBody) (int, any) {
		return http.StatusBadRequest, apiError("invalid tool schema")
	})

	p := testProvider(srv.URL, 3)
	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.Error(t, err)

	var providerErr *ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, http.StatusBadRequest, providerErr.StatusCode())
	assert.Equal(t, "chat_completion", providerErr.Operation())
	assert.False(t, providerErr.IsRateLimited())
	assert.Equal(t, int64(1), counter.Load())
}

func TestOpenAIProvider_RateLimitedAfterRetries(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, func(_ int64, _ chatRequestBody) (int, any) {
		return http.StatusTooManyRequests, apiError("slow down")
	})

	p := testProvider(srv.URL, 1)
	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.Error(t, err)

	var providerErr *ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.True(t, providerErr.IsRateLimited())
	assert.Equal(t, int64(2), counter.Load())
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, func(_ int64, _ chatRequestBody) (int, any) {
		body := completion("", nil)
		body["choices"] = []map[string]any{}
		return http.StatusOK, body
	})

	p := testProvider(srv.URL, 1)
	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.ErrorIs(t, err, ErrNoChoices)
}

func TestOpenAIProvider_CancelledContext(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, func(_ int64, _ chatRequestBody) (int, any) {
		return http.StatusOK, completion("never", nil)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := testProvider(srv.URL, 1)
	_, err := p.ChatCompletion(ctx, NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), counter.Load())
}

func TestNewOpenAIProviderFromConfig_Defaults(t *testing.T) {
	p := NewOpenAIProviderFromConfig(OpenAIConfig{APIKey: "k"})

	assert.Equal(t, DefaultChatModel, p.Model())
	assert.Equal(t, DefaultMaxRetries, p.maxRetries)
	assert.Equal(t, DefaultInitialDelay, p.initialDelay)
	assert.Equal(t, DefaultBackoffFactor, p.backoffFactor)
	assert.NoError(t, p.Close())
}

func TestNewOpenAIProvider_Options(t *testing.T) {
	p := NewOpenAIProvider("k",
		WithChatModel("m"),
		WithMaxRetries(1),
		WithInitialDelay(time.Second),
		WithBackoffFactor(3),
	)

	assert.Equal(t, "m", p.Model())
	assert.Equal(t, 1, p.maxRetries)
	assert.Equal(t, time.Second, p.initialDelay)
	assert.Equal(t, 3.0, p.backoffFactor)
}
