package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/helixml/numrange"
	"github.com/helixml/numrange/infrastructure/api"
	apimiddleware "github.com/helixml/numrange/infrastructure/api/middleware"
	"github.com/helixml/numrange/infrastructure/provider"
)

const testVersion = "0.0.0-e2e"

// TestServer wraps the full HTTP stack for e2e testing.
type TestServer struct {
	t          *testing.T
	client     *numrange.Client
	httpServer *httptest.Server
}

// NewTestServer creates a test server with the same middleware stack serve uses.
func NewTestServer(t *testing.T, opts ...numrange.Option) *TestServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]numrange.Option{numrange.WithLogger(logger)}, opts...)

	client, err := numrange.New(opts...)
	if err != nil {
		t.Fatalf("create numrange client: %v", err)
	}

	apiServer := api.NewAPIServer(client, testVersion, []string{"*"})
	router := apiServer.Router()

	// Apply middleware
	router.Use(apimiddleware.Logging(logger, client.HTTPMetrics()))
	router.Use(apimiddleware.CorrelationID)

	apiServer.MountRoutes()

	server := api.NewServer(":0", logger)
	server.Router().Mount("/", router)

	ts := &TestServer{
		t:          t,
		client:     client,
		httpServer: httptest.NewServer(server.Router()),
	}

	t.Cleanup(func() {
		ts.Close()
	})

	return ts
}

// URL returns the base URL of the test server.
func (ts *TestServer) URL() string {
	return ts.httpServer.URL
}

// Close shuts down the test server.
func (ts *TestServer) Close() {
	ts.httpServer.Close()
	_ = ts.client.Close()
}

// GET performs a GET request and returns the response.
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()
	resp, err := http.Get(ts.URL() + path)
	if err != nil {
		ts.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with JSON body and returns the response.
func (ts *TestServer) POST(path string, body any) *http.Response {
	ts.t.Helper()
	jsonBody, err := json.Marshal(body)
	if err != nil {
		ts.t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(ts.URL()+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		ts.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// DecodeJSON decodes the response body as JSON into v.
func (ts *TestServer) DecodeJSON(resp *http.Response, v any) {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		ts.t.Fatalf("decode response: %v", err)
	}
}

// ReadBody reads and returns the response body as a string.
func (ts *TestServer) ReadBody(resp *http.Response) string {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("read body: %v", err)
	}
	return string(body)
}

// FakeOpenAI serves scripted chat completion responses in the OpenAI wire
// format and records every request body.
type FakeOpenAI struct {
	mu        sync.Mutex
	responses []map[string]any
	requests  []map[string]any
	server    *httptest.Server
}

// NewFakeOpenAI starts a fake chat completions endpoint.
func NewFakeOpenAI(t *testing.T, responses ...map[string]any) *FakeOpenAI {
	t.Helper()
	f := &FakeOpenAI{responses: responses}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *FakeOpenAI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.requests = append(f.requests, body)

	if len(f.responses) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"script exhausted","type":"invalid_request_error"}}`))
		return
	}
	next := f.responses[0]
	f.responses = f.responses[1:]

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(next)
}

// Requests returns the decoded request bodies received so far.
func (f *FakeOpenAI) Requests() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.requests...)
}

// Option returns a client option pointing the agent at the fake endpoint.
func (f *FakeOpenAI) Option() numrange.Option {
	return numrange.WithOpenAIConfig(provider.OpenAIConfig{
		APIKey:     "sk-test",
		BaseURL:    f.server.URL + "/v1",
		MaxRetries: 1,
	})
}

// toolCallCompletion is an OpenAI response requesting one tool call.
func toolCallCompletion(id, name, arguments string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-" + id,
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []any{map[string]any{
			"index": 0,
			"message": map[string]any{
				"role":    "assistant",
				"content": "",
				"tool_calls": []any{map[string]any{
					"id":   id,
					"type": "function",
					"function": map[string]any{
						"name":      name,
						"arguments": arguments,
					},
				}},
			},
			"finish_reason": "tool_calls",
		}},
		"usage": map[string]any{"prompt_tokens": 50, "completion_tokens": 10, "total_tokens": 60},
	}
}

// textCompletion is an OpenAI response carrying a final answer.
func textCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-final",
		"object":  "chat.completion",
		"created": 1700000001,
		"model":   "gpt-4o-mini",
		"choices": []any{map[string]any{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 70, "completion_tokens": 5, "total_tokens": 75},
	}
}
