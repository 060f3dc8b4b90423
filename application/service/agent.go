package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helixml/numrange/domain/capability"
	"github.com/helixml/numrange/infrastructure/provider"
)

// Agent defaults.
const (
	DefaultSystemPrompt  = "You are an agent that returns a string of numbers between two given numbers, separated by commas."
	DefaultMaxToolRounds = 4
)

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithSystemPrompt replaces the default system prompt. Empty keeps the default.
func WithSystemPrompt(prompt string) AgentOption {
	return func(a *Agent) {
		if prompt != "" {
			a.systemPrompt = prompt
		}
	}
}

// WithMaxToolRounds sets how many rounds of tool calls one request may run.
func WithMaxToolRounds(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxToolRounds = n
		}
	}
}

// Reply is the agent's answer to one message.
type Reply struct {
	Content     string                  `json:"content"`
	Invocations []capability.Invocation `json:"invocations"`
	Rounds      int                     `json:"rounds"`
	Usage       provider.Usage          `json:"-"`
}

// Agent answers natural-language requests by letting a language model call
// registry capabilities as tools.
type Agent struct {
	llm           provider.TextGenerator
	registry      *Registry
	logger        *slog.Logger
	systemPrompt  string
	maxToolRounds int
}

// NewAgent creates an Agent. A nil llm yields an agent whose Respond
// always fails with ErrAgentUnavailable.
func NewAgent(llm provider.TextGenerator, registry *Registry, logger *slog.Logger, opts ...AgentOption) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Agent{
		llm:           llm,
		registry:      registry,
		logger:        logger,
		systemPrompt:  DefaultSystemPrompt,
		maxToolRounds: DefaultMaxToolRounds,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Available reports whether a language model is configured.
func (a *Agent) Available() bool {
	return a != nil && a.llm != nil
}

// SystemPrompt returns the prompt sent ahead of every request.
func (a *Agent) SystemPrompt() string {
	return a.systemPrompt
}

// Respond sends message to the model with every registered capability
// offered as a tool, runs the tool calls it makes, and returns its final
// answer.
func (a *Agent) Respond(ctx context.Context, message string) (Reply, error) {
	if !a.Available() {
		return Reply{}, ErrAgentUnavailable
	}

	tools := a.tools()
	messages := []provider.Message{
		provider.SystemMessage(a.systemPrompt),
		provider.UserMessage(message),
	}

	var reply Reply
	for round := 0; ; round++ {
		req := provider.NewChatCompletionRequest(messages).WithTools(tools)
		resp, err := a.llm.ChatCompletion(ctx, req)
		if err != nil {
			return Reply{}, fmt.Errorf("chat completion: %w", err)
		}
		reply.Usage = reply.Usage.Add(resp.Usage())

		if !resp.HasToolCalls() {
			reply.Content = resp.Content()
			reply.Rounds = round
			return reply, nil
		}

		if round >= a.maxToolRounds {
			a.logger.WarnContext(ctx, "agent exceeded tool rounds",
				slog.Int("max_rounds", a.maxToolRounds),
			)
			return Reply{}, fmt.Errorf("%w: limit %d", ErrToolRoundsExceeded, a.maxToolRounds)
		}

		calls := resp.ToolCalls()
		messages = append(messages, provider.AssistantMessage(resp.Content(), calls...))
		for _, call := range calls {
			output := a.dispatch(ctx, call)
			reply.Invocations = append(reply.Invocations, capability.Invocation{
				Name:      call.Name(),
				Arguments: call.Arguments(),
				Output:    output,
			})
			messages = append(messages, provider.ToolMessage(call.ID(), output))
		}
	}
}

func (a *Agent) tools() []provider.ToolDefinition {
	descriptors := a.registry.List()
	tools := make([]provider.ToolDefinition, len(descriptors))
	for i, d := range descriptors {
		tools[i] = provider.NewToolDefinition(d.Name, d.Description, d.InputSchema)
	}
	return tools
}

// dispatch runs one tool call. Failures become the tool result so the
// model can see and report them.
func (a *Agent) dispatch(ctx context.Context, call provider.ToolCall) string {
	a.logger.DebugContext(ctx, "agent tool call",
		slog.String("tool", call.Name()),
		slog.String("arguments", string(call.Arguments())),
	)

	output, err := a.registry.Invoke(ctx, call.Name(), call.Arguments())
	switch {
	case err == nil:
		return output
	case errors.Is(err, ErrCapabilityNotFound), errors.Is(err, ErrInvalidArguments):
		return "Error: " + err.Error()
	default:
		a.logger.ErrorContext(ctx, "agent tool call failed",
			slog.String("tool", call.Name()),
			slog.String("error", err.Error()),
		)
		return "Unexpected error: " + err.Error()
	}
}
