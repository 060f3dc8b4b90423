package dto

import (
	"github.com/helixml/numrange/application/service"
	"github.com/helixml/numrange/domain/capability"
)

// ChatRequest is a natural-language request for the agent.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatUsage reports token consumption across every model call.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the agent's answer.
type ChatResponse struct {
	Content     string                  `json:"content"`
	Invocations []capability.Invocation `json:"invocations"`
	Rounds      int                     `json:"rounds"`
	Usage       ChatUsage               `json:"usage"`
}

// NewChatResponse converts an agent reply.
func NewChatResponse(reply service.Reply) ChatResponse {
	invocations := reply.Invocations
	if invocations == nil {
		invocations = []capability.Invocation{}
	}
	return ChatResponse{
		Content:     reply.Content,
		Invocations: invocations,
		Rounds:      reply.Rounds,
		Usage: ChatUsage{
			PromptTokens:     reply.Usage.PromptTokens(),
			CompletionTokens: reply.Usage.CompletionTokens(),
			TotalTokens:      reply.Usage.TotalTokens(),
		},
	}
}
