// Package shared holds types passed between the LLM clients, the agents
// that call them and the usage store.
package shared

import (
	"time"
)

// TokenUsage counts the tokens one generation consumed.
type TokenUsage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model,omitempty"`
}

// Used reports whether any tokens were spent. Plans served from the cache
// carry a zero usage.
func (u TokenUsage) Used() bool {
	return u.PromptTokens > 0 || u.CompletionTokens > 0
}

// AgentMeta describes one agent run: which agent, what it cost and how
// long the provider took.
type AgentMeta struct {
	AgentName string        `json:"agent"`
	Usage     TokenUsage    `json:"usage"`
	Latency   time.Duration `json:"latency"`
}
