package llm

import (
	"context"
	"strings"

	"github.com/hfdaily/paperlens/internal/model"
)

// Message roles for the chat-style assistant interface.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ContentBlock is one typed block inside a message. Only text blocks are
// used today; the upstream APIs accept richer types.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Message is one role-tagged message. Content carries plain text; Blocks
// carries structured content. When both are set, Blocks wins.
type Message struct {
	Role    string         `json:"role"`
	Content string         `json:"content,omitempty"`
	Blocks  []ContentBlock `json:"blocks,omitempty"`
}

// Text flattens the message into plain text regardless of which content
// form was used.
func (m Message) Text() string {
	if len(m.Blocks) == 0 {
		return m.Content
	}
	parts := make([]string, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// UserText builds a single-message conversation holding one text block.
func UserText(text string) []Message {
	return []Message{{
		Role:   RoleUser,
		Blocks: []ContentBlock{{Type: "text", Text: text}},
	}}
}

// Provider defines the interface for structuring-assistant backends.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Chat sends an ordered conversation and returns the assistant's
	// plain-text reply.
	Chat(ctx context.Context, messages []Message) (string, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds assistant provider configuration.
type Config struct {
	// Provider name: "openai", "zhipu", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Zhipu
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests, in seconds. This is the provider's own HTTP
	// ceiling; callers may enforce a stricter wall clock on top.
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   120,
		MaxTokens: 2000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:  c.Provider,
		Model:     c.Model,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}
