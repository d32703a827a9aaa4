package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ZhipuBaseURL is the OpenAI-compatible endpoint of Zhipu's GLM API.
const ZhipuBaseURL = "https://open.bigmodel.cn/api/paas/v4"

// Default models per provider name.
const (
	defaultOpenAIModel = openai.GPT4oMini
	defaultZhipuModel  = "glm-4-flash"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible
// chat-completion APIs. It serves both OpenAI itself and Zhipu GLM, which
// exposes the same wire contract under a different base URL.
type OpenAIProvider struct {
	client *openai.Client
	name   string
	config Config
}

// NewOpenAIProvider creates a provider against api.openai.com or a custom
// compatible base URL.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	return newCompatibleProvider("openai", config)
}

// NewZhipuProvider creates a provider against Zhipu's GLM endpoint.
func NewZhipuProvider(config Config) (*OpenAIProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = ZhipuBaseURL
	}
	return newCompatibleProvider("zhipu", config)
}

func newCompatibleProvider(name string, config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		name:   name,
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Simple check: try to list models (lightweight API call)
	_, err := p.client.ListModels(ctx)
	if err != nil {
		// Log the actual error for debugging (this helps users diagnose API key issues)
		fmt.Fprintf(os.Stderr, "%s API check failed: %v\n", p.name, err)
		return false
	}
	return true
}

// Chat sends the conversation through the Chat Completions API and returns
// the first choice's text.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	model := p.config.Model
	if model == "" {
		if p.name == "zhipu" {
			model = defaultZhipuModel
		} else {
			model = defaultOpenAIModel
		}
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Text(),
		})
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    chatMessages,
		MaxTokens:   maxTokens,
		Temperature: 0.3, // Lower temperature for more faithful translation output
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: %s status %d: %s", ErrAPIStatus, p.name, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrTransport, p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", ErrEmptyResponse, p.name)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: %s returned blank content", ErrEmptyResponse, p.name)
	}

	return text, nil
}
