package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a new assistant provider based on configuration.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "zhipu", "glm":
		return NewZhipuProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - return nil (assistant disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown assistant provider: %s (supported: openai, zhipu, ollama)", config.Provider)
	}
}
