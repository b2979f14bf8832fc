package providers

import (
	"fmt"

	"github.com/3star333/tradestudyagent/internal/llm"
)

// NewProvider creates a completer for the configured provider name.
// An unset provider defaults to openai, matching the original deployment.
func NewProvider(cfg llm.ProviderConfig) (llm.Completer, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(cfg)
	case "anthropic":
		return NewAnthropicProvider(cfg)
	case "ollama":
		return NewOllamaProvider(cfg)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
