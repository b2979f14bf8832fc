package providers

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/llms/anthropic"

	"github.com/3star333/tradestudyagent/internal/llm"
)

// AnthropicProvider implements llm.Completer for Anthropic's Claude models.
type AnthropicProvider struct {
	client *anthropic.LLM
	config llm.ProviderConfig
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg llm.ProviderConfig) (*AnthropicProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if apiKey == "" {
		return nil, llm.NewAuthError("anthropic", nil)
	}

	opts := []anthropic.Option{
		anthropic.WithToken(apiKey),
	}

	if cfg.Model != "" {
		opts = append(opts, anthropic.WithModel(cfg.Model))
	}

	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, err
	}

	return &AnthropicProvider{
		client: client,
		config: cfg,
	}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete sends a completion request and returns the raw response text.
func (p *AnthropicProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	resp, err := p.client.GenerateContent(ctx, toMessages(req), toCallOptions(req)...)
	if err != nil {
		return "", err
	}

	return firstChoice(resp)
}
