package providers

import (
	"context"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/3star333/tradestudyagent/internal/llm"
)

// OllamaProvider implements llm.Completer for local models served by Ollama.
// No credential is required; BaseURL selects a non-default server.
type OllamaProvider struct {
	client *ollama.LLM
	config llm.ProviderConfig
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(cfg llm.ProviderConfig) (*OllamaProvider, error) {
	var opts []ollama.Option

	if cfg.Model != "" {
		opts = append(opts, ollama.WithModel(cfg.Model))
	}

	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, err
	}

	return &OllamaProvider{
		client: client,
		config: cfg,
	}, nil
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Complete sends a completion request and returns the raw response text.
func (p *OllamaProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	resp, err := p.client.GenerateContent(ctx, toMessages(req), toCallOptions(req)...)
	if err != nil {
		return "", err
	}

	return firstChoice(resp)
}
