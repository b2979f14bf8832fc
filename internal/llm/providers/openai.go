package providers

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/3star333/tradestudyagent/internal/llm"
)

// OpenAIProvider implements llm.Completer for OpenAI's GPT models.
type OpenAIProvider struct {
	client *openai.LLM
	config llm.ProviderConfig
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg llm.ProviderConfig) (*OpenAIProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return nil, llm.NewAuthError("openai", nil)
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
	}

	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}

	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return &OpenAIProvider{
		client: client,
		config: cfg,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Complete sends a completion request and returns the raw response text.
func (p *OpenAIProvider) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	resp, err := p.client.GenerateContent(ctx, toMessages(req), toCallOptions(req)...)
	if err != nil {
		return "", err
	}

	return firstChoice(resp)
}
