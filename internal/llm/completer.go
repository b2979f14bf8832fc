package llm

import (
	"context"

	"github.com/3star333/tradestudyagent/internal/types"
)

// Completer is the minimal language model abstraction the agent core
// depends on. Responses are untrusted text: callers route anything that
// must be structured through ExtractJSON and schema validation.
type Completer interface {
	// Name returns the provider name (e.g., "openai", "anthropic", "ollama")
	Name() string

	// Complete sends a completion request and returns the raw response text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest carries one system/user prompt pair plus generation
// options.
type CompletionRequest struct {
	SystemPrompt string  `json:"system_prompt,omitempty"`
	UserPrompt   string  `json:"user_prompt"`
	Model        string  `json:"model,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`

	// JSONMode asks the provider for a JSON-object response where
	// supported. The response is still validated either way.
	JSONMode bool `json:"json_mode,omitempty"`
}

// ProviderConfig carries provider selection and credentials.
type ProviderConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	Model       string  `mapstructure:"model" yaml:"model"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

// NewAuthError reports a missing or rejected credential for a provider.
// Callers treat this as "service unavailable" and degrade to stub output
// rather than failing the run.
func NewAuthError(provider string, cause error) error {
	return types.WrapError(types.LLM_AUTH_FAILED, "no credential for provider "+provider, cause)
}

// IsAuthError reports whether err indicates a missing/rejected credential.
func IsAuthError(err error) bool {
	return types.CodeOf(err) == types.LLM_AUTH_FAILED
}
