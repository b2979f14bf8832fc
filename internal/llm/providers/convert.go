package providers

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/3star333/tradestudyagent/internal/llm"
)

// toMessages converts a completion request to langchaingo message content.
func toMessages(req llm.CompletionRequest) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, req.SystemPrompt))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, req.UserPrompt))
	return messages
}

// toCallOptions builds langchaingo call options from a completion request.
func toCallOptions(req llm.CompletionRequest) []llms.CallOption {
	var opts []llms.CallOption

	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	return opts
}

// firstChoice extracts the first choice's content from a langchaingo
// response.
func firstChoice(resp *llms.ContentResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}
	return resp.Choices[0].Content, nil
}
