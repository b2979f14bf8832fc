package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3star333/tradestudyagent/internal/schema"
	"github.com/3star333/tradestudyagent/internal/types"
)

// scriptedCompleter serves canned responses in order and records requests.
type scriptedCompleter struct {
	responses []string
	err       error
	requests  []CompletionRequest
}

func (c *scriptedCompleter) Name() string { return "scripted" }

func (c *scriptedCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) == 0 {
		return "{}", nil
	}
	next := c.responses[0]
	c.responses = c.responses[1:]
	return next, nil
}

func summarySchema() *schema.JSONSchema {
	return schema.Object(map[string]*schema.JSONSchema{
		"summary": schema.String(),
	}, "summary")
}

func TestCompleteObject_ValidFirstAttempt(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{`{"summary": "all good"}`}}
	client := NewStructuredClient(completer)

	obj, err := client.CompleteObject(context.Background(), CompletionRequest{UserPrompt: "analyze"}, summarySchema())
	require.NoError(t, err)
	assert.Equal(t, "all good", obj["summary"])
	assert.Len(t, completer.requests, 1)
	assert.True(t, completer.requests[0].JSONMode)
}

func TestCompleteObject_CorrectiveRetryCarriesFieldNames(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		`{"wrong_key": true}`,
		`{"summary": "fixed on retry"}`,
	}}
	client := NewStructuredClient(completer)

	obj, err := client.CompleteObject(context.Background(), CompletionRequest{UserPrompt: "analyze"}, summarySchema())
	require.NoError(t, err)
	assert.Equal(t, "fixed on retry", obj["summary"])

	require.Len(t, completer.requests, 2)
	retryPrompt := completer.requests[1].UserPrompt
	assert.Contains(t, retryPrompt, "failed validation")
	assert.Contains(t, retryPrompt, "$.summary")
}

func TestCompleteObject_ExactlyTwoAttemptsThenError(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		"this is not json at all",
		"still not json",
		`{"summary": "never reached"}`,
	}}
	client := NewStructuredClient(completer)

	_, err := client.CompleteObject(context.Background(), CompletionRequest{UserPrompt: "analyze"}, summarySchema())
	require.Error(t, err)
	assert.Equal(t, types.MODEL_OUTPUT_INVALID, types.CodeOf(err))
	assert.Len(t, completer.requests, 2)
}

func TestCompleteObject_ProviderErrorPropagates(t *testing.T) {
	providerErr := errors.New("connection refused")
	completer := &scriptedCompleter{err: providerErr}
	client := NewStructuredClient(completer)

	_, err := client.CompleteObject(context.Background(), CompletionRequest{UserPrompt: "analyze"}, summarySchema())
	assert.ErrorIs(t, err, providerErr)
}

func TestCompleteObject_ArrayResponseRejected(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{`[1, 2, 3]`, `[4, 5]`}}
	client := NewStructuredClient(completer)

	_, err := client.CompleteObject(context.Background(), CompletionRequest{UserPrompt: "analyze"}, summarySchema())
	require.Error(t, err)
	assert.Equal(t, types.MODEL_OUTPUT_INVALID, types.CodeOf(err))
}
