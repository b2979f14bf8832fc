package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/3star333/tradestudyagent/internal/schema"
	"github.com/3star333/tradestudyagent/internal/types"
)

// StructuredClient wraps a Completer with the extract/validate/retry
// discipline for structured output. Model responses are untrusted: the
// client extracts the first JSON region, validates it against an expected
// shape, and on failure issues exactly one corrective follow-up naming the
// fields that failed. There is no general retry framework; the policy is a
// fixed two attempts (original + one correction).
type StructuredClient struct {
	completer Completer
	logger    *slog.Logger
}

// StructuredOption configures a StructuredClient.
type StructuredOption func(*StructuredClient)

// WithLogger sets the logger for the structured client.
func WithLogger(logger *slog.Logger) StructuredOption {
	return func(c *StructuredClient) {
		c.logger = logger
	}
}

// NewStructuredClient creates a StructuredClient over the given completer.
func NewStructuredClient(completer Completer, opts ...StructuredOption) *StructuredClient {
	c := &StructuredClient{
		completer: completer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Completer returns the underlying completer.
func (c *StructuredClient) Completer() Completer {
	return c.completer
}

// CompleteObject sends the request and coerces the response into a JSON
// object matching the expected shape. On a validation or parse failure it
// retries once with a corrective prompt; if the retry also fails, it
// returns a MODEL_OUTPUT_INVALID error and the caller falls back to its
// heuristic defaults.
func (c *StructuredClient) CompleteObject(ctx context.Context, req CompletionRequest, shape *schema.JSONSchema) (map[string]any, error) {
	req.JSONMode = true

	raw, err := c.completer.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	obj, reason := decodeObject(raw, shape)
	if reason == "" {
		return obj, nil
	}

	c.logger.Warn("model output failed validation, retrying with corrective prompt",
		slog.String("provider", c.completer.Name()),
		slog.String("reason", reason))

	retryReq := req
	retryReq.UserPrompt = req.UserPrompt + "\n\nYour previous response failed validation: " + reason +
		"\nReturn ONLY a corrected JSON object that satisfies the requested shape."

	raw, err = c.completer.Complete(ctx, retryReq)
	if err != nil {
		return nil, err
	}

	obj, reason = decodeObject(raw, shape)
	if reason != "" {
		return nil, types.NewError(types.MODEL_OUTPUT_INVALID, reason)
	}

	return obj, nil
}

// decodeObject extracts, parses, and validates a JSON object from raw
// model output. It returns the decoded object and an empty reason on
// success, or a human-readable failure description.
func decodeObject(raw string, shape *schema.JSONSchema) (map[string]any, string) {
	jsonStr, err := ExtractJSON(raw)
	if err != nil {
		return nil, err.Error()
	}

	var value any
	if err := json.Unmarshal([]byte(jsonStr), &value); err != nil {
		return nil, fmt.Sprintf("response is not valid JSON: %v", err)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Sprintf("expected a JSON object, got %T", value)
	}

	if violations := schema.Validate(value, shape); len(violations) > 0 {
		return nil, fmt.Sprintf("fields %s failed validation (%s)",
			strings.Join(violations.FieldPaths(), ", "), violations.Error())
	}

	return obj, ""
}
