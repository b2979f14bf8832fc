package tool

import (
	"context"

	"github.com/3star333/tradestudyagent/internal/schema"
)

// Tool represents an atomic, stateless operation the agent can invoke.
// Tools are the building blocks the orchestrator sequences: each one
// declares its input shape for pre-execution validation and exposes a
// single execute contract. A tool call is stateless given its input and
// the current persisted state.
type Tool interface {
	// Name returns the unique identifier for this tool
	Name() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// Tags returns a list of tags for categorization and discovery
	Tags() []string

	// InputSchema returns the expected shape of the execute input.
	// The registry validates input against it before execution.
	InputSchema() *schema.JSONSchema

	// Execute runs the tool with validated input. Context is used for
	// cancellation, deadlines, and request-scoped values.
	Execute(ctx context.Context, input map[string]any) (any, error)
}
