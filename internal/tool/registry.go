package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/3star333/tradestudyagent/internal/schema"
	"github.com/3star333/tradestudyagent/internal/types"
)

// Registry manages tool registration, discovery, and execution with
// thread-safe operations. Execution validates input against the tool's
// declared schema before invoking it and records per-tool metrics.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	metrics map[string]*Metrics
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		metrics: make(map[string]*Metrics),
	}
}

// Register adds a tool to the registry.
// Returns TOOL_ALREADY_EXISTS if a tool with the same name is registered.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return types.NewError(types.TOOL_INVALID_INPUT, "tool cannot be nil")
	}

	name := tool.Name()
	if name == "" {
		return types.NewError(types.TOOL_INVALID_INPUT, "tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return types.NewError(types.TOOL_ALREADY_EXISTS, fmt.Sprintf("tool %q already registered", name))
	}

	r.tools[name] = tool
	r.metrics[name] = NewMetrics()

	return nil
}

// Unregister removes a tool from the registry by name.
// Returns TOOL_NOT_FOUND if the tool doesn't exist.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		return types.NewError(types.TOOL_NOT_FOUND, fmt.Sprintf("tool %q not found", name))
	}

	delete(r.tools, name)
	delete(r.metrics, name)

	return nil
}

// Get retrieves a tool by name.
// Returns TOOL_NOT_FOUND if the tool doesn't exist.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if tool, exists := r.tools[name]; exists {
		return tool, nil
	}

	return nil, types.NewError(types.TOOL_NOT_FOUND, fmt.Sprintf("tool %q not found", name))
}

// List returns descriptors for all registered tools, sorted by name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]Descriptor, 0, len(r.tools))
	for _, tool := range r.tools {
		descriptors = append(descriptors, NewDescriptor(tool))
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})

	return descriptors
}

// ListByTag returns descriptors for tools matching the given tag, sorted
// by name.
func (r *Registry) ListByTag(tag string) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var descriptors []Descriptor
	for _, tool := range r.tools {
		if containsTag(tool.Tags(), tag) {
			descriptors = append(descriptors, NewDescriptor(tool))
		}
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})

	return descriptors
}

// Execute runs a tool by name, validating input against the tool's
// declared schema first and recording metrics. Validation failures are
// TOOL_INVALID_INPUT and never reach the tool; execution failures are
// wrapped as TOOL_EXECUTION_FAILED.
func (r *Registry) Execute(ctx context.Context, name string, input map[string]any) (any, error) {
	tool, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	if shape := tool.InputSchema(); shape != nil {
		if violations := schema.Validate(input, shape); len(violations) > 0 {
			return nil, types.NewError(types.TOOL_INVALID_INPUT,
				fmt.Sprintf("tool %q input invalid: %s", name, violations.Error()))
		}
	}

	start := time.Now()
	output, execErr := tool.Execute(ctx, input)
	duration := time.Since(start)

	r.mu.Lock()
	if metrics, exists := r.metrics[name]; exists {
		if execErr != nil {
			metrics.RecordFailure(duration)
		} else {
			metrics.RecordSuccess(duration)
		}
	}
	r.mu.Unlock()

	if execErr != nil {
		return nil, types.WrapError(types.TOOL_EXECUTION_FAILED,
			fmt.Sprintf("tool %q execution failed", name), execErr)
	}

	return output, nil
}

// Metrics returns a copy of the execution metrics for a specific tool.
// Returns TOOL_NOT_FOUND if the tool doesn't exist.
func (r *Registry) Metrics(name string) (Metrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metrics, exists := r.metrics[name]
	if !exists {
		return Metrics{}, types.NewError(types.TOOL_NOT_FOUND, fmt.Sprintf("tool %q not found", name))
	}

	return *metrics, nil
}

// containsTag checks if a tag exists in a slice of tags
func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
