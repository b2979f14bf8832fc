package providers

import (
	"context"
	"sync"

	"github.com/3star333/tradestudyagent/internal/llm"
)

// MockProvider implements llm.Completer for tests. Responses are served
// in FIFO order; when the queue is empty the default response is returned.
type MockProvider struct {
	mu       sync.Mutex
	queue    []mockResponse
	fallback string

	// Requests records every request received, in order.
	Requests []llm.CompletionRequest
}

type mockResponse struct {
	text string
	err  error
}

// NewMockProvider creates a mock provider with an empty response queue.
func NewMockProvider() *MockProvider {
	return &MockProvider{fallback: "{}"}
}

// Name returns the provider name.
func (p *MockProvider) Name() string {
	return "mock"
}

// Enqueue adds a canned response to the queue.
func (p *MockProvider) Enqueue(text string) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, mockResponse{text: text})
	return p
}

// EnqueueError adds a canned error to the queue.
func (p *MockProvider) EnqueueError(err error) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, mockResponse{err: err})
	return p
}

// SetFallback sets the response returned once the queue is drained.
func (p *MockProvider) SetFallback(text string) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fallback = text
	return p
}

// CallCount returns how many requests the mock has received.
func (p *MockProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}

// Complete pops the next canned response.
func (p *MockProvider) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Requests = append(p.Requests, req)

	if len(p.queue) == 0 {
		return p.fallback, nil
	}

	next := p.queue[0]
	p.queue = p.queue[1:]
	if next.err != nil {
		return "", next.err
	}
	return next.text, nil
}
