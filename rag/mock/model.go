package mock

import (
	"context"
	"sync"

	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/rag"
)

// MockModelCaller is a test double for rag.ModelCaller.
type MockModelCaller struct {
	// InvokeFunc is called by Invoke if set.
	// If nil, returns the configured Answer.
	InvokeFunc func(ctx context.Context, req rag.InvokeRequest) (string, error)

	// Answer is the default response when no function is injected.
	Answer string

	mu       sync.Mutex
	requests []rag.InvokeRequest
}

// NewMockModelCaller creates a mock model caller returning the given answer.
// Returns the concrete type to allow test assertions.
func NewMockModelCaller(answer string) *MockModelCaller {
	return &MockModelCaller{Answer: answer}
}

// Invoke records the request and returns the configured answer.
func (m *MockModelCaller) Invoke(ctx context.Context, req rag.InvokeRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, req)
	}
	if req.Stream != nil {
		req.Stream(m.Answer)
	}
	return m.Answer, nil
}

// Requests returns a copy of all recorded invocation requests.
func (m *MockModelCaller) Requests() []rag.InvokeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]rag.InvokeRequest{}, m.requests...)
}

// CallCount returns the number of Invoke calls.
func (m *MockModelCaller) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// MockPublisher is a test double for rag.Publisher.
// It retains the most recently published transcript and history.
type MockPublisher struct {
	mu         sync.Mutex
	transcript []core.Turn
	history    []string
	callCount  int
}

// NewMockPublisher creates a mock publisher.
// Returns the concrete type to allow test assertions.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the transcript and history.
func (m *MockPublisher) Publish(transcript []core.Turn, history []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcript = append([]core.Turn{}, transcript...)
	m.history = append([]string{}, history...)
	m.callCount++
}

// Transcript returns the most recently published transcript.
func (m *MockPublisher) Transcript() []core.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Turn{}, m.transcript...)
}

// History returns the most recently published history.
func (m *MockPublisher) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.history...)
}

// CallCount returns the number of Publish calls.
func (m *MockPublisher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
