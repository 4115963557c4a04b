package mock

import (
	"context"
	"sync"

	"github.com/helikon/arxdialog/core"
)

// MockSplitter is a test double for rag.Splitter.
// It allows custom behavior injection via function fields.
type MockSplitter struct {
	// FetchAndSplitFunc is called by FetchAndSplit if set.
	// If nil, returns the configured Fragments.
	FetchAndSplitFunc func(ctx context.Context, documentKey string) ([]core.Fragment, error)

	// Fragments is the default return value when no function is injected.
	Fragments []core.Fragment

	mu        sync.Mutex
	callCount int
}

// NewMockSplitter creates a mock splitter that returns the given fragments.
// Returns the concrete type to allow test assertions.
func NewMockSplitter(fragments ...core.Fragment) *MockSplitter {
	return &MockSplitter{Fragments: fragments}
}

// FetchAndSplit returns the configured fragments or delegates to the injected function.
func (m *MockSplitter) FetchAndSplit(ctx context.Context, documentKey string) ([]core.Fragment, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.FetchAndSplitFunc != nil {
		return m.FetchAndSplitFunc(ctx, documentKey)
	}
	return m.Fragments, nil
}

// CallCount returns the number of FetchAndSplit calls.
func (m *MockSplitter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockSplitter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.FetchAndSplitFunc = nil
}
