package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/helikon/arxdialog/core"
)

// MockIndex is a test double for rag.Index.
// It records every committed text block and allows behavior injection.
type MockIndex struct {
	// AddOverviewFunc is called by AddOverview if set.
	AddOverviewFunc func(ctx context.Context, text string) error

	// AddFragmentTextFunc is called by AddFragmentText if set.
	AddFragmentTextFunc func(ctx context.Context, text string) error

	// RetrieveFunc is called by Retrieve if set.
	// If nil, returns a single node per recorded entry containing the query.
	RetrieveFunc func(ctx context.Context, query string) ([]core.MatchedNode, error)

	// BuildPromptFunc is called by BuildPrompt if set.
	BuildPromptFunc func(query string, nodes []core.MatchedNode) string

	// RememberExchangeFunc is called by RememberExchange if set.
	RememberExchangeFunc func(ctx context.Context, question, answer string) error

	mu        sync.Mutex
	overviews []string
	fragments []string
	memories  []string
}

// NewMockIndex creates a mock index.
// Returns the concrete type to allow test assertions.
func NewMockIndex() *MockIndex {
	return &MockIndex{}
}

// AddOverview records the overview text block.
func (m *MockIndex) AddOverview(ctx context.Context, text string) error {
	if m.AddOverviewFunc != nil {
		if err := m.AddOverviewFunc(ctx, text); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overviews = append(m.overviews, text)
	return nil
}

// AddFragmentText records the fragment text block.
func (m *MockIndex) AddFragmentText(ctx context.Context, text string) error {
	if m.AddFragmentTextFunc != nil {
		if err := m.AddFragmentTextFunc(ctx, text); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fragments = append(m.fragments, text)
	return nil
}

// Retrieve returns recorded entries that share a word with the query.
func (m *MockIndex) Retrieve(ctx context.Context, query string) ([]core.MatchedNode, error) {
	if m.RetrieveFunc != nil {
		return m.RetrieveFunc(ctx, query)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var nodes []core.MatchedNode
	for _, text := range append(append([]string{}, m.overviews...), m.fragments...) {
		for _, word := range strings.Fields(strings.ToLower(query)) {
			if strings.Contains(strings.ToLower(text), word) {
				nodes = append(nodes, core.MatchedNode{Text: text, Score: 1.0})
				break
			}
		}
	}
	return nodes, nil
}

// BuildPrompt joins node texts with the query, or delegates to the injected function.
func (m *MockIndex) BuildPrompt(query string, nodes []core.MatchedNode) string {
	if m.BuildPromptFunc != nil {
		return m.BuildPromptFunc(query, nodes)
	}
	if len(nodes) == 0 {
		return ""
	}
	texts := make([]string, len(nodes))
	for i, node := range nodes {
		texts[i] = node.Text
	}
	return strings.Join(texts, "\n---\n") + "\n\nQuestion: " + query
}

// RememberExchange records the question/answer pair.
func (m *MockIndex) RememberExchange(ctx context.Context, question, answer string) error {
	if m.RememberExchangeFunc != nil {
		if err := m.RememberExchangeFunc(ctx, question, answer); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memories = append(m.memories, "Q: "+question+"\nA: "+answer)
	return nil
}

// Close is a no-op.
func (m *MockIndex) Close() error {
	return nil
}

// Overviews returns a copy of the recorded overview text blocks.
func (m *MockIndex) Overviews() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.overviews...)
}

// Fragments returns a copy of the recorded fragment text blocks.
func (m *MockIndex) Fragments() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.fragments...)
}

// Memories returns a copy of the recorded memory entries.
func (m *MockIndex) Memories() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.memories...)
}

// WriteCount returns the total number of overview and fragment commits.
func (m *MockIndex) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.overviews) + len(m.fragments)
}
