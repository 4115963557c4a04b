// Copyright 2025 Helikon Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/helikon/arxdialog/rag"

// MockProvider is a test double for rag.Provider.
// It aggregates mock embedder and model caller instances.
type MockProvider struct {
	embedder *MockEmbedder
	model    *MockModelCaller
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns rag.Provider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockModel() to access concrete types for assertions.
func NewMockProvider() rag.Provider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		model:    NewMockModelCaller("mock answer"),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, model *MockModelCaller) rag.Provider {
	return &MockProvider{
		embedder: embedder,
		model:    model,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() rag.Embedder {
	return p.embedder
}

// Model returns the mock model caller.
func (p *MockProvider) Model() rag.ModelCaller {
	return p.model
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockModel returns the concrete mock model caller for test assertions.
func (p *MockProvider) GetMockModel() *MockModelCaller {
	return p.model
}
