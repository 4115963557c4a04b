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


// Package rag defines the external-collaborator abstractions the engine
// orchestrates: document splitting, index storage and retrieval, embeddings,
// model invocation, token clipping, and transcript publishing.
//
// The package follows the dependency inversion principle: the ingestion
// pipeline and the conversation orchestrator depend only on these interfaces,
// never on concrete implementations.
//
// # Interfaces
//
//   - Splitter: fetches a document and splits it into fragments
//   - Index: per-document store with overview/fragment/memory channels and retrieval
//   - Embedder: generates vector embeddings from text
//   - ModelCaller: invokes the language model, optionally streaming deltas
//   - Publisher: delivers transcript updates to the hosting surface
//   - Clipper: bounds text to a token budget
//   - Provider: aggregates Embedder and ModelCaller for lifecycle management
//
// # Implementation Packages
//
//   - rag/openai: production implementation using OpenAI-compatible APIs
//   - rag/mock: test doubles for unit testing without external dependencies
//
// Public constructors in rag/openai return interface types to enforce
// abstraction; mock constructors return concrete types so tests can inject
// behavior and assert call counts.
package rag
