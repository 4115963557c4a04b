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


// Package storage provides the storage abstraction layer for per-document
// index entries.
//
// This package defines the repository interface that decouples storage
// implementation from indexing and retrieval logic, allowing different
// backends (BadgerDB, in-memory) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors return interface types to enforce abstraction and
// enable alternative backend implementations:
//
//	repo, err := badger.NewEntryRepository(backend)  // returns storage.EntryRepository
//
// # Usage
//
// Create a repository instance:
//
//	backend, err := badger.OpenBackend("/path/to/vector_store", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	repo, err := badger.NewEntryRepository(backend)
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
