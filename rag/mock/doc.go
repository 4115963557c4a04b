// Package mock provides test doubles for the rag package interfaces.
//
// Mocks default to deterministic behavior (hash-based embeddings, recorded
// commits, canned answers) and support behavior injection via function
// fields plus call-count assertions, so orchestration logic can be tested
// without any external splitter, index, or model service.
package mock
