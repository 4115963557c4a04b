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


package rag

import (
	"errors"
	"strings"
)

// Config holds configuration for model-backed service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// ModelHost is the base URL for the chat completion service API.
	ModelHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small"
	EmbeddingModel string

	// ChatModel is the model identifier to use for answering queries.
	// Example: "gpt-4o-mini", "qwen2.5:7b"
	ChatModel string

	// Token is the API token. Local OpenAI-compatible services that don't
	// require authentication accept any non-empty value.
	Token string

	// SystemPrompt is the default system instruction for chat invocations.
	SystemPrompt string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithModelHost sets the chat completion service host URL.
func WithModelHost(host string) ConfigOption {
	return func(c *Config) {
		c.ModelHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ModelHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithSystemPrompt sets the default system instruction.
func WithSystemPrompt(prompt string) ConfigOption {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		ModelHost:      defaultHost,
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "qwen2.5:7b",
		Token:          "none",
		SystemPrompt:   "You are a helpful assistant.",
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options. This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := rag.NewConfig(
//	    rag.WithHost("http://localhost:11434/v1"),
//	    rag.WithEmbeddingModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
	if c.ModelHost != "" && !strings.HasSuffix(c.ModelHost, "/v1") {
		c.ModelHost = strings.TrimSuffix(c.ModelHost, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("rag config: EmbeddingHost is required")
	}
	if c.ModelHost == "" {
		return errors.New("rag config: ModelHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("rag config: EmbeddingModel is required")
	}
	if c.ChatModel == "" {
		return errors.New("rag config: ChatModel is required")
	}
	if c.Token == "" {
		return errors.New("rag config: Token is required")
	}
	return nil
}
