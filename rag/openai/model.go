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


package openai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/helikon/arxdialog/rag"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ModelCaller implements rag.ModelCaller using OpenAI-compatible chat APIs.
type ModelCaller struct {
	client llms.Model
	logger *slog.Logger
}

// newModelCaller is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newModelCaller(config *rag.Config) (*ModelCaller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ModelHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &ModelCaller{
		client: client,
		logger: slog.Default().With("component", "openai-model"),
	}, nil
}

// NewModelCaller creates a new model caller using the provided configuration.
//
// Returns rag.ModelCaller interface to enforce abstraction.
func NewModelCaller(config *rag.Config) (rag.ModelCaller, error) {
	return newModelCaller(config)
}

// Invoke sends the prompt and conversation history to the chat model and
// returns the answer text. When req.Stream is set, answer deltas are forwarded
// as they arrive.
func (m *ModelCaller) Invoke(ctx context.Context, req rag.InvokeRequest) (string, error) {
	content := make([]llms.MessageContent, 0, len(req.History)+2)

	if req.SystemPrompt != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.SystemPrompt)},
		})
	}

	// History alternates question/answer; even offsets are the human side.
	for i, msg := range req.History {
		role := llms.ChatMessageTypeHuman
		if i%2 == 1 {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg)},
		})
	}

	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.Prompt)},
	})

	opts := []llms.CallOption{llms.WithTemperature(0.7)}
	if req.Stream != nil {
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			req.Stream(string(chunk))
			return nil
		}))
	}

	m.logger.Debug("invoking chat model", "promptLength", len(req.Prompt), "historyLength", len(req.History))

	response, err := m.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		m.logger.Error("chat model invocation failed", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		m.logger.Warn("no choices returned from model")
		return "", errors.New("model returned no choices")
	}

	return response.Choices[0].Content, nil
}
