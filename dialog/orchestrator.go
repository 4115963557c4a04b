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


package dialog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/helikon/arxdialog/checkpoint"
	"github.com/helikon/arxdialog/clip"
	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/ingest"
	"github.com/helikon/arxdialog/rag"
)

const (
	defaultMaxHistoryRounds = 5
	defaultMaxContextTokens = 4096
	defaultRememberPreview  = 1000
	defaultAwaitTimeout     = 300 * time.Second
)

// User-visible replies for the non-answer branches.
const (
	msgPromptForDocument = "Please provide an arXiv paper link or ID first."
	msgProcessing        = "Processing the paper, please wait..."
	msgAlreadyLoaded     = "Paper already loaded. Ask away."
	msgIngestFailed      = "Paper processing failed. Check the paper ID or try again later."
	msgIngestDone        = "Paper loaded. You can now ask questions about it."
	msgAnswerFailed      = "Sorry, something went wrong answering your question. Please try again."
)

// Orchestrator drives one conversation turn at a time: it decides whether
// the incoming text names a new document or asks a question, runs the
// matching branch, and publishes the updated transcript.
type Orchestrator struct {
	checkpoints *checkpoint.Store
	tracker     *ingest.Tracker
	indexes     ingest.IndexProvider
	model       rag.ModelCaller
	publisher   rag.Publisher
	clipper     rag.Clipper

	systemPrompt     string
	streamSink       func(delta string)
	maxHistoryRounds int
	maxContextTokens int
	rememberPreview  int
	awaitTimeout     time.Duration
	logger           *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithSystemPrompt sets the system prompt passed to the model.
func WithSystemPrompt(prompt string) Option {
	return func(o *Orchestrator) error {
		o.systemPrompt = prompt
		return nil
	}
}

// WithStreamSink forwards incremental answer deltas to sink as the model
// produces them. The transcript still carries the complete answer.
func WithStreamSink(sink func(delta string)) Option {
	return func(o *Orchestrator) error {
		o.streamSink = sink
		return nil
	}
}

// WithMaxHistoryRounds sets how many question/answer rounds of history
// are kept for the model. Default is 5.
func WithMaxHistoryRounds(rounds int) Option {
	return func(o *Orchestrator) error {
		if rounds > 0 {
			o.maxHistoryRounds = rounds
		}
		return nil
	}
}

// WithMaxContextTokens sets the token budget applied to incoming query
// text. Default is 4096.
func WithMaxContextTokens(tokens int) Option {
	return func(o *Orchestrator) error {
		if tokens > 0 {
			o.maxContextTokens = tokens
		}
		return nil
	}
}

// WithRememberPreview sets the character budget for the remembered form
// of an oversized query. Default is 1000.
func WithRememberPreview(chars int) Option {
	return func(o *Orchestrator) error {
		if chars > 0 {
			o.rememberPreview = chars
		}
		return nil
	}
}

// WithAwaitTimeout bounds how long an ingestion turn blocks waiting for
// completion. Default is 300 seconds.
func WithAwaitTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) error {
		if timeout > 0 {
			o.awaitTimeout = timeout
		}
		return nil
	}
}

// NewOrchestrator creates a conversation orchestrator.
func NewOrchestrator(
	checkpoints *checkpoint.Store,
	tracker *ingest.Tracker,
	indexes ingest.IndexProvider,
	model rag.ModelCaller,
	publisher rag.Publisher,
	clipper rag.Clipper,
	opts ...Option,
) (*Orchestrator, error) {
	if checkpoints == nil {
		return nil, ErrCheckpointStoreRequired
	}
	if tracker == nil {
		return nil, ErrTrackerRequired
	}
	if indexes == nil {
		return nil, ErrIndexProviderRequired
	}
	if model == nil {
		return nil, ErrModelRequired
	}
	if publisher == nil {
		return nil, ErrPublisherRequired
	}
	if clipper == nil {
		return nil, ErrClipperRequired
	}

	o := &Orchestrator{
		checkpoints:      checkpoints,
		tracker:          tracker,
		indexes:          indexes,
		model:            model,
		publisher:        publisher,
		clipper:          clipper,
		maxHistoryRounds: defaultMaxHistoryRounds,
		maxContextTokens: defaultMaxContextTokens,
		rememberPreview:  defaultRememberPreview,
		awaitTimeout:     defaultAwaitTimeout,
		logger:           slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// HandleTurn processes one incoming turn of the conversation. Every
// branch ends by publishing the transcript; user-visible failures are
// reported on the transcript rather than as errors.
func (o *Orchestrator) HandleTurn(ctx context.Context, session *Session, input string) error {
	defer o.publisher.Publish(session.Transcript, session.History)

	isReference := core.LooksLikeReference(input)

	// Nothing to talk about yet.
	if len(session.History) == 0 && !isReference && session.DocumentKey == "" {
		session.appendTurn(input, msgPromptForDocument)
		return nil
	}

	if isReference {
		o.handleIngestion(session, input)
		return nil
	}

	return o.handleQuery(ctx, session, input)
}

func (o *Orchestrator) handleIngestion(session *Session, input string) {
	documentKey := core.NormalizeDocumentKey(input)

	if o.checkpoints.Exists(documentKey) {
		session.DocumentKey = documentKey
		session.appendTurn(input, msgAlreadyLoaded)
		return
	}

	session.appendTurn(input, msgProcessing)

	err := o.tracker.Submit(documentKey)
	if err != nil && !errors.Is(err, ingest.ErrIngestionInFlight) {
		o.logger.Error("error submitting ingestion", "documentKey", documentKey, "err", err)
		session.Transcript[len(session.Transcript)-1].Assistant = msgIngestFailed
		return
	}

	// Joining an in-flight ingestion for the same key is fine; the wait
	// below observes whichever attempt finishes.
	if !o.tracker.AwaitCompletion(documentKey, o.awaitTimeout) {
		session.Transcript[len(session.Transcript)-1].Assistant = msgIngestFailed
		return
	}

	session.DocumentKey = documentKey
	session.Transcript[len(session.Transcript)-1].Assistant = msgIngestDone
}

func (o *Orchestrator) handleQuery(ctx context.Context, session *Session, query string) error {
	if session.DocumentKey == "" {
		session.appendTurn(query, msgPromptForDocument)
		return nil
	}

	session.truncateHistory(o.maxHistoryRounds)

	clipped, altered, err := o.clipper.Clip(query, o.maxContextTokens)
	if err != nil {
		o.logger.Error("error clipping query", "err", err)
		clipped, altered = query, false
	}

	// Oversized queries are remembered as a head-and-tail preview.
	toRemember := clipped
	if altered && len(query) > o.rememberPreview {
		toRemember = clip.Preview(query, o.rememberPreview)
	}

	idx, err := o.indexes.IndexFor(session.DocumentKey)
	if err != nil {
		o.logger.Error("error opening index", "documentKey", session.DocumentKey, "err", err)
		session.appendTurn(query, msgAnswerFailed)
		return nil
	}

	prompt := o.assemblePrompt(ctx, idx, clipped)
	if prompt == "" {
		session.appendTurn(query, msgAnswerFailed)
		return nil
	}

	response, err := o.model.Invoke(ctx, rag.InvokeRequest{
		Prompt:       prompt,
		DisplayText:  clipped,
		History:      session.History,
		SystemPrompt: o.systemPrompt,
		Stream:       o.streamSink,
	})
	if err != nil {
		o.logger.Error("error invoking model", "err", err)
		session.appendTurn(query, msgAnswerFailed)
		return nil
	}

	o.remember(ctx, idx, toRemember, response)
	session.appendExchange(query, response)
	return nil
}

// assemblePrompt retrieves matching nodes and builds the grounded prompt.
// Any failure degrades to the empty string, the soft-failure sentinel.
func (o *Orchestrator) assemblePrompt(ctx context.Context, idx rag.Index, query string) string {
	nodes, err := idx.Retrieve(ctx, query)
	if err != nil {
		o.logger.Error("error retrieving nodes", "err", err)
		return ""
	}
	return idx.BuildPrompt(query, nodes)
}

// remember writes the exchange to conversational memory, best effort.
func (o *Orchestrator) remember(ctx context.Context, idx rag.Index, question, answer string) {
	if err := idx.RememberExchange(ctx, question, answer); err != nil {
		o.logger.Error("error remembering exchange", "err", err)
	}
}
