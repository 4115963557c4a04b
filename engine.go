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


package arxdialog

import (
	"io"
	"log/slog"
	"sync"

	"github.com/helikon/arxdialog/checkpoint"
	"github.com/helikon/arxdialog/clip"
	"github.com/helikon/arxdialog/dialog"
	"github.com/helikon/arxdialog/index"
	"github.com/helikon/arxdialog/ingest"
	"github.com/helikon/arxdialog/rag"
	"github.com/helikon/arxdialog/rag/openai"
	"github.com/helikon/arxdialog/reindex"
	badgerstore "github.com/helikon/arxdialog/storage/badger"
)

// Engine wires the whole system together: the checkpoint store, the
// splitter, the model provider, and one lazily opened local index per
// document key.
type Engine struct {
	baseDir      string
	checkpoints  *checkpoint.Store
	splitter     rag.Splitter
	provider     rag.Provider
	clipper      rag.Clipper
	systemPrompt string
	logger       *slog.Logger

	mu        sync.Mutex
	indexes   map[string]*openIndex
	pipelines []*ingest.Pipeline
}

type openIndex struct {
	backend *badgerstore.Backend
	idx     *index.LocalIndex
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	ragConfig *rag.Config
	provider  rag.Provider
	clipper   rag.Clipper
	logger    *slog.Logger
}

// WithRAGConfig sets the configuration used to build the default
// provider and clipper.
func WithRAGConfig(config *rag.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.ragConfig = config
		}
	}
}

// WithProvider overrides the default OpenAI-compatible provider.
func WithProvider(provider rag.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithClipper overrides the default tiktoken clipper.
func WithClipper(clipper rag.Clipper) EngineOption {
	return func(o *engineOptions) {
		o.clipper = clipper
	}
}

// WithEngineLogger sets a custom logger.
// Default is slog.Default().
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewEngine creates an engine rooted at baseDir. The splitter fetches
// and splits documents; everything else is built from options or
// defaults.
func NewEngine(baseDir string, splitter rag.Splitter, opts ...EngineOption) (*Engine, error) {
	if splitter == nil {
		return nil, ingest.ErrSplitterRequired
	}

	options := &engineOptions{
		ragConfig: rag.DefaultConfig(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		p, err := openai.NewProvider(options.ragConfig)
		if err != nil {
			return nil, err
		}
		provider = p
	}

	clipper := options.clipper
	if clipper == nil {
		c, err := clip.NewClipper(options.ragConfig.ChatModel)
		if err != nil {
			provider.Close()
			return nil, err
		}
		clipper = c
	}

	return &Engine{
		baseDir:      baseDir,
		checkpoints:  checkpoint.NewStore(baseDir, checkpoint.WithLogger(options.logger)),
		splitter:     splitter,
		provider:     provider,
		clipper:      clipper,
		systemPrompt: options.ragConfig.SystemPrompt,
		logger:       options.logger,
		indexes:      make(map[string]*openIndex),
	}, nil
}

// Checkpoints returns the engine's checkpoint store.
func (e *Engine) Checkpoints() *checkpoint.Store {
	return e.checkpoints
}

// IndexFor returns the local index for a document key, opening its
// backing store on first use. Satisfies ingest.IndexProvider.
func (e *Engine) IndexFor(documentKey string) (rag.Index, error) {
	open, err := e.open(documentKey)
	if err != nil {
		return nil, err
	}
	return open.idx, nil
}

func (e *Engine) open(documentKey string) (*openIndex, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if open, ok := e.indexes[documentKey]; ok {
		return open, nil
	}

	paths, err := e.checkpoints.EnsureLayout(documentKey)
	if err != nil {
		return nil, err
	}

	backend, err := badgerstore.OpenBackend(paths.IndexDir, false)
	if err != nil {
		return nil, err
	}

	repo, err := badgerstore.NewEntryRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	indexOpts := []index.Option{index.WithLogger(e.logger)}
	if counter, ok := e.clipper.(index.TokenCounter); ok {
		indexOpts = append(indexOpts, index.WithTokenCounter(counter))
	}

	idx, err := index.NewLocalIndex(documentKey, repo, e.provider.Embedder(), indexOpts...)
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, err
	}

	open := &openIndex{backend: backend, idx: idx}
	e.indexes[documentKey] = open
	return open, nil
}

// NewPipeline creates an ingestion pipeline over the engine's splitter
// and indexes. The pipeline's worker pool is released by Close if the
// caller has not released it already.
func (e *Engine) NewPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	pipeline, err := ingest.NewPipeline(e.splitter, e.checkpoints, e, opts...)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.pipelines = append(e.pipelines, pipeline)
	e.mu.Unlock()
	return pipeline, nil
}

// NewTracker creates a task tracker over a fresh pipeline.
func (e *Engine) NewTracker(opts ...ingest.Option) (*ingest.Tracker, error) {
	pipeline, err := e.NewPipeline(opts...)
	if err != nil {
		return nil, err
	}
	return ingest.NewTracker(pipeline, ingest.WithTrackerLogger(e.logger))
}

// NewOrchestrator creates a conversation orchestrator publishing through
// the given publisher.
func (e *Engine) NewOrchestrator(publisher rag.Publisher, opts ...dialog.Option) (*dialog.Orchestrator, error) {
	tracker, err := e.NewTracker()
	if err != nil {
		return nil, err
	}

	orchOpts := append([]dialog.Option{dialog.WithSystemPrompt(e.systemPrompt)}, opts...)
	return dialog.NewOrchestrator(e.checkpoints, tracker, e, e.provider.Model(), publisher, e.clipper, orchOpts...)
}

// NewReindexer creates a reindexer over the document's entry store.
func (e *Engine) NewReindexer(documentKey string, config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	open, err := e.open(documentKey)
	if err != nil {
		return nil, err
	}
	repo, err := badgerstore.NewEntryRepository(open.backend)
	if err != nil {
		return nil, err
	}
	return reindex.NewReindexer(repo, e.provider.Embedder(), config, progress), nil
}

// Close releases the provider, every pipeline worker pool, and every
// open index.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing provider", "err", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, pipeline := range e.pipelines {
		pipeline.Release()
	}
	e.pipelines = nil

	var firstErr error
	for key, open := range e.indexes {
		if err := open.idx.Close(); err != nil {
			e.logger.Error("error closing index", "documentKey", key, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		if err := open.backend.Close(); err != nil {
			e.logger.Error("error closing index backend", "documentKey", key, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	e.indexes = make(map[string]*openIndex)
	return firstErr
}
