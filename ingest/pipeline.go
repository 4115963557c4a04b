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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/helikon/arxdialog/checkpoint"
	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/rag"
	"github.com/panjf2000/ants/v2"
)

// defaultPoolSize bounds concurrent fragment commits process-wide,
// independent of fragment count.
const defaultPoolSize = 10

// IndexProvider hands out the index for a document key.
type IndexProvider interface {
	IndexFor(documentKey string) (rag.Index, error)
}

// IndexProviderFunc adapts a function to the IndexProvider interface.
type IndexProviderFunc func(documentKey string) (rag.Index, error)

func (f IndexProviderFunc) IndexFor(documentKey string) (rag.Index, error) {
	return f(documentKey)
}

// Pipeline orchestrates the ingestion of a document into its index.
// It fetches and splits the document, commits the overview synchronously,
// then commits fragments through a bounded worker pool.
type Pipeline struct {
	splitter    rag.Splitter
	checkpoints *checkpoint.Store
	indexes     IndexProvider
	pool        *ants.Pool
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent fragment commits.
// Default is 10, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline. The worker pool is owned
// by the pipeline and released by Release.
func NewPipeline(
	splitter rag.Splitter,
	checkpoints *checkpoint.Store,
	indexes IndexProvider,
	opts ...Option,
) (*Pipeline, error) {
	if splitter == nil {
		return nil, ErrSplitterRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointStoreRequired
	}
	if indexes == nil {
		return nil, ErrIndexRequired
	}

	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		splitter:    splitter,
		checkpoints: checkpoints,
		indexes:     indexes,
		pool:        pool,
		logger:      slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest fetches, splits, and indexes the document identified by
// documentKey. It returns the number of fragments committed to the index.
//
// Ingestion is idempotent: if the document's completion marker already
// exists, Ingest returns without touching the index. The overview is
// committed synchronously before any fragment so it stays queryable even
// when fragment commits fail. Per-fragment failures are logged and
// skipped; the completion marker is written once all fragment commits
// have been joined.
func (p *Pipeline) Ingest(ctx context.Context, documentKey string) (int, error) {
	if err := core.ValidateDocumentKey(documentKey); err != nil {
		return 0, err
	}

	if p.checkpoints.Exists(documentKey) {
		p.logger.Info("document already ingested, skipping", "documentKey", documentKey)
		return 0, nil
	}

	fragments, err := p.splitter.FetchAndSplit(ctx, documentKey)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", core.ErrFetchFailed, err)
	}
	if len(fragments) == 0 {
		return 0, core.ErrEmptyDocument
	}

	if _, err := p.checkpoints.EnsureLayout(documentKey); err != nil {
		return 0, err
	}

	idx, err := p.indexes.IndexFor(documentKey)
	if err != nil {
		return 0, err
	}

	// Overview first, synchronously.
	if err := idx.AddOverview(ctx, OverviewText(fragments)); err != nil {
		return 0, err
	}
	p.logger.Info("added document overview", "documentKey", documentKey)

	var wg sync.WaitGroup
	var committed atomic.Int64
	for i, fragment := range fragments {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := idx.AddFragmentText(ctx, FragmentText(fragment)); err != nil {
				p.logger.Error("error committing fragment", "documentKey", documentKey, "fragment", i, "err", err)
				return
			}
			committed.Add(1)
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Error("error submitting fragment to pool", "documentKey", documentKey, "fragment", i, "err", submitErr)
		}
	}
	wg.Wait()

	// Snapshot is a debugging aid, not a dependency of the index; it is
	// written only after the commits it describes have been joined.
	if err := p.checkpoints.WriteSnapshot(documentKey, fragments); err != nil {
		p.logger.Warn("error writing fragment snapshot", "documentKey", documentKey, "err", err)
	}

	if err := p.checkpoints.MarkComplete(documentKey); err != nil {
		return int(committed.Load()), err
	}

	p.logger.Info("ingestion complete",
		"documentKey", documentKey,
		"fragments", len(fragments),
		"committed", committed.Load())
	return int(committed.Load()), nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Released reports whether the worker pool has been released.
func (p *Pipeline) Released() bool {
	return p.pool == nil || p.pool.IsClosed()
}
