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


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/rag"
	"github.com/helikon/arxdialog/storage"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of entries to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of entries)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer re-embeds every entry of a document's index.
type Reindexer struct {
	repo      storage.EntryRepository
	embedder  rag.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *EntryIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(repo storage.EntryRepository, embedder rag.Embedder, config *Config, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reindexer{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewEntryIterator(repo, config.BatchSize),
	}
}

// Run executes the reindexing operation over every entry in the store,
// reporting progress to the configured writer.
func (r *Reindexer) Run(ctx context.Context) error {
	total, err := r.repo.CountEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to count entries: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No entries found in index (0 entries)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d entries (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(entries []*core.Entry) error {
		if err := r.processor.Process(ctx, entries); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(entries)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d entries in %v (%.1f entries/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
