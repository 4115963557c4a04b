package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/rag"
	"github.com/helikon/arxdialog/storage"
)

// BatchProcessor re-embeds batches of entries and writes them back.
type BatchProcessor struct {
	repo           storage.EntryRepository
	embedder       rag.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(repo storage.EntryRepository, embedder rag.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates fresh embeddings for a batch of entries and updates
// them in place. Vectors are normalized so cosine similarity stays valid.
func (bp *BatchProcessor) Process(ctx context.Context, entries []*core.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(entries) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(entries), len(embeddings))
	}

	for i := range entries {
		entries[i].Vector = NormalizeVector(embeddings[i])
	}

	_, err = bp.repo.UpdateEntries(ctx, entries...)
	if err != nil {
		return fmt.Errorf("failed to update entries: %w", err)
	}

	return nil
}
