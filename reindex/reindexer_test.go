package reindex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/rag/mock"
	"github.com/helikon/arxdialog/storage"
	badgerstore "github.com/helikon/arxdialog/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T, entryCount int) storage.EntryRepository {
	t.Helper()

	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	entries := make([]*core.Entry, entryCount)
	for i := range entries {
		entries[i] = &core.Entry{
			Kind:   core.EntryKindFragment,
			Text:   fmt.Sprintf("fragment number %d", i),
			Vector: []float32{0.5, 0.5},
		}
	}
	if entryCount > 0 {
		_, err = repo.AddEntries(context.Background(), entries...)
		require.NoError(t, err)
	}

	return repo
}

func TestReindexer_Run(t *testing.T) {
	repo := setupRepository(t, 7)
	embedder := mock.NewMockEmbedder()

	var out bytes.Buffer
	config := &Config{BatchSize: 3, ReportInterval: 3, MaxRetries: 2, RetryDelay: time.Millisecond}
	r := NewReindexer(repo, embedder, config, &out)

	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "Reindex complete. Processed 7 entries")

	// Every entry carries a fresh unit-length vector.
	entries, err := repo.GetAllEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 7)
	for _, entry := range entries {
		assert.InDelta(t, 1.0, magnitude(entry.Vector), 1e-5)
		assert.NotEqual(t, []float32{0.5, 0.5}, entry.Vector)
	}
}

func TestReindexer_EmptyStore(t *testing.T) {
	repo := setupRepository(t, 0)

	var out bytes.Buffer
	r := NewReindexer(repo, mock.NewMockEmbedder(), nil, &out)

	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "No entries found")
}

func TestReindexer_EmbedderFailure(t *testing.T) {
	repo := setupRepository(t, 3)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	var out bytes.Buffer
	config := &Config{BatchSize: 2, ReportInterval: 2, MaxRetries: 2, RetryDelay: time.Millisecond}
	r := NewReindexer(repo, embedder, config, &out)

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch")
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	repo := setupRepository(t, 2)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}

	bp := NewBatchProcessor(repo, embedder, 1, time.Millisecond)
	entries, err := repo.GetAllEntries(context.Background())
	require.NoError(t, err)

	err = bp.Process(context.Background(), entries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch")
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	repo := setupRepository(t, 0)
	bp := NewBatchProcessor(repo, mock.NewMockEmbedder(), 1, time.Millisecond)

	assert.NoError(t, bp.Process(context.Background(), nil))
}
