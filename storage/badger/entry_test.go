package badger

import (
	"context"
	"testing"
	"time"

	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) storage.EntryRepository {
	t.Helper()

	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	return repo
}

func TestAddEntries_ContentID(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	entry := &core.Entry{
		Kind:        core.EntryKindFragment,
		DocumentKey: "2312.12345",
		Text:        "Content: section one",
		Vector:      []float32{0.1, 0.2, 0.3},
	}

	added, err := repo.AddEntries(ctx, entry)
	require.NoError(t, err)
	require.Len(t, added, 1)

	assert.Equal(t, core.IDFromContent(entry.Text), added[0].Id)
	assert.False(t, added[0].InsertedAt.IsZero())

	// Adding the same text again overwrites in place.
	duplicate := &core.Entry{
		Kind:        core.EntryKindFragment,
		DocumentKey: "2312.12345",
		Text:        "Content: section one",
		Vector:      []float32{0.1, 0.2, 0.3},
	}
	_, err = repo.AddEntries(ctx, duplicate)
	require.NoError(t, err)

	count, err := repo.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddEntries_Invalid(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.AddEntries(context.Background(), &core.Entry{Kind: core.EntryKindFragment})
	assert.ErrorIs(t, err, core.ErrEmptyEntryText)
}

func TestGetEntry(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	added, err := repo.AddEntries(ctx, &core.Entry{
		Kind: core.EntryKindOverview,
		Text: "Type: OVERVIEW",
	})
	require.NoError(t, err)

	got, err := repo.GetEntry(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Type: OVERVIEW", got.Text)
	assert.Equal(t, core.EntryKindOverview, got.Kind)
}

func TestGetEntry_NotFound(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.GetEntry(context.Background(), core.ID(42))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetEntriesByKind(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Minute)
	entries := []*core.Entry{
		{Kind: core.EntryKindOverview, Text: "overview", InsertedAt: base},
		{Kind: core.EntryKindFragment, Text: "fragment one", InsertedAt: base.Add(time.Second)},
		{Kind: core.EntryKindFragment, Text: "fragment two", InsertedAt: base.Add(2 * time.Second)},
		{Kind: core.EntryKindMemory, Text: "Q: q\nA: a", InsertedAt: base.Add(3 * time.Second)},
	}
	_, err := repo.AddEntries(ctx, entries...)
	require.NoError(t, err)

	fragments, err := repo.GetEntriesByKind(ctx, core.EntryKindFragment)
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t, "fragment one", fragments[0].Text)
	assert.Equal(t, "fragment two", fragments[1].Text)

	memories, err := repo.GetEntriesByKind(ctx, core.EntryKindMemory)
	require.NoError(t, err)
	require.Len(t, memories, 1)
}

func TestGetAllEntries(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.AddEntries(ctx,
		&core.Entry{Kind: core.EntryKindOverview, Text: "overview"},
		&core.Entry{Kind: core.EntryKindFragment, Text: "fragment"},
	)
	require.NoError(t, err)

	all, err := repo.GetAllEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateEntries(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	added, err := repo.AddEntries(ctx, &core.Entry{
		Kind:   core.EntryKindFragment,
		Text:   "fragment",
		Vector: []float32{0.1},
	})
	require.NoError(t, err)

	added[0].Vector = []float32{0.9}
	updated, err := repo.UpdateEntries(ctx, added[0])
	require.NoError(t, err)
	assert.False(t, updated[0].UpdatedAt.Before(updated[0].InsertedAt))

	got, err := repo.GetEntry(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.9}, got.Vector)
}

func TestUpdateEntries_NotFound(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.UpdateEntries(context.Background(), &core.Entry{
		Id:   core.ID(12345),
		Kind: core.EntryKindFragment,
		Text: "missing",
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindSimilar(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.AddEntries(ctx,
		&core.Entry{Kind: core.EntryKindFragment, Text: "close match", Vector: []float32{1, 0, 0}},
		&core.Entry{Kind: core.EntryKindFragment, Text: "partial match", Vector: []float32{0.7, 0.7, 0}},
		&core.Entry{Kind: core.EntryKindFragment, Text: "orthogonal", Vector: []float32{0, 0, 1}},
		&core.Entry{Kind: core.EntryKindFragment, Text: "no vector"},
	)
	require.NoError(t, err)

	matches, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 0.6, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Ordered by score descending.
	assert.Equal(t, "close match", matches[0].Entry.Text)
	assert.Equal(t, "partial match", matches[1].Entry.Text)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestFindSimilar_Limit(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.AddEntries(ctx,
		&core.Entry{Kind: core.EntryKindFragment, Text: "a", Vector: []float32{1, 0}},
		&core.Entry{Kind: core.EntryKindFragment, Text: "b", Vector: []float32{0.99, 0.01}},
		&core.Entry{Kind: core.EntryKindFragment, Text: "c", Vector: []float32{0.98, 0.02}},
	)
	require.NoError(t, err)

	matches, err := repo.FindSimilar(ctx, []float32{1, 0}, 0.5, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}
