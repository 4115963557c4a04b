package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/helikon/arxdialog/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureLayout(t *testing.T) {
	store := NewStore(t.TempDir())

	paths, err := store.EnsureLayout("2312.12345")
	require.NoError(t, err)

	for _, dir := range []string{paths.CheckpointDir, paths.IndexDir, paths.FragmentDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Idempotent: a second call succeeds and returns the same paths.
	again, err := store.EnsureLayout("2312.12345")
	require.NoError(t, err)
	assert.Equal(t, paths, again)
}

func TestEnsureLayout_EmptyKey(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.EnsureLayout("")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestUnsafeKeysRejected(t *testing.T) {
	base := t.TempDir()
	store := NewStore(base)

	for _, key := range []string{"../outside", "a/b", `a\b`} {
		_, err := store.EnsureLayout(key)
		assert.ErrorIs(t, err, core.ErrUnsafeDocumentKey, key)
		assert.ErrorIs(t, store.MarkComplete(key), core.ErrUnsafeDocumentKey, key)
		assert.ErrorIs(t, store.WriteSnapshot(key, nil), core.ErrUnsafeDocumentKey, key)
		assert.False(t, store.Exists(key), key)
	}

	// Nothing escaped or landed under the base directory.
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = os.Stat(filepath.Join(base, "..", "outside"))
	assert.True(t, os.IsNotExist(err))
}

func TestMarkComplete(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.EnsureLayout("2312.12345")
	require.NoError(t, err)

	assert.False(t, store.Exists("2312.12345"))

	require.NoError(t, store.MarkComplete("2312.12345"))
	assert.True(t, store.Exists("2312.12345"))

	// Marker is zero-byte and named <key>.processed.
	info, err := os.Stat(store.MarkerPath("2312.12345"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
	assert.Equal(t, "2312.12345.processed", filepath.Base(store.MarkerPath("2312.12345")))

	// Marking twice is harmless.
	require.NoError(t, store.MarkComplete("2312.12345"))
	assert.True(t, store.Exists("2312.12345"))
}

func TestExists_UnknownKey(t *testing.T) {
	store := NewStore(t.TempDir())

	assert.False(t, store.Exists("9999.99999"))
	assert.False(t, store.Exists(""))
}

func TestWriteAndReadSnapshot(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.EnsureLayout("2312.12345")
	require.NoError(t, err)

	fragments := []core.Fragment{
		{
			Title:          "Example Paper",
			Abstract:       "An abstract.",
			DocumentKey:    "2312.12345",
			CurrentSection: "Introduction",
			SectionTree:    "1 Introduction",
			Content:        "Introductory content.",
		},
		{
			Title:          "Example Paper",
			Abstract:       "An abstract.",
			DocumentKey:    "2312.12345",
			CurrentSection: "Method",
			SectionTree:    "1 Introduction > 2 Method",
			Content:        "Method content.",
			Bibliography:   "[1] Someone et al.",
		},
	}

	require.NoError(t, store.WriteSnapshot("2312.12345", fragments))
	assert.Equal(t, "2312.12345_fragments.json", filepath.Base(store.SnapshotPath("2312.12345")))

	loaded, err := store.ReadSnapshot("2312.12345")
	require.NoError(t, err)
	assert.Equal(t, fragments, loaded)
}

func TestDisjointKeys(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.EnsureLayout("2312.12345")
	require.NoError(t, err)
	_, err = store.EnsureLayout("2101.00001")
	require.NoError(t, err)

	require.NoError(t, store.MarkComplete("2312.12345"))

	assert.True(t, store.Exists("2312.12345"))
	assert.False(t, store.Exists("2101.00001"))
}
