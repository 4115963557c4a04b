package jsonsplit

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/helikon/arxdialog/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAndSplit(t *testing.T) {
	dir := t.TempDir()
	fragments := []core.Fragment{
		{Title: "A Paper", DocumentKey: "2312.12345", Content: "content"},
	}
	data, err := json.Marshal(fragments)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2312.12345.json"), data, 0644))

	s := NewSplitter(dir)
	got, err := s.FetchAndSplit(context.Background(), "2312.12345")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A Paper", got[0].Title)
}

func TestFetchAndSplit_MissingFile(t *testing.T) {
	s := NewSplitter(t.TempDir())

	_, err := s.FetchAndSplit(context.Background(), "0000.00000")
	assert.Error(t, err)
}

func TestFetchAndSplit_EmptyKey(t *testing.T) {
	s := NewSplitter(t.TempDir())

	_, err := s.FetchAndSplit(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrEmptyDocumentKey)
}

func TestFetchAndSplit_UnsafeKey(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal([]core.Fragment{{Title: "outside"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secrets.json"), data, 0644))

	s := NewSplitter(filepath.Join(dir, "fragments"))

	// A key with parent references must not read outside the directory.
	_, err = s.FetchAndSplit(context.Background(), "../secrets")
	assert.ErrorIs(t, err, core.ErrUnsafeDocumentKey)
}

func TestFetchAndSplit_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2312.12345.json"), []byte("{not json"), 0644))

	s := NewSplitter(dir)
	_, err := s.FetchAndSplit(context.Background(), "2312.12345")
	assert.Error(t, err)
}
