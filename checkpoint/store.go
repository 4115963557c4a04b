package checkpoint

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/helikon/arxdialog/core"
)

const (
	indexSubdir    = "vector_store"
	fragmentSubdir = "fragments"
	markerSuffix   = ".processed"
	snapshotSuffix = "_fragments.json"
)

// Store manages the per-document on-disk layout and completion markers.
// The presence of a document's marker file is the sole durable signal that
// ingestion for that key has fully succeeded at least once.
type Store struct {
	baseDir string
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStore creates a checkpoint store rooted at baseDir.
// The base directory is created lazily by EnsureLayout.
func NewStore(baseDir string, opts ...Option) *Store {
	s := &Store{
		baseDir: baseDir,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths holds the on-disk locations for one document key.
type Paths struct {
	CheckpointDir string // per-document root
	IndexDir      string // index subtree, owned by the index store
	FragmentDir   string // fragment snapshot subtree
}

// Layout computes the directory layout for a document key without touching disk.
func (s *Store) Layout(key string) Paths {
	root := filepath.Join(s.baseDir, key)
	return Paths{
		CheckpointDir: root,
		IndexDir:      filepath.Join(root, indexSubdir),
		FragmentDir:   filepath.Join(root, fragmentSubdir),
	}
}

// validateKey rejects keys that would escape the base directory when
// joined into paths.
func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return core.ValidateDocumentKey(key)
}

// EnsureLayout creates the document's index and fragment-snapshot directories
// if absent. Safe to call repeatedly.
func (s *Store) EnsureLayout(key string) (Paths, error) {
	if err := validateKey(key); err != nil {
		return Paths{}, err
	}

	paths := s.Layout(key)
	for _, dir := range []string{paths.CheckpointDir, paths.IndexDir, paths.FragmentDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Paths{}, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	s.logger.Debug("ensured checkpoint layout",
		"key", key,
		"checkpointDir", paths.CheckpointDir)

	return paths, nil
}

// MarkerPath returns the completion marker path for a document key.
func (s *Store) MarkerPath(key string) string {
	return filepath.Join(s.baseDir, key, key+markerSuffix)
}

// Exists reports whether ingestion for the key has previously completed.
func (s *Store) Exists(key string) bool {
	if validateKey(key) != nil {
		return false
	}
	_, err := os.Stat(s.MarkerPath(key))
	return err == nil
}

// MarkComplete writes the zero-byte completion marker for a document key.
// Must only be called after all fragment commits have been attempted; the
// marker is existence-based, so its creation is the single atomic step that
// flips a document from "must ingest" to "already ingested".
func (s *Store) MarkComplete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	f, err := os.OpenFile(s.MarkerPath(key), os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("writing completion marker for %s: %w", key, err)
	}
	return f.Close()
}

// SnapshotPath returns the fragment snapshot path for a document key.
func (s *Store) SnapshotPath(key string) string {
	return filepath.Join(s.baseDir, key, fragmentSubdir, key+snapshotSuffix)
}

// WriteSnapshot persists the full fragment sequence as a JSON debug snapshot
// under the fragment subtree.
func (s *Store) WriteSnapshot(key string, fragments []core.Fragment) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := json.MarshalIndent(fragments, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding fragment snapshot for %s: %w", key, err)
	}

	if err := os.WriteFile(s.SnapshotPath(key), data, 0644); err != nil {
		return fmt.Errorf("writing fragment snapshot for %s: %w", key, err)
	}

	s.logger.Debug("wrote fragment snapshot", "key", key, "fragments", len(fragments))
	return nil
}

// ReadSnapshot loads a previously written fragment snapshot.
func (s *Store) ReadSnapshot(key string) ([]core.Fragment, error) {
	data, err := os.ReadFile(s.SnapshotPath(key))
	if err != nil {
		return nil, err
	}

	var fragments []core.Fragment
	if err := json.Unmarshal(data, &fragments); err != nil {
		return nil, fmt.Errorf("decoding fragment snapshot for %s: %w", key, err)
	}
	return fragments, nil
}
