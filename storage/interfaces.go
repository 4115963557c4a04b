package storage

import (
	"context"

	"github.com/helikon/arxdialog/core"
)

// EntryRepository provides operations for managing index entries.
// Implementations must be thread-safe and support concurrent access.
type EntryRepository interface {
	// AddEntries adds one or more entries to storage.
	// For entries with ID=0, derives the ID from the entry text, so adding
	// identical text overwrites the existing entry instead of duplicating it.
	// Sets InsertedAt timestamp if not already set.
	// Returns the entries with IDs and timestamps populated.
	AddEntries(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error)

	// UpdateEntries updates existing entries.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any entry doesn't exist.
	UpdateEntries(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error)

	// GetEntry retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id core.ID) (*core.Entry, error)

	// GetEntriesByKind retrieves all entries of the given kind,
	// ordered by insertion.
	GetEntriesByKind(ctx context.Context, kind core.EntryKind) ([]*core.Entry, error)

	// GetAllEntries retrieves every entry in the store.
	GetAllEntries(ctx context.Context) ([]*core.Entry, error)

	// CountEntries returns the total number of entries in the store.
	CountEntries(ctx context.Context) (int, error)

	// FindSimilar finds entries similar to the given vector.
	// Returns entries with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.EntryMatch, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
