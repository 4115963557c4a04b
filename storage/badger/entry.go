package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/storage"
)

// EntryRepository implements storage.EntryRepository for BadgerDB.
type EntryRepository struct {
	backend *Backend
}

var _ storage.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(backend *Backend) (*EntryRepository, error) {
	return &EntryRepository{
		backend: backend,
	}, nil
}

// Close releases repository resources.
func (r *EntryRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *EntryRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.EntryMatch, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *EntryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEntries adds one or more entries to storage.
// Entries with ID=0 get a content-derived ID, so committing identical text
// twice overwrites in place rather than duplicating.
func (r *EntryRepository) AddEntries(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if err := core.ValidateEntry(entry); err != nil {
				return err
			}

			if entry.Id == 0 {
				entry.Id = core.IDFromContent(entry.Text)
			}

			if entry.InsertedAt.IsZero() {
				entry.InsertedAt = time.Now().UTC()
			}
			entry.UpdatedAt = entry.InsertedAt

			key := makeEntryKey(entry.Id)
			value := storage.MarshalEntry(entry)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update kind index
			kindKey := makeEntryKindKey(entry.Kind, entry.InsertedAt, entry.Id)
			if err := tx.Set(kindKey, storage.MarshalID(entry.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateEntries updates existing entries.
func (r *EntryRepository) UpdateEntries(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			key := makeEntryKey(entry.Id)
			if _, err := tx.Get(key); err != nil {
				if err == badger.ErrKeyNotFound {
					return storage.ErrNotFound
				}
				return err
			}

			entry.UpdatedAt = time.Now().UTC()
			if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetEntry retrieves a single entry by ID.
func (r *EntryRepository) GetEntry(ctx context.Context, id core.ID) (*core.Entry, error) {
	var entry *core.Entry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntryKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalEntry(val)
			return unmarshalErr
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntriesByKind retrieves all entries of the given kind, ordered by insertion.
func (r *EntryRepository) GetEntriesByKind(ctx context.Context, kind core.EntryKind) ([]*core.Entry, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialEntryKindKey(kind)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	entries := make([]*core.Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := r.GetEntry(ctx, id)
		if err != nil {
			if err == storage.ErrNotFound {
				continue
			}
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetAllEntries retrieves every entry in the store.
func (r *EntryRepository) GetAllEntries(ctx context.Context) ([]*core.Entry, error) {
	var entries []*core.Entry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			if bytes.HasPrefix(item.Key(), []byte(entryKindPrefix)) {
				continue
			}

			err := item.Value(func(val []byte) error {
				entry, err := storage.UnmarshalEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountEntries returns the total number of entries in the store.
func (r *EntryRepository) CountEntries(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if bytes.HasPrefix(iter.Item().Key(), []byte(entryKindPrefix)) {
				continue
			}
			count++
		}
		return nil
	}, false)

	if err != nil {
		return 0, err
	}
	return count, nil
}
