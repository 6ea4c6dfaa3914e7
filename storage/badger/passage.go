package badger

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/archivist/core"
	"github.com/poiesic/archivist/storage"
)

// addTxnSize caps how many passages go into a single write transaction.
// Badger rejects transactions beyond a fraction of its memtable, so a
// large corpus is committed in slices rather than one oversized txn.
const addTxnSize = 128

// PassageRepository implements storage.PassageRepository for BadgerDB.
//
// Row ids are dense and sequential: the next row to assign always equals
// the current row count. Assignment happens under a mutex so concurrent
// AddPassages calls cannot produce gaps or collisions.
type PassageRepository struct {
	backend *Backend

	mu      sync.Mutex
	nextRow uint64
}

var _ storage.PassageRepository = (*PassageRepository)(nil)

// NewPassageRepository creates a new PassageRepository.
// It scans for the highest existing row to resume dense id assignment.
func NewPassageRepository(backend *Backend) (*PassageRepository, error) {
	repo := &PassageRepository{backend: backend}

	err := backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(passageRowPrefix + ":")
		// Seek past the last possible row key, then read backwards.
		seek := append(append([]byte{}, prefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		iter.Seek(seek)
		if iter.ValidForPrefix(prefix) {
			key := iter.Item().Key()
			repo.nextRow = binary.BigEndian.Uint64(key[len(prefix):]) + 1
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *PassageRepository) Close() error {
	return nil
}

// AddPassages adds one or more passages to storage, assigning dense
// sequential row ids. A passage whose (talk, chunk) reference already
// exists, in storage or earlier in the same batch, is rejected with
// ErrDuplicateKey before anything is written.
func (r *PassageRepository) AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error) {
	for _, p := range passages {
		if err := core.ValidatePassage(p); err != nil {
			return nil, err
		}
		if err := p.NormalizeTiming(); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkDuplicateRefs(passages); err != nil {
		return nil, err
	}

	// Commit in slices: one transaction over a whole corpus can exceed
	// badger's transaction size limit.
	for start := 0; start < len(passages); start += addTxnSize {
		end := start + addTxnSize
		if end > len(passages) {
			end = len(passages)
		}
		chunk := passages[start:end]

		err := r.backend.WithTx(func(tx *badger.Txn) error {
			row := r.nextRow
			for _, p := range chunk {
				p.RowID = row

				rowKey := makePassageRowKey(p.RowID)
				if err := tx.Set(rowKey, storage.MarshalPassage(p)); err != nil {
					return err
				}

				// Reference index for (talk, chunk) lookups
				refKey := makePassageRefKey(p.Ref())
				if err := tx.Set(refKey, storage.MarshalRowID(p.RowID)); err != nil {
					return err
				}

				row++
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return nil, err
		}

		r.nextRow += uint64(len(chunk))
	}

	return passages, nil
}

// checkDuplicateRefs rejects a batch containing a (talk, chunk)
// reference that is already stored or repeated within the batch.
// Caller holds r.mu.
func (r *PassageRepository) checkDuplicateRefs(passages []*core.Passage) error {
	seen := make(map[core.Ref]struct{}, len(passages))

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, p := range passages {
			ref := p.Ref()
			if _, dup := seen[ref]; dup {
				return fmt.Errorf("%s: %w", ref, storage.ErrDuplicateKey)
			}
			seen[ref] = struct{}{}

			_, err := tx.Get(makePassageRefKey(ref))
			if err == nil {
				return fmt.Errorf("%s: %w", ref, storage.ErrDuplicateKey)
			}
			if err != badger.ErrKeyNotFound {
				return err
			}
		}
		return nil
	}, false)
}

// GetByRow retrieves a single passage by its row id.
func (r *PassageRepository) GetByRow(ctx context.Context, row uint64) (*core.Passage, error) {
	var result *core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPassage(tx, makePassageRowKey(row))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetByRef retrieves a single passage by its (talk, chunk) reference.
func (r *PassageRepository) GetByRef(ctx context.Context, ref core.Ref) (*core.Passage, error) {
	var result *core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makePassageRefKey(ref))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var row uint64
		if err := item.Value(func(val []byte) error {
			var err error
			row, err = storage.UnmarshalRowID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readPassage(tx, makePassageRowKey(row))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// Count returns the number of passages stored.
func (r *PassageRepository) Count(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextRow, nil
}

// ForEach visits every passage in row order.
func (r *PassageRepository) ForEach(ctx context.Context, fn func(p *core.Passage) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(passageRowPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !bytes.HasPrefix(iter.Item().Key(), prefix) {
				break
			}

			var p *core.Passage
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				p, err = storage.UnmarshalPassage(val)
				return err
			}); err != nil {
				return err
			}
			if p == nil {
				continue
			}
			if err := fn(p); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Info retrieves the corpus metadata record.
func (r *PassageRepository) Info(ctx context.Context) (*core.CorpusInfo, error) {
	var result *core.CorpusInfo
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCorpusInfoKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalCorpusInfo(val)
			return err
		})
	}, false)
	return result, err
}

// SetInfo writes the corpus metadata record.
func (r *PassageRepository) SetInfo(ctx context.Context, info *core.CorpusInfo) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCorpusInfoKey(), storage.MarshalCorpusInfo(info)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readPassage reads a passage from the transaction.
// Returns nil without error when the key is absent.
func readPassage(tx *badger.Txn, key []byte) (*core.Passage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var passage *core.Passage
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		passage, unmarshalErr = storage.UnmarshalPassage(val)
		return unmarshalErr
	})
	return passage, err
}
