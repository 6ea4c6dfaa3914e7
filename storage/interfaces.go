package storage

import (
	"context"

	"github.com/poiesic/archivist/core"
)

// PassageRepository provides operations for managing the passage corpus.
// Implementations must be thread-safe and support concurrent access.
type PassageRepository interface {
	// AddPassages adds one or more passages to storage, assigning dense
	// sequential row ids starting at the current row count. Validates and
	// normalizes each passage before writing.
	// Returns the passages with RowID populated.
	AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error)

	// GetByRow retrieves a single passage by its row id.
	// Returns ErrNotFound if the row doesn't exist.
	GetByRow(ctx context.Context, row uint64) (*core.Passage, error)

	// GetByRef retrieves a single passage by its (talk, chunk) reference.
	// Returns ErrNotFound if no passage matches.
	GetByRef(ctx context.Context, ref core.Ref) (*core.Passage, error)

	// Count returns the number of passages stored.
	Count(ctx context.Context) (uint64, error)

	// ForEach visits every passage in row order (0..n-1).
	// Iteration stops at the first error returned by fn.
	ForEach(ctx context.Context, fn func(p *core.Passage) error) error

	// Info retrieves the corpus metadata record.
	// Returns ErrNotFound if no corpus has been ingested yet.
	Info(ctx context.Context) (*core.CorpusInfo, error)

	// SetInfo writes the corpus metadata record, replacing any previous one.
	SetInfo(ctx context.Context, info *core.CorpusInfo) error

	// Close closes the storage backend and releases resources.
	Close() error
}
