// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vecindex

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hupe1980/vecgo"
	"github.com/hupe1980/vecgo/blobstore"
	"github.com/hupe1980/vecgo/distance"
	"github.com/poiesic/archivist/core"
	"github.com/poiesic/archivist/storage"
)

// Hit is a single nearest-neighbor result. Score is the dot product
// between the query and the stored vector; with unit vectors it equals
// cosine similarity.
type Hit struct {
	Row   uint64
	Score float32
}

// Index wraps a vecgo engine over the passage corpus. Each indexed
// vector carries its storage row id as payload, so search hits resolve
// to passages with a point lookup.
type Index struct {
	mu        sync.RWMutex
	db        *vecgo.DB
	dimension int
	size      int
	logger    *slog.Logger
}

// New creates an empty index for vectors of the given dimension.
// The engine is opened on the first Add, since vecgo needs a concrete
// dimension to create an index and an empty corpus has none to search.
func New(dimension int) (*Index, error) {
	return &Index{
		dimension: dimension,
		logger:    slog.Default().With("component", "vecindex"),
	}, nil
}

// Build constructs an index from every passage in the store.
// The store is the single source of truth: vectors are read back from
// the persisted rows so the index and store always describe the same
// snapshot. A passage without a vector, or with a vector of the wrong
// dimension, fails the build.
func Build(ctx context.Context, store storage.PassageRepository) (*Index, error) {
	var idx *Index

	err := store.ForEach(ctx, func(p *core.Passage) error {
		if len(p.Vector) == 0 {
			return fmt.Errorf("row %d (%s): %w", p.RowID, p.Ref(), ErrMissingVector)
		}
		if idx == nil {
			var err error
			idx, err = New(len(p.Vector))
			if err != nil {
				return err
			}
		}
		return idx.Add(ctx, p.RowID, p.Vector)
	})
	if err != nil {
		return nil, err
	}

	if idx == nil {
		// Empty store still gets a usable (empty) index.
		return New(0)
	}

	idx.logger.Info("vector index built", "rows", idx.Size(), "dimension", idx.Dimension())
	return idx, nil
}

// open creates the backing engine. The index is rebuilt from the
// passage store at startup, so it lives in an in-memory blob store
// rather than its own on-disk directory. Caller holds idx.mu.
func (idx *Index) open(ctx context.Context) error {
	db, err := vecgo.Open(ctx, vecgo.Remote(blobstore.NewMemoryStore()),
		vecgo.Create(idx.dimension, vecgo.MetricDot),
		vecgo.WithLogger(idx.logger),
	)
	if err != nil {
		return err
	}
	idx.db = db
	return nil
}

// Add inserts a vector with its row id payload.
func (idx *Index) Add(ctx context.Context, row uint64, vector []float32) error {
	if len(vector) != idx.dimension {
		return fmt.Errorf("row %d: got %d, want %d: %w", row, len(vector), idx.dimension, ErrDimensionMismatch)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.db == nil {
		if err := idx.open(ctx); err != nil {
			return err
		}
	}

	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, row)

	rec := vecgo.NewRecord(vector).WithPayload(payload).Build()
	if _, err := idx.db.InsertRecord(ctx, rec); err != nil {
		return err
	}
	idx.size++
	return nil
}

// Search returns up to n nearest rows by dot-product similarity,
// highest first. n is clamped to the index size.
func (idx *Index) Search(ctx context.Context, query []float32, n int) ([]Hit, error) {
	if len(query) == 0 {
		return nil, ErrEmptyQuery
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	// An empty index matches nothing regardless of query shape.
	if idx.size == 0 || n <= 0 {
		return nil, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("query: got %d, want %d: %w", len(query), idx.dimension, ErrDimensionMismatch)
	}
	if n > idx.size {
		n = idx.size
	}

	// Only the row id payload is needed; skip vector and metadata
	// materialization.
	results, err := idx.db.Search(ctx, query, n, vecgo.WithoutData(), vecgo.WithPayload())
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(results))
	for _, c := range results {
		if len(c.Payload) != 8 {
			return nil, fmt.Errorf("candidate %d: missing row payload", c.ID)
		}
		hits = append(hits, Hit{Row: binary.BigEndian.Uint64(c.Payload), Score: c.Score})
	}
	return hits, nil
}

// Size returns the number of indexed vectors.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.size
}

// Dimension returns the vector dimension the index accepts.
func (idx *Index) Dimension() int {
	return idx.dimension
}

// Close releases the underlying engine.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.db == nil {
		return nil
	}
	return idx.db.Close()
}

// Normalize L2-normalizes a vector in place so dot product equals
// cosine similarity. Returns false for a zero vector.
func Normalize(v []float32) bool {
	return distance.NormalizeL2InPlace(v)
}
