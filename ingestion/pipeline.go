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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/archivist/ai"
	"github.com/poiesic/archivist/core"
	"github.com/poiesic/archivist/storage"
	"github.com/poiesic/archivist/vecindex"
)

// defaultBatchSize is how many passage texts go to the embedder per
// request. Kept modest so a single slow batch does not stall the pool.
const defaultBatchSize = 32

// Pipeline orchestrates a corpus build: it validates passages, embeds
// their text in concurrent batches, and writes them to storage in
// input order so row ids follow corpus order.
type Pipeline struct {
	store          storage.PassageRepository
	embedder       ai.Embedder
	embeddingModel string
	pool           *ants.Pool
	batchSize      int
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many texts each embedding request carries.
// Values below 1 keep the default.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) error {
		if n >= 1 {
			p.batchSize = n
		}
		return nil
	}
}

// WithEmbeddingModel records the model name in the corpus metadata.
func WithEmbeddingModel(name string) Option {
	return func(p *Pipeline) error {
		p.embeddingModel = name
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new corpus build pipeline.
func NewPipeline(
	store storage.PassageRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrPassageRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:     store,
		embedder:  provider.Embedder(),
		pool:      pool,
		batchSize: defaultBatchSize,
		logger:    slog.Default().With("component", "ingestion"),
	}

	// Apply options
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest validates, embeds, and stores the given passages, then records
// corpus metadata. Passages are stored in input order. Returns the
// number of passages written.
//
// Ingest is not safe for concurrent calls against the same store: row
// ordering is only meaningful for a single sequential build.
func (p *Pipeline) Ingest(ctx context.Context, passages []*core.Passage) (int, error) {
	if len(passages) == 0 {
		return 0, ErrNoPassages
	}

	// Validate and enrich up front so a bad passage fails the build
	// before any embedding work is spent.
	for i, passage := range passages {
		if err := core.ValidatePassage(passage); err != nil {
			return 0, fmt.Errorf("passage %d (%s): %w", i, passage.Ref(), err)
		}
		if err := passage.NormalizeTiming(); err != nil {
			return 0, fmt.Errorf("passage %d (%s): %w", i, passage.Ref(), err)
		}
		passage.Checksum = core.ChecksumText(passage.Text)
		passage.TokenEstimate = estimateTokens(passage.Text)
	}

	if err := p.embedAll(ctx, passages); err != nil {
		return 0, err
	}

	p.logger.Info("writing passages", "count", len(passages))
	added, err := p.store.AddPassages(ctx, passages...)
	if err != nil {
		return 0, err
	}

	rows, err := p.store.Count(ctx)
	if err != nil {
		return 0, err
	}

	info := &core.CorpusInfo{
		Rows:           int(rows),
		Dimension:      len(passages[0].Vector),
		EmbeddingModel: p.embeddingModel,
		BuiltAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.store.SetInfo(ctx, info); err != nil {
		return 0, err
	}

	return len(added), nil
}

// embedAll embeds every passage text in concurrent batches, assigning
// normalized vectors back into their original slots.
func (p *Pipeline) embedAll(ctx context.Context, passages []*core.Passage) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(passages); start += p.batchSize {
		end := start + p.batchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[start:end]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			texts := make([]string, len(batch))
			for i, passage := range batch {
				texts[i] = passage.Text
			}

			vectors, err := p.embedder.EmbedTexts(ctx, texts)
			if err != nil {
				setErr(err)
				return
			}
			if len(vectors) != len(batch) {
				setErr(fmt.Errorf("%w: expected %d, received %d",
					ErrEmbeddingMismatch, len(batch), len(vectors)))
				return
			}

			for i, vector := range vectors {
				vecindex.Normalize(vector)
				batch[i].Vector = vector
			}
		})
		if submitErr != nil {
			wg.Done()
			setErr(submitErr)
			break
		}
	}

	wg.Wait()
	return firstErr
}

// estimateTokens is a cheap length heuristic, roughly four characters
// per token for English prose. Stored for budget decisions, not billing.
func estimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	estimate := n / 4
	if n > 0 && estimate == 0 {
		estimate = 1
	}
	return estimate
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
