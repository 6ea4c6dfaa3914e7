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

package archivist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/archivist/ai"
	"github.com/poiesic/archivist/ai/openai"
	"github.com/poiesic/archivist/answer"
	"github.com/poiesic/archivist/core"
	"github.com/poiesic/archivist/ingestion"
	"github.com/poiesic/archivist/search"
	"github.com/poiesic/archivist/storage"
	"github.com/poiesic/archivist/storage/badger"
	"github.com/poiesic/archivist/vecindex"
)

// Service bundles the corpus store, the vector index, retrieval, and
// answer synthesis behind one handle. A Service opened without a usable
// corpus database still serves queries in degraded mode, answering from
// fixed sample passages.
type Service struct {
	backend     *badger.Backend
	store       storage.PassageRepository
	index       *vecindex.Index
	retriever   *search.Retriever
	synthesizer *answer.Synthesizer
	provider    ai.AIProvider
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
}

// WithAIConfig sets the AI provider configuration used when no explicit
// provider is supplied.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider supplies an AI provider directly, bypassing provider
// construction from config. Useful for tests.
func WithProvider(provider ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// Open creates a Service over the corpus database at filePath. An empty
// or missing path yields a degraded service rather than an error; a
// present but inconsistent corpus (a stored passage without its vector)
// fails here so the fault surfaces at startup, not at query time.
func Open(filePath string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default().With("component", "archivist")

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	s := &Service{
		provider: provider,
		logger:   logger,
	}

	if filePath == "" {
		logger.Warn("no corpus database configured, serving sample answers")
		return s.finish()
	}
	if _, err := os.Stat(filePath); err != nil {
		logger.Warn("corpus database not found, serving sample answers", "path", filePath)
		return s.finish()
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		provider.Close()
		return nil, err
	}

	store, err := badger.NewPassageRepository(backend)
	if err != nil {
		backend.Close()
		provider.Close()
		return nil, err
	}

	index, err := vecindex.Build(context.Background(), store)
	if err != nil {
		store.Close()
		backend.Close()
		provider.Close()
		return nil, err
	}

	if err := checkCorpus(store, index); err != nil {
		index.Close()
		store.Close()
		backend.Close()
		provider.Close()
		return nil, err
	}

	s.backend = backend
	s.store = store
	s.index = index
	return s.finish()
}

// checkCorpus compares the stored build metadata against what actually
// loaded. A disagreement means the corpus was built against a different
// snapshot and must be rebuilt, not served.
func checkCorpus(store storage.PassageRepository, index *vecindex.Index) error {
	ctx := context.Background()

	info, err := store.Info(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Pre-metadata corpus, nothing to check against.
			return nil
		}
		return err
	}

	if info.Rows != index.Size() {
		return fmt.Errorf("%w: metadata says %d rows, index loaded %d",
			ErrCorpusInconsistent, info.Rows, index.Size())
	}
	if index.Size() > 0 && info.Dimension != index.Dimension() {
		return fmt.Errorf("%w: metadata says dimension %d, vectors are %d",
			ErrCorpusInconsistent, info.Dimension, index.Dimension())
	}
	return nil
}

// finish wires retrieval and synthesis over whatever resources were
// opened. With a nil store and index the retriever runs degraded.
func (s *Service) finish() (*Service, error) {
	retriever, err := search.NewRetriever(s.index, s.store, s.provider)
	if err != nil {
		s.Close()
		return nil, err
	}

	synthesizer, err := answer.NewSynthesizer(retriever, s.provider)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.retriever = retriever
	s.synthesizer = synthesizer
	return s, nil
}

// Search returns the k best passages for the query.
func (s *Service) Search(ctx context.Context, query string, k int) ([]*core.ScoredPassage, error) {
	return s.retriever.Search(ctx, query, k)
}

// Synthesize answers a query, optionally over explicit passage ids.
func (s *Service) Synthesize(ctx context.Context, query string, explicitIDs []string) (*core.Answer, error) {
	return s.synthesizer.Synthesize(ctx, query, explicitIDs)
}

// Degraded reports whether queries are served from sample passages.
func (s *Service) Degraded() bool {
	return s.retriever == nil || s.retriever.Degraded()
}

// Status reports the runtime health of the corpus resources.
func (s *Service) Status(ctx context.Context) *core.Status {
	status := &core.Status{}

	if s.index != nil {
		status.IndexLoaded = true
		status.IndexSize = s.index.Size()
	}
	if s.store != nil {
		count, err := s.store.Count(ctx)
		if err != nil {
			s.logger.Error("error counting passages", "err", err)
		} else {
			status.StoreLoaded = true
			status.StoreRows = int(count)
		}
	}

	return status
}

// Info returns the corpus build metadata, or nil when there is no store
// or no build record.
func (s *Service) Info(ctx context.Context) (*core.CorpusInfo, error) {
	if s.store == nil {
		return nil, nil
	}
	info, err := s.store.Info(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return info, nil
}

// PassageRepository exposes the underlying passage store.
// Nil in degraded mode.
func (s *Service) PassageRepository() storage.PassageRepository {
	return s.store
}

// NewIngestionPipeline creates a corpus build pipeline over this
// service's store and provider.
func (s *Service) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.store, s.provider, opts...)
}

// Close releases all resources. Safe on a degraded service.
func (s *Service) Close() error {
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
		}
	}

	if s.index != nil {
		if err := s.index.Close(); err != nil {
			s.logger.Error("error closing vector index", "err", err)
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("error closing passage store", "err", err)
			return err
		}
	}

	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}
