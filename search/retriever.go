package search

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/poiesic/archivist/ai"
	"github.com/poiesic/archivist/core"
	"github.com/poiesic/archivist/storage"
	"github.com/poiesic/archivist/vecindex"
)

const (
	// minResults and maxResults bound the requested k.
	minResults = 1
	maxResults = 20

	defaultPerTalkCap      = 3
	defaultOverfetchFactor = 4
	defaultOverfetchFloor  = 16
	defaultEmbedTimeout    = 30 * time.Second
)

// Retriever turns a query into a deduplicated, per-talk-capped, ranked
// list of passages. With a nil index or store it runs in degraded mode,
// serving a fixed sample result instead of failing requests.
type Retriever struct {
	index           *vecindex.Index
	store           storage.PassageRepository
	embedder        ai.Embedder
	logger          *slog.Logger
	perTalkCap      int
	overfetchFactor int
	embedTimeout    time.Duration
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithPerTalkCap sets the maximum passages one talk may contribute to a
// result set. Values below 1 keep the default.
func WithPerTalkCap(n int) Option {
	return func(r *Retriever) error {
		if n >= 1 {
			r.perTalkCap = n
		}
		return nil
	}
}

// WithOverfetchFactor sets the candidate multiplier used before
// deduplication and capping. Values below 3 keep the default.
func WithOverfetchFactor(factor int) Option {
	return func(r *Retriever) error {
		if factor >= 3 {
			r.overfetchFactor = factor
		}
		return nil
	}
}

// WithEmbedTimeout bounds the outbound embedding call.
func WithEmbedTimeout(d time.Duration) Option {
	return func(r *Retriever) error {
		if d > 0 {
			r.embedTimeout = d
		}
		return nil
	}
}

// NewRetriever creates a new retriever. A nil index or store is
// accepted and puts the retriever into degraded mode; a nil provider
// is an error.
func NewRetriever(
	index *vecindex.Index,
	store storage.PassageRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Retriever, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		index:           index,
		store:           store,
		embedder:        provider.Embedder(),
		logger:          slog.Default().With("component", "retriever"),
		perTalkCap:      defaultPerTalkCap,
		overfetchFactor: defaultOverfetchFactor,
		embedTimeout:    defaultEmbedTimeout,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Degraded reports whether the retriever is serving fixed sample
// results instead of real corpus matches.
func (r *Retriever) Degraded() bool {
	return r.index == nil || r.store == nil
}

// Search returns up to k passages ranked by similarity.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]*core.ScoredPassage, error) {
	return r.SearchWithMonitor(ctx, query, k, nil)
}

// SearchWithMonitor returns up to k passages ranked by similarity,
// invoking the monitor at each stage. Embedding or index failures
// degrade to the fixed sample result rather than failing the request.
func (r *Retriever) SearchWithMonitor(ctx context.Context, query string, k int, monitor RetrievalMonitor) ([]*core.ScoredPassage, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	if k < minResults {
		k = minResults
	}
	if k > maxResults {
		k = maxResults
	}

	if r.Degraded() {
		r.logger.Warn("serving degraded results", "reason", "index or store not loaded")
		monitor.Degraded("index or store not loaded")
		results := samplePassages()
		monitor.Finish(results)
		return results, nil
	}

	// 1. Embed the query.
	embedCtx, cancel := context.WithTimeout(ctx, r.embedTimeout)
	defer cancel()
	vector, err := r.embedder.EmbedText(embedCtx, query)
	if err != nil || len(vector) == 0 {
		r.logger.Warn("embedding failed, serving degraded results", "query", query, "err", err)
		monitor.Degraded("embedding unavailable")
		results := samplePassages()
		monitor.Finish(results)
		return results, nil
	}
	vecindex.Normalize(vector)
	monitor.AfterEmbedding(len(vector))

	// 2. Over-fetch nearest neighbors to leave headroom for
	// deduplication and per-talk capping.
	fetch := k * r.overfetchFactor
	if fetch < defaultOverfetchFloor {
		fetch = defaultOverfetchFloor
	}

	hits, err := r.index.Search(ctx, vector, fetch)
	if err != nil {
		r.logger.Warn("index search failed, serving degraded results", "err", err)
		monitor.Degraded("index search failed")
		results := samplePassages()
		monitor.Finish(results)
		return results, nil
	}

	rows := make([]uint64, 0, len(hits))
	for _, h := range hits {
		rows = append(rows, h.Row)
	}
	monitor.AfterIndexSearch(rows)

	// 3. Map rows to passages, discarding rows the store doesn't have.
	candidates := make([]*core.ScoredPassage, 0, len(hits))
	lookedUp := make([]*core.Passage, 0, len(hits))
	for _, h := range hits {
		p, err := r.store.GetByRow(ctx, h.Row)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				r.logger.Debug("index row missing from store", "row", h.Row)
				continue
			}
			return nil, err
		}
		lookedUp = append(lookedUp, p)
		candidates = append(candidates, &core.ScoredPassage{Passage: p, Score: h.Score})
	}
	monitor.AfterStoreLookup(lookedUp)

	// 4-6. Dedup, cap per talk, truncate to k.
	results := diversify(candidates, r.perTalkCap, k)
	monitor.Finish(results)
	return results, nil
}

// diversify applies the result-set invariants in order: dedup by
// (talk, chunk) preserving first-seen rank, cap entries per talk, and
// truncate to k only after the full candidate set has been considered.
func diversify(candidates []*core.ScoredPassage, perTalkCap, k int) []*core.ScoredPassage {
	seen := make(map[core.Ref]bool)
	perTalk := make(map[string]int)

	results := make([]*core.ScoredPassage, 0, k)
	for _, c := range candidates {
		ref := c.Passage.Ref()
		if seen[ref] {
			continue
		}
		seen[ref] = true

		if perTalk[c.Passage.TalkID] >= perTalkCap {
			continue
		}
		perTalk[c.Passage.TalkID]++

		results = append(results, c)
	}

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Resolve looks up explicit passage identifiers, accepting either a
// numeric row id or a "talk_id:chunk_index" reference. Malformed or
// missing identifiers are skipped; order is preserved and duplicates
// are dropped. An empty result is not an error; callers fall back to
// Search.
func (r *Retriever) Resolve(ctx context.Context, ids []string) ([]*core.ScoredPassage, error) {
	if r.Degraded() {
		return nil, nil
	}

	seen := make(map[core.Ref]bool)
	results := make([]*core.ScoredPassage, 0, len(ids))

	for _, id := range ids {
		var p *core.Passage
		var err error

		if row, convErr := strconv.ParseUint(id, 10, 64); convErr == nil {
			p, err = r.store.GetByRow(ctx, row)
		} else {
			ref, parseErr := core.ParseRef(id)
			if parseErr != nil {
				r.logger.Debug("skipping malformed passage id", "id", id)
				continue
			}
			p, err = r.store.GetByRef(ctx, ref)
		}

		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				r.logger.Debug("skipping unknown passage id", "id", id)
				continue
			}
			return nil, err
		}

		ref := p.Ref()
		if seen[ref] {
			continue
		}
		seen[ref] = true

		results = append(results, &core.ScoredPassage{Passage: p, Score: 1})
	}

	return results, nil
}
