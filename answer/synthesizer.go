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

package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/archivist/ai"
	"github.com/poiesic/archivist/core"
	"github.com/poiesic/archivist/search"
)

const (
	// defaultMaxSnippets is how many passages feed the generation
	// context. Smaller context keeps answers crisp.
	defaultMaxSnippets = 6

	// snippetChars trims each passage before it enters the LLM context.
	snippetChars = 750

	// extractiveChars and extractiveMax bound the deterministic
	// fallback, independently of the LLM context budget.
	extractiveChars = 280
	extractiveMax   = 3

	// searchK is how many passages a reference-free Synthesize retrieves.
	searchK = 8

	defaultGenTimeout = 60 * time.Second
)

// Synthesizer composes citation-grounded answers from retrieved
// passages, generating prose via the language model when available and
// falling back to deterministic extractive composition otherwise.
type Synthesizer struct {
	retriever   *search.Retriever
	generator   ai.Generator
	logger      *slog.Logger
	maxSnippets int
	genTimeout  time.Duration
}

// Option configures a Synthesizer.
type Option func(*Synthesizer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMaxSnippets sets how many passages feed the generation context.
// Values below 1 keep the default.
func WithMaxSnippets(n int) Option {
	return func(s *Synthesizer) error {
		if n >= 1 {
			s.maxSnippets = n
		}
		return nil
	}
}

// WithGenTimeout bounds the outbound generation call.
func WithGenTimeout(d time.Duration) Option {
	return func(s *Synthesizer) error {
		if d > 0 {
			s.genTimeout = d
		}
		return nil
	}
}

// NewSynthesizer creates a new synthesizer.
func NewSynthesizer(retriever *search.Retriever, provider ai.AIProvider, opts ...Option) (*Synthesizer, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Synthesizer{
		retriever:   retriever,
		generator:   provider.Generator(),
		logger:      slog.Default().With("component", "synthesizer"),
		maxSnippets: defaultMaxSnippets,
		genTimeout:  defaultGenTimeout,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Synthesize answers a query. Explicit passage ids, when given, are
// resolved directly; otherwise retrieval runs first. An empty resolve
// result falls back to retrieval rather than an empty answer.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, explicitIDs []string) (*core.Answer, error) {
	var passages []*core.ScoredPassage
	var err error

	if len(explicitIDs) > 0 {
		passages, err = s.retriever.Resolve(ctx, explicitIDs)
		if err != nil {
			return nil, err
		}
	}
	if len(passages) == 0 {
		passages, err = s.retriever.Search(ctx, query, searchK)
		if err != nil {
			return nil, err
		}
	}

	return s.Compose(ctx, query, passages)
}

// Compose turns an already-retrieved passage list into an answer with
// citations and a rendered sources block.
func (s *Synthesizer) Compose(ctx context.Context, query string, passages []*core.ScoredPassage) (*core.Answer, error) {
	if len(passages) == 0 {
		return &core.Answer{
			Text:      noPassagesAnswer,
			Mode:      core.AnswerModeEmpty,
			Citations: []core.Citation{},
		}, nil
	}

	evidence := passages
	if len(evidence) > s.maxSnippets {
		evidence = evidence[:s.maxSnippets]
	}

	text, mode := s.generate(ctx, query, evidence)
	if text == "" {
		text = s.extractive(evidence)
		mode = core.AnswerModeExtractive
	}
	if text == "" {
		return &core.Answer{
			Text:      noPassagesAnswer,
			Mode:      core.AnswerModeEmpty,
			Citations: []core.Citation{},
		}, nil
	}

	citations := buildCitations(evidence)
	return &core.Answer{
		Text:      text,
		Mode:      mode,
		Citations: citations,
		Sources:   renderSources(citations),
	}, nil
}

// generate attempts LLM synthesis. Any failure or empty completion
// returns "" so the caller falls back to extractive composition.
func (s *Synthesizer) generate(ctx context.Context, query string, evidence []*core.ScoredPassage) (string, core.AnswerMode) {
	userPrompt := fmt.Sprintf(
		"Question: %s\n\nPassages (each labeled with date/title/part):\n\n%s\n\nWrite a 2-5 sentence answer grounded ONLY in the passages above.",
		query, formatContext(evidence, snippetChars))

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	text, err := s.generator.Complete(genCtx, systemPrompt, userPrompt)
	if err != nil {
		s.logger.Warn("generation failed, falling back to extractive answer", "err", err)
		return "", core.AnswerModeExtractive
	}
	if text == "" {
		s.logger.Debug("empty completion, falling back to extractive answer")
		return "", core.AnswerModeExtractive
	}
	return text, core.AnswerModeGenerated
}

// extractive concatenates trimmed excerpts into one short paragraph.
// Returns "" when no usable text remains after trimming.
func (s *Synthesizer) extractive(evidence []*core.ScoredPassage) string {
	excerpts := make([]string, 0, extractiveMax)
	for _, sp := range evidence {
		if len(excerpts) >= extractiveMax {
			break
		}
		t := trimToSentence(sp.Passage.Text, extractiveChars)
		if t != "" {
			excerpts = append(excerpts, t)
		}
	}
	if len(excerpts) == 0 {
		return ""
	}

	joined := strings.TrimRight(strings.Join(excerpts, " "), " ,;—")
	if !strings.HasSuffix(joined, ".") && !strings.HasSuffix(joined, "!") && !strings.HasSuffix(joined, "?") && !strings.HasSuffix(joined, "…") {
		joined += "."
	}
	return joined
}
