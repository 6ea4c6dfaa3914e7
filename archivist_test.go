package archivist

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/archivist/ai/mock"
	"github.com/poiesic/archivist/core"
	"github.com/poiesic/archivist/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Run("empty path serves degraded", func(t *testing.T) {
		s, err := Open("", WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		defer s.Close()

		assert.True(t, s.Degraded())

		status := s.Status(context.Background())
		assert.False(t, status.IndexLoaded)
		assert.False(t, status.StoreLoaded)
	})

	t.Run("missing path serves degraded", func(t *testing.T) {
		s, err := Open(filepath.Join(t.TempDir(), "no_such_corpus"),
			WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		defer s.Close()

		assert.True(t, s.Degraded())
	})

	t.Run("existing empty corpus loads", func(t *testing.T) {
		s, err := Open(t.TempDir(), WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		defer s.Close()

		assert.False(t, s.Degraded())

		status := s.Status(context.Background())
		assert.True(t, status.IndexLoaded)
		assert.True(t, status.StoreLoaded)
		assert.Zero(t, status.IndexSize)
		assert.Zero(t, status.StoreRows)
	})
}

func TestOpen_InconsistentCorpus(t *testing.T) {
	dir := t.TempDir()

	// Write a corpus whose metadata disagrees with its rows.
	backend, err := badger.OpenBackend(dir, false)
	require.NoError(t, err)
	store, err := badger.NewPassageRepository(backend)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.AddPassages(ctx, &core.Passage{
		TalkID: "talk-a", ChunkIndex: 0, Title: "t", Text: "some text",
		Vector:       []float32{1, 0, 0},
		StartSeconds: -1, EndSeconds: -1,
	})
	require.NoError(t, err)
	require.NoError(t, store.SetInfo(ctx, &core.CorpusInfo{Rows: 7, Dimension: 3}))
	require.NoError(t, store.Close())
	require.NoError(t, backend.Close())

	_, err = Open(dir, WithProvider(mock.NewMockProvider()))
	assert.ErrorIs(t, err, ErrCorpusInconsistent)
}

func TestService_DegradedSearch(t *testing.T) {
	s, err := Open("", WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer s.Close()

	results, err := s.Search(context.Background(), "what is stillness?", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		assert.True(t, strings.HasPrefix(r.Passage.TalkID, "sample-"))
		assert.Zero(t, r.Score)
	}
}

func TestService_EmptyCorpusAnswer(t *testing.T) {
	s, err := Open(t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer s.Close()

	answer, err := s.Synthesize(context.Background(), "what is presence?", nil)
	require.NoError(t, err)

	assert.Equal(t, core.AnswerModeEmpty, answer.Mode)
	assert.Equal(t, "No relevant passages were found in the talks archive for this query.", answer.Text)
	assert.Empty(t, answer.Citations)
}

func TestService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// Build a small corpus, then reopen so the index loads from storage.
	s, err := Open(dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)

	pipeline, err := s.NewIngestionPipeline()
	require.NoError(t, err)

	passages := []*core.Passage{
		{
			TalkID: "talk-a", ChunkIndex: 0, Title: "On Attention", Recorded: "2017-02-19",
			Text:    "Attention is not something you aim. It is what you already are, noticing.",
			MediaID: "vid-a", StartSeconds: 62, EndSeconds: 130,
		},
		{
			TalkID: "talk-a", ChunkIndex: 1, Title: "On Attention", Recorded: "2017-02-19",
			Text:    "When the effort to pay attention drops, attention remains.",
			MediaID: "vid-a", StartSeconds: 130, EndSeconds: 245,
		},
		{
			TalkID: "talk-b", ChunkIndex: 0, Title: "The Quiet Mind", Recorded: "2019-11-02",
			Text:         "A quiet mind is not an empty mind. Thought still moves, but nothing grips it.",
			StartSeconds: -1, EndSeconds: -1,
		},
	}

	n, err := pipeline.Ingest(ctx, passages)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	pipeline.Release()
	require.NoError(t, s.Close())

	s, err = Open(dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer s.Close()

	t.Run("status reflects loaded corpus", func(t *testing.T) {
		status := s.Status(ctx)
		assert.True(t, status.IndexLoaded)
		assert.True(t, status.StoreLoaded)
		assert.Equal(t, 3, status.IndexSize)
		assert.Equal(t, 3, status.StoreRows)
	})

	t.Run("info carries build metadata", func(t *testing.T) {
		info, err := s.Info(ctx)
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, 3, info.Rows)
		assert.Positive(t, info.Dimension)
	})

	t.Run("search returns stored passages", func(t *testing.T) {
		results, err := s.Search(ctx, "what happens to attention?", 3)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.LessOrEqual(t, len(results), 3)

		seen := make(map[string]bool)
		for _, r := range results {
			ref := r.Passage.Ref().String()
			assert.False(t, seen[ref], "duplicate passage %s", ref)
			seen[ref] = true
		}
	})

	t.Run("synthesize answers with citations", func(t *testing.T) {
		answer, err := s.Synthesize(ctx, "what is attention?", nil)
		require.NoError(t, err)

		assert.Equal(t, core.AnswerModeGenerated, answer.Mode)
		assert.NotEmpty(t, answer.Text)
		assert.NotEmpty(t, answer.Citations)
		assert.NotEmpty(t, answer.Sources)
	})

	t.Run("synthesize over explicit refs", func(t *testing.T) {
		answer, err := s.Synthesize(ctx, "what is a quiet mind?", []string{"talk-b:0"})
		require.NoError(t, err)

		assert.Equal(t, core.AnswerModeGenerated, answer.Mode)
		require.Len(t, answer.Citations, 1)
		assert.Equal(t, "talk-b", answer.Citations[0].TalkID)
	})
}
