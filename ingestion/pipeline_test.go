package ingestion

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/archivist/ai/mock"
	"github.com/poiesic/archivist/core"
	"github.com/poiesic/archivist/storage"
	"github.com/poiesic/archivist/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) storage.PassageRepository {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return repo
}

func testPassage(talk string, chunk int) *core.Passage {
	return &core.Passage{
		TalkID:       talk,
		ChunkIndex:   chunk,
		Title:        "Talk " + talk,
		Recorded:     "2020-06-01",
		Text:         fmt.Sprintf("Passage %d of %s talks about attention and what notices it.", chunk, talk),
		MediaID:      "vid-" + talk,
		StartSeconds: float64(chunk * 120),
		EndSeconds:   float64(chunk*120 + 115),
	}
}

func TestNewPipeline(t *testing.T) {
	store := newTestStore(t)
	provider := mock.NewMockProvider()

	t.Run("requires store", func(t *testing.T) {
		_, err := NewPipeline(nil, provider)
		assert.ErrorIs(t, err, ErrPassageRepositoryRequired)
	})

	t.Run("requires provider", func(t *testing.T) {
		_, err := NewPipeline(store, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("creates with options", func(t *testing.T) {
		p, err := NewPipeline(store, provider,
			WithPoolSize(2),
			WithBatchSize(4),
			WithEmbeddingModel("nomic-embed-text"),
		)
		require.NoError(t, err)
		defer p.Release()

		assert.Equal(t, 4, p.batchSize)
		assert.Equal(t, "nomic-embed-text", p.embeddingModel)
	})
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("stores passages in input order with vectors", func(t *testing.T) {
		store := newTestStore(t)
		p, err := NewPipeline(store, mock.NewMockProvider(),
			WithBatchSize(2), WithEmbeddingModel("nomic-embed-text"))
		require.NoError(t, err)
		defer p.Release()

		passages := []*core.Passage{
			testPassage("talk-a", 0),
			testPassage("talk-a", 1),
			testPassage("talk-b", 0),
			testPassage("talk-b", 1),
			testPassage("talk-c", 0),
		}

		n, err := p.Ingest(ctx, passages)
		require.NoError(t, err)
		assert.Equal(t, 5, n)

		// Row ids follow input order.
		for row, want := range []string{"talk-a:0", "talk-a:1", "talk-b:0", "talk-b:1", "talk-c:0"} {
			got, err := store.GetByRow(ctx, uint64(row))
			require.NoError(t, err)
			assert.Equal(t, want, got.Ref().String())
			assert.NotEmpty(t, got.Vector)
			assert.NotEmpty(t, got.Checksum)
			assert.Positive(t, got.TokenEstimate)
		}
	})

	t.Run("vectors are unit length", func(t *testing.T) {
		store := newTestStore(t)
		p, err := NewPipeline(store, mock.NewMockProvider())
		require.NoError(t, err)
		defer p.Release()

		_, err = p.Ingest(ctx, []*core.Passage{testPassage("talk-a", 0)})
		require.NoError(t, err)

		got, err := store.GetByRow(ctx, 0)
		require.NoError(t, err)

		var norm float64
		for _, v := range got.Vector {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, norm, 1e-4)
	})

	t.Run("records corpus metadata", func(t *testing.T) {
		store := newTestStore(t)
		p, err := NewPipeline(store, mock.NewMockProvider(),
			WithEmbeddingModel("nomic-embed-text"))
		require.NoError(t, err)
		defer p.Release()

		_, err = p.Ingest(ctx, []*core.Passage{
			testPassage("talk-a", 0),
			testPassage("talk-a", 1),
		})
		require.NoError(t, err)

		info, err := store.Info(ctx)
		require.NoError(t, err)
		require.NotNil(t, info)

		assert.Equal(t, 2, info.Rows)
		assert.Equal(t, 384, info.Dimension)
		assert.Equal(t, "nomic-embed-text", info.EmbeddingModel)
		assert.NotEmpty(t, info.BuiltAt)
	})

	t.Run("normalizes timing labels", func(t *testing.T) {
		store := newTestStore(t)
		p, err := NewPipeline(store, mock.NewMockProvider())
		require.NoError(t, err)
		defer p.Release()

		passage := testPassage("talk-a", 0)
		passage.StartSeconds = 125
		passage.EndSeconds = 240

		_, err = p.Ingest(ctx, []*core.Passage{passage})
		require.NoError(t, err)

		got, err := store.GetByRow(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, "00:02:05", got.StartLabel)
		assert.Equal(t, "00:04:00", got.EndLabel)
	})

	t.Run("rejects invalid passage before embedding", func(t *testing.T) {
		store := newTestStore(t)
		provider := mock.NewMockProvider().(*mock.MockProvider)
		p, err := NewPipeline(store, provider)
		require.NoError(t, err)
		defer p.Release()

		bad := testPassage("talk-a", 0)
		bad.Text = ""

		_, err = p.Ingest(ctx, []*core.Passage{testPassage("talk-b", 0), bad})
		assert.ErrorIs(t, err, core.ErrEmptyText)
		assert.Zero(t, provider.GetMockEmbedder().CallCount())

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		store := newTestStore(t)
		p, err := NewPipeline(store, mock.NewMockProvider())
		require.NoError(t, err)
		defer p.Release()

		_, err = p.Ingest(ctx, nil)
		assert.ErrorIs(t, err, ErrNoPassages)
	})

	t.Run("surfaces embedding failure", func(t *testing.T) {
		store := newTestStore(t)
		provider := mock.NewMockProvider().(*mock.MockProvider)
		provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("embedder down")
		}

		p, err := NewPipeline(store, provider)
		require.NoError(t, err)
		defer p.Release()

		_, err = p.Ingest(ctx, []*core.Passage{testPassage("talk-a", 0)})
		assert.ErrorContains(t, err, "embedder down")

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("surfaces embedding count mismatch", func(t *testing.T) {
		store := newTestStore(t)
		provider := mock.NewMockProvider().(*mock.MockProvider)
		provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{0.1, 0.2}}, nil
		}

		p, err := NewPipeline(store, provider)
		require.NoError(t, err)
		defer p.Release()

		_, err = p.Ingest(ctx, []*core.Passage{testPassage("talk-a", 0), testPassage("talk-a", 1)})
		assert.ErrorIs(t, err, ErrEmbeddingMismatch)
	})
}

func TestEstimateTokens(t *testing.T) {
	assert.Zero(t, estimateTokens(""))
	assert.Equal(t, 1, estimateTokens("hi"))
	assert.Equal(t, 10, estimateTokens("a string of forty characters to count up."[:40]))
}
