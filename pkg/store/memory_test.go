package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrag/internal/models"
	"stockrag/pkg/store"
)

func chunk(id, title, content string, embedding []float32) models.Chunk {
	return models.Chunk{
		ID:        id,
		Title:     title,
		Content:   content,
		Embedding: embedding,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryStoreEmptyQuery(t *testing.T) {
	s := store.NewMemoryStore()

	passages, err := s.QuerySimilar(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestMemoryStoreRanksIdenticalVectorFirst(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	err := s.InsertChunks(ctx, []models.Chunk{
		chunk("a", "Article A", "about rates", []float32{1, 0, 0}),
		chunk("b", "Article B", "about chips", []float32{0, 1, 0}),
		chunk("c", "Article C", "about oil", []float32{0.5, 0.5, 0}),
	})
	require.NoError(t, err)

	passages, err := s.QuerySimilar(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, passages, 3)

	assert.Equal(t, "Article A", passages[0].Title)
	for i := 1; i < len(passages); i++ {
		assert.GreaterOrEqual(t, passages[i-1].Score, passages[i].Score)
	}
}

func TestMemoryStoreTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	// Two chunks with identical embeddings score identically.
	err := s.InsertChunks(ctx, []models.Chunk{
		chunk("first", "First In", "x", []float32{1, 1, 0}),
		chunk("second", "Second In", "y", []float32{1, 1, 0}),
	})
	require.NoError(t, err)

	passages, err := s.QuerySimilar(ctx, []float32{1, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "First In", passages[0].Title)
	assert.Equal(t, "Second In", passages[1].Title)
}

func TestMemoryStoreReturnsAtMostTopK(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	err := s.InsertChunks(ctx, []models.Chunk{
		chunk("a", "A", "x", []float32{1, 0}),
		chunk("b", "B", "y", []float32{0, 1}),
	})
	require.NoError(t, err)

	passages, err := s.QuerySimilar(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, passages, 1)

	// Fewer rows than topK is fine too.
	passages, err = s.QuerySimilar(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, passages, 2)
}

func TestMemoryStoreRejectsMixedDimensions(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	require.NoError(t, s.InsertChunks(ctx, []models.Chunk{
		chunk("a", "A", "x", []float32{1, 0, 0}),
	}))

	err := s.InsertChunks(ctx, []models.Chunk{
		chunk("b", "B", "y", []float32{1, 0}),
	})
	assert.ErrorIs(t, err, store.ErrStorage)
	assert.Equal(t, 1, s.Count())
}
