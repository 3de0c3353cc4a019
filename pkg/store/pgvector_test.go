package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrag/internal/models"
	"stockrag/pkg/store"
)

// Exercises the real pgvector backend; needs a reachable PostgreSQL with
// the vector extension.
func TestVectorStore(t *testing.T) {
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("DATABASE_URL not set, skipping pgvector integration test")
	}

	ctx := context.Background()
	s, err := store.NewWithConfig(ctx, store.VectorStoreConfig{
		ConnString: connString,
		TableName:  "test_documents",
		VectorDim:  3,
	})
	require.NoError(t, err)
	defer s.Close()

	before, err := s.Count(ctx)
	require.NoError(t, err)

	now := time.Now().UTC()
	err = s.InsertChunks(ctx, []models.Chunk{
		{ID: uuid.NewString(), Title: "Fed Rate Decision", Content: "rates held steady", Embedding: []float32{1, 0, 0}, CreatedAt: now},
		{ID: uuid.NewString(), Title: "Chip Demand", Content: "demand for accelerators", Embedding: []float32{0, 1, 0}, CreatedAt: now},
	})
	require.NoError(t, err)

	after, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+2, after)

	passages, err := s.QuerySimilar(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "Fed Rate Decision", passages[0].Title)
}
