package retrieval

import (
	"context"
	"errors"
	"fmt"

	"stockrag/internal/models"
	"stockrag/internal/types"
)

// ErrRetrieval tags query-time embedding or store failures. Retrieval fails
// closed: no stale or cached passages are ever returned on error.
var ErrRetrieval = errors.New("retrieval failed")

// Retriever embeds a query and asks the store for the closest passages.
type Retriever struct {
	embedder types.Embedder
	store    types.VectorStore
	topK     int
}

func New(embedder types.Embedder, store types.VectorStore, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{embedder: embedder, store: store, topK: topK}
}

// Retrieve returns up to topK passages ordered by descending similarity.
// topK <= 0 falls back to the configured default. An empty store yields an
// empty result, which downstream must treat as a valid state.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedPassage, error) {
	if topK <= 0 {
		topK = r.topK
	}

	vectors, err := r.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	passages, err := r.store.QuerySimilar(ctx, vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	return passages, nil
}
