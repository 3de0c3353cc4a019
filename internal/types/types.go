package types

import (
	"context"

	"stockrag/internal/models"
)

// Splitter cuts article text into bounded, overlapping chunks. Splitting is
// deterministic: the same text always yields the same boundaries.
type Splitter interface {
	Split(text string) []string
}

// Embedder maps texts to fixed-dimension vectors. The output has exactly one
// vector per input text, in input order; a batch either embeds fully or
// fails as a whole.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// VectorStore persists chunks and answers nearest-neighbor queries.
// InsertChunks is atomic per call; QuerySimilar returns results in
// descending score order with ties broken by insertion order, and an empty
// store yields an empty result, never an error.
type VectorStore interface {
	InsertChunks(ctx context.Context, chunks []models.Chunk) error
	QuerySimilar(ctx context.Context, vector []float32, topK int) ([]models.RetrievedPassage, error)
	Close()
}

// Ingester processes one article end to end: chunk, embed, persist.
type Ingester interface {
	Ingest(ctx context.Context, title, content, url string) error
}

// Retriever embeds a query and returns the most similar stored passages.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedPassage, error)
}

// MarketData fetches the market context for a symbol. Failures are absorbed
// behind this boundary: missing data shows up as empty snapshot fields.
type MarketData interface {
	FetchSnapshot(ctx context.Context, symbol string) models.MarketSnapshot
}

// Generator invokes the language model with a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Answerer produces an answer with cited sources for a user query.
type Answerer interface {
	Answer(ctx context.Context, query, symbol string) (models.AnswerResult, error)
}

// NewsSource yields raw articles from the upstream news feed.
type NewsSource interface {
	FetchNews(ctx context.Context, category string) ([]models.Article, error)
}
