package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"stockrag/internal/models"
	"stockrag/internal/types"
)

// ErrNoChunks means an article produced no embeddable content; nothing is
// sent to the embedder or the store when this happens.
var ErrNoChunks = errors.New("no chunks produced")

// Ingester runs one article through the pipeline: split into chunks, embed
// all chunk texts in a single batch, persist every chunk in one atomic
// insert. A failure at any stage leaves the store untouched.
type Ingester struct {
	splitter types.Splitter
	embedder types.Embedder
	store    types.VectorStore
	log      *log.Logger
}

func New(splitter types.Splitter, embedder types.Embedder, store types.VectorStore, logger *log.Logger) *Ingester {
	if logger == nil {
		logger = log.Default()
	}
	return &Ingester{
		splitter: splitter,
		embedder: embedder,
		store:    store,
		log:      logger,
	}
}

// Ingest processes a single article. Every chunk row shares the article's
// title and url; rows are written all-or-nothing.
func (in *Ingester) Ingest(ctx context.Context, title, content, url string) error {
	texts := in.splitter.Split(content)
	if len(texts) == 0 {
		return fmt.Errorf("%w: article %q", ErrNoChunks, title)
	}

	vectors, err := in.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed article %q: %w", title, err)
	}

	now := time.Now().UTC()
	chunks := make([]models.Chunk, len(texts))
	for i := range texts {
		chunks[i] = models.Chunk{
			ID:        uuid.NewString(),
			Title:     title,
			URL:       url,
			Content:   texts[i],
			Embedding: vectors[i],
			CreatedAt: now,
		}
	}

	if err := in.store.InsertChunks(ctx, chunks); err != nil {
		return fmt.Errorf("store article %q: %w", title, err)
	}

	in.log.Info("article ingested", "title", title, "chunks", len(chunks))
	return nil
}
