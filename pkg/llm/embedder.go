package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
)

// ErrEmbedding tags any model or transport failure from the embedding
// backend, timeouts included.
var ErrEmbedding = errors.New("embedding failed")

type EmbedderConfig struct {
	Model     string
	BaseURL   string // Ollama server URL
	Dimension int
}

// Embedder turns text into fixed-dimension vectors through an Ollama
// embedding model.
type Embedder struct {
	config EmbedderConfig
	llm    *ollama.LLM
}

func NewEmbedderWithConfig(config EmbedderConfig) (*Embedder, error) {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.Dimension == 0 {
		config.Dimension = 768
	}

	emb, err := ollama.New(ollama.WithModel(config.Model), ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	return &Embedder{config: config, llm: emb}, nil
}

// Dimension is the width of every vector this embedder produces.
func (e *Embedder) Dimension() int {
	return e.config.Dimension
}

// EmbedBatch embeds texts in order: vector i corresponds to texts[i]. The
// batch either embeds fully or fails as a whole; callers never see a
// partial result.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbedding, len(vectors), len(texts))
	}
	for i := range vectors {
		if len(vectors[i]) != e.config.Dimension {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d",
				ErrEmbedding, i, len(vectors[i]), e.config.Dimension)
		}
	}

	return vectors, nil
}
