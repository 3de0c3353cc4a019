package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"stockrag/internal/models"
)

// MemoryStore is a brute-force cosine similarity store. It backs tests and
// small corpora where PostgreSQL would be overkill; it honors the same
// all-or-nothing insert and ordering contract as the pgvector store.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks []models.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// InsertChunks appends all chunks or none. Dimensions must agree with the
// rows already stored, otherwise similarity would be undefined.
func (m *MemoryStore) InsertChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dim := len(chunks[0].Embedding)
	if len(m.chunks) > 0 {
		dim = len(m.chunks[0].Embedding)
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) != dim {
			return fmt.Errorf("%w: chunk %s has dimension %d, want %d",
				ErrStorage, chunk.ID, len(chunk.Embedding), dim)
		}
	}

	m.chunks = append(m.chunks, chunks...)
	return nil
}

// QuerySimilar scans every stored chunk and returns the topK best cosine
// matches, highest score first. The stable sort keeps insertion order on
// ties.
func (m *MemoryStore) QuerySimilar(ctx context.Context, vector []float32, topK int) ([]models.RetrievedPassage, error) {
	if topK <= 0 {
		topK = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	passages := make([]models.RetrievedPassage, 0, len(m.chunks))
	for _, chunk := range m.chunks {
		passages = append(passages, models.RetrievedPassage{
			Title:   chunk.Title,
			Content: chunk.Content,
			Score:   cosineSimilarity(vector, chunk.Embedding),
		})
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})

	if topK < len(passages) {
		passages = passages[:topK]
	}
	return passages, nil
}

// Count reports the total number of stored chunks.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

func (m *MemoryStore) Close() {}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
