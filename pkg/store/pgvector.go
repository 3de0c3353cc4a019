package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"stockrag/internal/models"
)

// ErrStorage tags any failure to durably commit or read chunk rows.
var ErrStorage = errors.New("storage failed")

type VectorStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
	TopK       int // default result count for similarity queries
}

// VectorStore persists chunks in PostgreSQL with pgvector and answers
// cosine nearest-neighbor queries over them.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(ctx context.Context, config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768
	}
	if config.TopK == 0 {
		config.TopK = 5
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &VectorStore{config: config, pool: pool}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *VectorStore) initialize(ctx context.Context) error {
	if _, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			url TEXT,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, vs.config.TableName, vs.config.VectorDim)

	if _, err := vs.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	if _, err := vs.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// InsertChunks stores all chunks in one transaction. On any error every row
// written by this call is rolled back; a reader never observes a partially
// written article.
func (vs *VectorStore) InsertChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, title, url, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		vs.config.TableName)

	for _, chunk := range chunks {
		_, err := tx.Exec(ctx, stmt,
			chunk.ID,
			chunk.Title,
			chunk.URL,
			chunk.Content,
			pgvector.NewVector(chunk.Embedding),
			chunk.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("%w: insert chunk %s: %v", ErrStorage, chunk.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}

	return nil
}

// QuerySimilar returns the topK closest chunks by cosine distance, highest
// score first. Ties fall back to insertion order via created_at and id. An
// empty table yields an empty result.
func (vs *VectorStore) QuerySimilar(ctx context.Context, vector []float32, topK int) ([]models.RetrievedPassage, error) {
	if topK <= 0 {
		topK = vs.config.TopK
	}

	query := fmt.Sprintf(`
		SELECT title, content, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1, created_at, id
		LIMIT $2`,
		vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrStorage, err)
	}
	defer rows.Close()

	var passages []models.RetrievedPassage
	for rows.Next() {
		var p models.RetrievedPassage
		if err := rows.Scan(&p.Title, &p.Content, &p.Score); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrStorage, err)
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrStorage, err)
	}

	return passages, nil
}

// Count reports the total number of stored chunks.
func (vs *VectorStore) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT count(*) FROM %s", vs.config.TableName)
	if err := vs.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrStorage, err)
	}
	return count, nil
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}
