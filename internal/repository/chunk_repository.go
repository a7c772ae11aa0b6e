package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"podatkobot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// retrieved chunk content is capped to the generation context budget
const contentLimit = 8192

// ChunkRepository is the pgvector-backed vector index: it persists embedded
// chunks and serves nearest-neighbor search ordered by ascending distance.
type ChunkRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChunkRepository(db *pgxpool.Pool, logger *zap.Logger) *ChunkRepository {
	return &ChunkRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the vector extension, the chunk table and the ANN index.
func (r *ChunkRepository) EnsureSchema(ctx context.Context, dimensions int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tax_chunks (
			id UUID PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding vector(%d) NOT NULL
		)`, dimensions),
		`CREATE INDEX IF NOT EXISTS tax_chunks_embedding_idx
			ON tax_chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Upsert writes embedded chunks into the index, replacing rows with the same id.
func (r *ChunkRepository) Upsert(ctx context.Context, chunks []models.IndexedChunk) error {
	for _, chunk := range chunks {
		metadata, err := json.Marshal(chunkMetadata(chunk.Chunk))
		if err != nil {
			return fmt.Errorf("failed to marshal chunk metadata: %w", err)
		}

		query := squirrel.Insert("tax_chunks").
			Columns("id", "content", "metadata", "embedding").
			Values(chunk.ID, chunk.Chunk.Text, metadata, pgvector.NewVector(chunk.Embedding)).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				content = EXCLUDED.content,
				metadata = EXCLUDED.metadata,
				embedding = EXCLUDED.embedding`).
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := query.ToSql()
		if err != nil {
			return err
		}
		if _, err := r.db.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to upsert chunk: %w", err)
		}
	}

	r.logger.Info("Chunks upserted", zap.Int("count", len(chunks)))
	return nil
}

// Search returns the k nearest chunks by cosine distance, ascending. An
// empty index yields an empty result, not an error.
func (r *ChunkRepository) Search(ctx context.Context, embedding []float32, k int) ([]models.RetrievedContext, error) {
	query := squirrel.Select("content", "metadata", "embedding <=> $1 AS distance").
		From("tax_chunks").
		OrderBy("distance ASC").
		Limit(uint64(k)).
		PlaceholderFormat(squirrel.Dollar)

	sql, _, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, pgvector.NewVector(embedding))
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var results []models.RetrievedContext
	for rows.Next() {
		var content string
		var metadata map[string]any
		var distance float64
		if err := rows.Scan(&content, &metadata, &distance); err != nil {
			return nil, err
		}

		if len([]rune(content)) > contentLimit {
			content = string([]rune(content)[:contentLimit])
		}
		results = append(results, models.RetrievedContext{
			Content:  content,
			Metadata: metadata,
			Score:    distance,
		})
	}
	return results, rows.Err()
}

// Count reports the number of indexed chunks.
func (r *ChunkRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tax_chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// chunkMetadata flattens the chunk fields stored alongside the content,
// mirroring the dataset record minus the text itself.
func chunkMetadata(chunk models.Chunk) map[string]any {
	return map[string]any{
		"source_file":   chunk.SourceFile,
		"length":        chunk.Length,
		"articles":      chunk.Structure.Articles,
		"points":        chunk.Structure.Points,
		"page":          chunk.Structure.Page,
		"total_pages":   chunk.DocumentMetadata.TotalPages,
		"document_path": chunk.DocumentMetadata.DocumentPath,
	}
}
