package service

import (
	"context"
	"fmt"

	"podatkobot/internal/models"
	"podatkobot/internal/repository"
	"podatkobot/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// embedBatchSize bounds one embeddings API request
const embedBatchSize = 64

// IngestService runs the offline pipeline: extract PDFs, chunk and annotate
// them, persist the dataset artifact, then embed and upsert into the index.
type IngestService struct {
	extractor *PDFExtractor
	dataset   *DatasetService
	embedder  *EmbeddingService
	repo      *repository.ChunkRepository
	config    *config.DatasetConfig
	logger    *zap.Logger
}

func NewIngestService(
	extractor *PDFExtractor,
	dataset *DatasetService,
	embedder *EmbeddingService,
	repo *repository.ChunkRepository,
	cfg *config.DatasetConfig,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		extractor: extractor,
		dataset:   dataset,
		embedder:  embedder,
		repo:      repo,
		config:    cfg,
		logger:    logger,
	}
}

// Ingest processes the given paths end to end and returns the number of
// chunks indexed. The dataset artifact is saved under the configured output
// directory before indexing.
func (s *IngestService) Ingest(ctx context.Context, paths []string, datasetName string) (int, error) {
	docs, err := s.extractor.ExtractAll(paths)
	if err != nil {
		return 0, err
	}

	chunks := s.dataset.BuildDataset(docs, s.config.ChunkSize, s.config.Overlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("documents produced no chunks")
	}

	if err := s.dataset.SaveDataset(chunks, []string{"json"}, s.config.OutputDir, datasetName); err != nil {
		return 0, fmt.Errorf("failed to save dataset artifact: %w", err)
	}

	indexed, err := s.IndexChunks(ctx, chunks)
	if err != nil {
		return indexed, err
	}

	s.logger.Info("Ingestion completed",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", indexed),
	)
	return indexed, nil
}

// IndexChunks embeds the chunks in batches and upserts them into the index.
func (s *IngestService) IndexChunks(ctx context.Context, chunks []models.Chunk) (int, error) {
	indexed := 0
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("failed to embed batch: %w", err)
		}

		indexedChunks := make([]models.IndexedChunk, len(batch))
		for i, chunk := range batch {
			indexedChunks[i] = models.IndexedChunk{
				ID:        uuid.New(),
				Chunk:     chunk,
				Embedding: vectors[i],
			}
		}
		if err := s.repo.Upsert(ctx, indexedChunks); err != nil {
			return indexed, fmt.Errorf("failed to upsert batch: %w", err)
		}
		indexed += len(batch)
	}
	return indexed, nil
}
