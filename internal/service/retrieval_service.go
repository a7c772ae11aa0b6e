package service

import (
	"context"
	"fmt"

	"podatkobot/internal/models"
	"podatkobot/internal/repository"

	"go.uber.org/zap"
)

// Retriever is the vector index collaborator: top-k nearest chunks for a
// query, ascending by distance.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]models.RetrievedContext, error)
}

// RetrievalService embeds the query and searches the pgvector index.
type RetrievalService struct {
	embedder *EmbeddingService
	repo     *repository.ChunkRepository
	logger   *zap.Logger
}

func NewRetrievalService(embedder *EmbeddingService, repo *repository.ChunkRepository, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		repo:     repo,
		logger:   logger,
	}
}

func (s *RetrievalService) Search(ctx context.Context, query string, k int) ([]models.RetrievedContext, error) {
	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.repo.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	s.logger.Info("Context retrieved",
		zap.Int("requested", k),
		zap.Int("results", len(results)),
	)
	return results, nil
}
