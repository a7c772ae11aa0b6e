package service

import (
	"context"
	"fmt"
	"time"

	"podatkobot/pkg/config"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// EmbeddingService computes dense vectors for queries and chunks through the
// OpenAI embeddings API.
type EmbeddingService struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewEmbeddingService(cfg *config.OpenAIConfig, logger *zap.Logger) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &EmbeddingService{
		client:     openai.NewClient(cfg.APIKey),
		model:      openai.EmbeddingModel(cfg.EmbeddingModel),
		maxRetries: 3,
		retryDelay: 2 * time.Second,
		logger:     logger,
	}, nil
}

// EmbedQuery embeds a single query string.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds a batch of texts, retrying transient failures with a
// growing delay.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: s.model,
		})
		if err != nil {
			lastErr = err
			s.logger.Warn("Embedding request failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}
		if len(resp.Data) != len(texts) {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), len(texts))
		}

		vectors := make([][]float32, len(resp.Data))
		for i, item := range resp.Data {
			vectors[i] = item.Embedding
		}
		return vectors, nil
	}

	return nil, fmt.Errorf("failed to create embeddings: %w", lastErr)
}
