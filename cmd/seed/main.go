package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"podatkobot/internal/repository"
	"podatkobot/internal/service"
	"podatkobot/pkg/config"
	"podatkobot/pkg/logger"
	"podatkobot/pkg/postgres"

	"go.uber.org/zap"
)

// Offline batch: extract the tax code PDFs, build the chunk dataset, save the
// dataset artifact and index everything into pgvector.
func main() {
	var (
		paths       = flag.String("paths", "", "comma-separated PDF files or directories (default: DATASET_SOURCE_DIR)")
		datasetName = flag.String("name", "tax_code", "dataset artifact name")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	chunkRepo := repository.NewChunkRepository(db, appLogger)
	if err := chunkRepo.EnsureSchema(ctx, cfg.OpenAI.Dimensions); err != nil {
		appLogger.Fatal("Failed to prepare index schema", zap.Error(err))
	}

	embeddingService, err := service.NewEmbeddingService(&cfg.OpenAI, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize embedding service", zap.Error(err))
	}

	extractor := service.NewPDFExtractor(appLogger)
	datasetService := service.NewDatasetService(service.NewTokenizerService(), appLogger)
	ingestService := service.NewIngestService(extractor, datasetService, embeddingService, chunkRepo, &cfg.Dataset, appLogger)

	sourcePaths := []string{cfg.Dataset.SourceDir}
	if *paths != "" {
		sourcePaths = strings.Split(*paths, ",")
	}

	appLogger.Info("Starting index seeding", zap.Strings("paths", sourcePaths))

	indexed, err := ingestService.Ingest(ctx, sourcePaths, *datasetName)
	if err != nil {
		appLogger.Fatal("Seeding failed", zap.Error(err))
	}

	appLogger.Info("Index seeding completed", zap.Int("chunks_indexed", indexed))
}
