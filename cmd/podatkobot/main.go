package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"podatkobot/internal/api"
	"podatkobot/internal/api/handlers"
	"podatkobot/internal/repository"
	"podatkobot/internal/service"
	"podatkobot/pkg/auth"
	"podatkobot/pkg/config"
	"podatkobot/pkg/logger"
	"podatkobot/pkg/postgres"

	"go.uber.org/zap"
)

// @title Podatkobot API
// @version 1.0
// @description RAG-асистент з податкового законодавства України

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := logger.New(cfg.Logger.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting podatkobot service")

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

	jwtManager := auth.NewJWTManager(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)

	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	embeddingService, err := service.NewEmbeddingService(&cfg.OpenAI, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize embedding service", zap.Error(err))
	}

	retrievalService := service.NewRetrievalService(embeddingService, chunkRepo, appLogger)
	assistantService := service.NewAssistantService(retrievalService, llmService, &cfg.RAG, appLogger)
	queryRouter := service.NewQueryRouter(service.NewQueryAnalyzer(), assistantService, service.SystemRand{}, appLogger)

	extractor := service.NewPDFExtractor(appLogger)
	datasetService := service.NewDatasetService(service.NewTokenizerService(), appLogger)
	ingestService := service.NewIngestService(extractor, datasetService, embeddingService, chunkRepo, &cfg.Dataset, appLogger)

	queryHandler := handlers.NewQueryHandler(queryRouter, appLogger)
	adminHandler := handlers.NewAdminHandler(ingestService, chunkRepo, appLogger)

	app := api.SetupRouter(queryHandler, adminHandler, jwtManager, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
