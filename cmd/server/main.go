package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ahmednasr/issue-retriever/internal/config"
	"github.com/ahmednasr/issue-retriever/internal/database"
	igithub "github.com/ahmednasr/issue-retriever/internal/github"
	"github.com/ahmednasr/issue-retriever/internal/handler"
	"github.com/ahmednasr/issue-retriever/internal/links"
	"github.com/ahmednasr/issue-retriever/internal/logger"
	"github.com/ahmednasr/issue-retriever/internal/middleware"
	"github.com/ahmednasr/issue-retriever/internal/pipeline"
	"github.com/ahmednasr/issue-retriever/internal/repository"
	"github.com/ahmednasr/issue-retriever/internal/service"
)

// main is the single entry‑point for the REST API.
func main() {
	ctx := context.Background()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("configuration loaded",
		zap.String("llm_provider", cfg.LLMProvider),
		zap.String("llm_model", cfg.LLMModel),
		zap.Int("link_fetch_workers", cfg.LinkFetchWorkers),
		zap.Bool("persistence", cfg.MongoURI != ""))

	// Issue tracker
	tracker, err := igithub.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL, cfg.GitHubTimeout)
	if err != nil {
		zl.Fatal("init github client", zap.Error(err))
	}

	// Language model
	llm, closeLLM, err := service.NewLLM(ctx, service.LLMConfig{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
		APIKey:   cfg.OpenAIAPIKey,
		Vertex:   vertexConfig(cfg),
	}, zl)
	if err != nil {
		zl.Fatal("init language model", zap.Error(err))
	}
	defer func() { _ = closeLLM() }()

	p := pipeline.New(
		tracker,
		links.NewFetcher(links.WithWorkers(cfg.LinkFetchWorkers), links.WithLogger(zl)),
		service.NewSummarizer(llm, zl),
		pipeline.Config{
			WebBaseURL:          cfg.WebBaseURL(),
			TrackerTimeout:      cfg.GitHubTimeout,
			SummaryTimeout:      cfg.LLMTimeout,
			SkipFailedSummaries: cfg.SkipFailedSummaries,
		},
		zl,
	)

	// Optional persistence
	var (
		mongoClient *mongo.Client
		store       service.RecordStore
		embedder    service.Embedder
		searchSvc   = service.NewSearchService(nil, nil, zl)
	)
	if cfg.MongoURI != "" {
		mongoClient, err = database.NewMongo(ctx, cfg.MongoURI, database.ConnectTimeout)
		if err != nil {
			zl.Fatal("connect to MongoDB", zap.Error(err))
		}
		defer func() { _ = database.Disconnect(mongoClient) }()
		zl.Info("connected to MongoDB", zap.String("db", cfg.DBName))

		records := repository.NewRecordRepository(mongoClient.Database(cfg.DBName), zl)
		store = records

		if cfg.EmbedChunks {
			vc := vertexConfig(cfg)
			vc.Model = "" // default embedding model
			ve, err := service.NewVertexEmbedder(ctx, vc)
			if err != nil {
				zl.Fatal("init Vertex AI embedder", zap.Error(err))
			}
			defer func() { _ = ve.Close() }()
			embedder = ve
			searchSvc = service.NewSearchService(records, ve.ForQueries(), zl)
		}
	}

	svc := service.NewRetrieverService(p, store, embedder, zl)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Add middleware
	app.Use(middleware.Logging(zl))

	// Register routes
	handler.RegisterRoutes(app, svc, searchSvc)
	handler.NewHealthHandler(mongoClient).Register(app)

	// Start server
	zl.Info("server starting", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Fatal("server failed to start", zap.Error(err))
	}
}

func vertexConfig(cfg config.Config) service.VertexConfig {
	return service.VertexConfig{
		ProjectID:       cfg.ProjectID,
		Location:        cfg.Location,
		Model:           cfg.LLMModel,
		CredentialsFile: cfg.CredentialsFile,
	}
}
