// Package main provides the entry point for the memctx MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/memctx-go/internal/config"
	"github.com/raphaelgruber/memctx-go/internal/db"
	"github.com/raphaelgruber/memctx-go/internal/embedding"
	"github.com/raphaelgruber/memctx-go/internal/knowledge"
	"github.com/raphaelgruber/memctx-go/internal/llm"
	"github.com/raphaelgruber/memctx-go/internal/metrics"
	"github.com/raphaelgruber/memctx-go/internal/server"
	"github.com/raphaelgruber/memctx-go/internal/service"
	"github.com/raphaelgruber/memctx-go/internal/tools"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("memctx starting",
		"version", version,
		"surrealdb_url", cfg.SurrealDBURL,
		"embedding_model", cfg.EmbeddingModel,
		"llm_provider", cfg.LLMProvider,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	collector := metrics.NewCollector()

	// Connect to database
	dbCfg := db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}

	dbClient, err := db.NewClient(ctx, dbCfg, logger, collector)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = dbClient.Close(ctx)
	}()

	// Initialize database schema
	if err := dbClient.InitSchema(ctx, cfg.EmbeddingDim); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	// The embedder is shared process-wide and built lazily on first use.
	embHolder := embedding.NewHolder(embedding.Config{
		Provider:          embedding.ProviderType(cfg.EmbeddingProvider),
		Model:             cfg.EmbeddingModel,
		ExpectedDimension: cfg.EmbeddingDim,
		VoyageAPIKey:      cfg.VoyageAPIKey,
	}, collector)

	// LLM model is optional: nil disables extraction and summarization,
	// context assembly still works with those tiers empty.
	model, err := llm.NewModel(cfg, collector)
	if err != nil {
		logger.Error("failed to create LLM model", "error", err)
		os.Exit(1)
	}
	if model == nil {
		logger.Warn("no LLM backend configured, extraction and summarization disabled")
	}

	// Wire services
	graph := knowledge.NewClient(dbClient, embHolder, collector)
	summarizer := service.NewSummarizer(dbClient, model, embHolder, logger)
	scorer := service.NewScorer(dbClient, embHolder, logger)
	extractor := service.NewExtractor(dbClient, model, embHolder, logger)
	work := service.NewWorkService(dbClient, logger)
	builder := service.NewBuilder(
		dbClient, summarizer, scorer, extractor,
		graph, dbClient, work,
		cfg.MinRelevance, cfg.DecayDays, cfg.GraphBudget,
		collector, logger,
	)

	// Create and setup server
	srv := server.New(version, logger)
	srv.Setup()

	// Register tools
	deps := &tools.Dependencies{
		Builder:   builder,
		Scorer:    scorer,
		Knowledge: graph,
		Metrics:   collector,
		Logger:    logger,
	}
	tools.RegisterAll(srv.MCPServer(), deps)
	logger.Info("tools registered", "count", 6)

	logger.Info("server ready, awaiting connections")

	// Run server (blocks until disconnect or context cancelled)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
