// Package cli provides the command-line interface for memctx.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/raphaelgruber/memctx-go/internal/config"
	"github.com/raphaelgruber/memctx-go/internal/db"
	"github.com/raphaelgruber/memctx-go/internal/embedding"
	"github.com/raphaelgruber/memctx-go/internal/knowledge"
	"github.com/raphaelgruber/memctx-go/internal/llm"
	"github.com/raphaelgruber/memctx-go/internal/metrics"
	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/raphaelgruber/memctx-go/internal/service"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and db client
	cfg      config.Config
	dbClient *db.Client

	// Lazy-initialized components shared across commands
	embHolder *embedding.Holder
	collector = metrics.NewCollector()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "memctxctl",
	Short: "Conversational memory and context-assembly engine",
	Long: `Memctx maintains long-running conversation state for AI assistants:
tiered context assembly, LLM-backed memory extraction and summarization,
and a semantic knowledge graph over domain entities.

This CLI administers the engine directly; the MCP server (memctx) exposes
the same operations to assistant runtimes over stdio.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		embHolder = embedding.NewHolder(embedding.Config{
			Provider:          embedding.ProviderType(cfg.EmbeddingProvider),
			Model:             cfg.EmbeddingModel,
			ExpectedDimension: cfg.EmbeddingDim,
			VoyageAPIKey:      cfg.VoyageAPIKey,
		}, collector)

		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, nil, collector)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx, cfg.EmbeddingDim); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
	},
}

// getBuilder wires the full context-assembly pipeline. Commands that only
// touch storage use dbClient directly instead.
func getBuilder() (*service.Builder, error) {
	model, err := llm.NewModel(cfg, collector)
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}

	graph := knowledge.NewClient(dbClient, embHolder, collector)
	summarizer := service.NewSummarizer(dbClient, model, embHolder, nil)
	scorer := service.NewScorer(dbClient, embHolder, nil)
	extractor := service.NewExtractor(dbClient, model, embHolder, nil)
	work := service.NewWorkService(dbClient, nil)

	return service.NewBuilder(
		dbClient, summarizer, scorer, extractor,
		graph, dbClient, work,
		cfg.MinRelevance, cfg.DecayDays, cfg.GraphBudget,
		collector, nil,
	), nil
}

// parseOwner validates the entity_type/entity_id argument pair used by most
// commands.
func parseOwner(typeArg, idArg string) (models.EntityType, string, error) {
	entityType := models.EntityType(typeArg)
	if entityType != models.EntityStaff && entityType != models.EntityMentor {
		return "", "", fmt.Errorf("entity type must be 'staff' or 'mentor', got %q", typeArg)
	}
	if idArg == "" {
		return "", "", fmt.Errorf("entity id must not be empty")
	}
	return entityType, idArg, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(memoriesCmd)
	rootCmd.AddCommand(summariesCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(decayCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(wipeCmd)
}
