package cli

import (
	"fmt"

	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/raphaelgruber/memctx-go/internal/service"
	"github.com/spf13/cobra"
)

var (
	memoriesLimit        int
	memoriesMinRelevance float64
)

var memoriesCmd = &cobra.Command{
	Use:   "memories",
	Short: "Inspect and search stored memories",
}

var memoriesListCmd = &cobra.Command{
	Use:   "list <entity_type> <entity_id>",
	Short: "List stored memories for a conversation owner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, entityID, err := parseOwner(args[0], args[1])
		if err != nil {
			return err
		}

		memories, err := dbClient.MemoriesWithEmbeddings(cmd.Context(), entityType, entityID)
		if err != nil {
			return fmt.Errorf("list memories: %w", err)
		}
		if len(memories) == 0 {
			fmt.Println("No memories stored.")
			return nil
		}

		fmt.Printf("%d memories for %s:%s\n", len(memories), entityType, entityID)
		for _, m := range memories {
			id, _ := models.RecordIDString(m.ID)
			fmt.Printf("  %s [%s] (importance %.2f, accessed %d) %s\n",
				id, m.MemoryType, m.Importance, m.AccessCount, m.Content)
		}
		return nil
	},
}

var memoriesSearchCmd = &cobra.Command{
	Use:   "search <entity_type> <entity_id> <query>",
	Short: "Search memories by semantic relevance",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, entityID, err := parseOwner(args[0], args[1])
		if err != nil {
			return err
		}

		scorer := service.NewScorer(dbClient, embHolder, nil)
		results, err := scorer.RelevantMemories(cmd.Context(), entityType, entityID, args[2],
			memoriesLimit, memoriesMinRelevance, cfg.DecayDays)
		if err != nil {
			return fmt.Errorf("search memories: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("No memories matched.")
			return nil
		}

		for _, m := range results {
			fmt.Printf("  %.3f [%s] %s\n", m.Relevance, m.MemoryType, m.Content)
		}
		return nil
	},
}

func init() {
	memoriesSearchCmd.Flags().IntVarP(&memoriesLimit, "limit", "l", 10, "max results")
	memoriesSearchCmd.Flags().Float64Var(&memoriesMinRelevance, "min-relevance", 0.6, "relevance threshold")

	memoriesCmd.AddCommand(memoriesListCmd)
	memoriesCmd.AddCommand(memoriesSearchCmd)
}
