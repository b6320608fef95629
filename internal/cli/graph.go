package cli

import (
	"fmt"

	"github.com/raphaelgruber/memctx-go/internal/knowledge"
	"github.com/spf13/cobra"
)

var (
	graphLimit        int
	graphMinRelevance float64
	graphTypes        []string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Manage and search the entity knowledge graph",
}

var graphUpsertCmd = &cobra.Command{
	Use:   "upsert <entity_type> <entity_id> <content>",
	Short: "Embed content and upsert a graph node for an entity",
	Long: `Embeds the given content and stores or merges the graph node keyed by
(entity_id, entity_type). Entity types here are domain kinds such as
issue, project, document, or milestone.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := knowledge.NewClient(dbClient, embHolder, collector)
		node, err := client.Upsert(cmd.Context(), args[1], args[0], args[2], nil)
		if err != nil {
			return fmt.Errorf("upsert graph node: %w", err)
		}
		fmt.Printf("Upserted %s:%s (%d-dim embedding)\n", node.EntityType, node.EntityID, len(node.Embedding))
		return nil
	},
}

var graphSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge graph by natural-language query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := knowledge.NewClient(dbClient, embHolder, collector)
		result, err := client.Search(cmd.Context(), args[0], graphTypes, graphLimit, graphMinRelevance)
		if err != nil {
			return fmt.Errorf("graph search: %w", err)
		}
		if len(result.Hits) == 0 {
			fmt.Println("No entities matched.")
			return nil
		}

		fmt.Printf("%d hits in %s:\n", len(result.Hits), result.Elapsed)
		for _, h := range result.Hits {
			fmt.Printf("  %.3f %s:%s %s\n", h.Similarity, h.EntityType, h.EntityID, h.Content)
		}
		return nil
	},
}

var graphRelatedCmd = &cobra.Command{
	Use:   "related <entity_type> <entity_id>",
	Short: "Find entities semantically related to a known entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := knowledge.NewClient(dbClient, embHolder, collector)
		result, err := client.Related(cmd.Context(), args[1], args[0], graphLimit)
		if err != nil {
			return fmt.Errorf("related entities: %w", err)
		}
		if len(result.Hits) == 0 {
			fmt.Println("No related entities found.")
			return nil
		}

		for _, h := range result.Hits {
			fmt.Printf("  %.3f %s:%s %s\n", h.Similarity, h.EntityType, h.EntityID, h.Content)
		}
		return nil
	},
}

func init() {
	graphCmd.PersistentFlags().IntVarP(&graphLimit, "limit", "l", 10, "max results")
	graphSearchCmd.Flags().Float64Var(&graphMinRelevance, "min-relevance", 0, "similarity threshold")
	graphSearchCmd.Flags().StringSliceVarP(&graphTypes, "type", "t", nil, "restrict to entity types")

	graphCmd.AddCommand(graphUpsertCmd)
	graphCmd.AddCommand(graphSearchCmd)
	graphCmd.AddCommand(graphRelatedCmd)
}
