package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <entity_type> <entity_id>",
	Short: "Show storage counts for a conversation owner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, entityID, err := parseOwner(args[0], args[1])
		if err != nil {
			return err
		}

		count, err := dbClient.CountMemories(cmd.Context(), entityType, entityID)
		if err != nil {
			return fmt.Errorf("count memories: %w", err)
		}
		summaries, err := dbClient.ListSummaries(cmd.Context(), entityType, entityID)
		if err != nil {
			return fmt.Errorf("list summaries: %w", err)
		}

		fmt.Printf("%s:%s\n", entityType, entityID)
		fmt.Printf("  memories:  %d\n", count)
		fmt.Printf("  summaries: %d\n", len(summaries))
		return nil
	},
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all stored data (messages, memories, summaries, graph)",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("yes")
		if !confirm {
			return fmt.Errorf("refusing to wipe without --yes")
		}
		if err := dbClient.WipeData(cmd.Context()); err != nil {
			return fmt.Errorf("wipe data: %w", err)
		}
		fmt.Println("All data wiped.")
		return nil
	},
}

func init() {
	wipeCmd.Flags().Bool("yes", false, "confirm the wipe")
}
