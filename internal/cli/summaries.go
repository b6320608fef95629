package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var summariesCmd = &cobra.Command{
	Use:   "summaries <entity_type> <entity_id>",
	Short: "List stored conversation summaries",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, entityID, err := parseOwner(args[0], args[1])
		if err != nil {
			return err
		}

		summaries, err := dbClient.ListSummaries(cmd.Context(), entityType, entityID)
		if err != nil {
			return fmt.Errorf("list summaries: %w", err)
		}
		if len(summaries) == 0 {
			fmt.Println("No summaries stored.")
			return nil
		}

		for _, s := range summaries {
			fmt.Printf("[%d,%d) %d messages\n", s.RangeStart, s.RangeEnd, s.MessageCount)
			fmt.Printf("  %s\n", s.SummaryText)
			if len(s.KeyTopics) > 0 {
				fmt.Printf("  topics: %s\n", strings.Join(s.KeyTopics, ", "))
			}
			if len(s.DecisionsMade) > 0 {
				fmt.Printf("  decisions: %s\n", strings.Join(s.DecisionsMade, "; "))
			}
		}
		return nil
	},
}
