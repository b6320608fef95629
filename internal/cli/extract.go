package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var extractForce bool

var extractCmd = &cobra.Command{
	Use:   "extract <entity_type> <entity_id>",
	Short: "Extract durable memories from recent conversation history",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, entityID, err := parseOwner(args[0], args[1])
		if err != nil {
			return err
		}

		builder, err := getBuilder()
		if err != nil {
			return err
		}

		memories := builder.TriggerMemoryExtraction(cmd.Context(), entityType, entityID, extractForce)
		if len(memories) == 0 {
			fmt.Println("No memories extracted.")
			return nil
		}

		fmt.Printf("Extracted %d memories:\n", len(memories))
		for _, m := range memories {
			fmt.Printf("  [%s] (importance %.2f) %s\n", m.MemoryType, m.Importance, m.Content)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVarP(&extractForce, "force", "f", false, "extract even from a short history")
}
