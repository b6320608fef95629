package cli

import (
	"encoding/json"
	"fmt"

	"github.com/raphaelgruber/memctx-go/internal/service"
	"github.com/spf13/cobra"
)

var (
	contextMaxMessages int
	contextMaxTokens   int
	contextJSON        bool
)

var contextCmd = &cobra.Command{
	Use:   "context <entity_type> <entity_id> [message]",
	Short: "Assemble a context bundle for a conversation",
	Long: `Assembles the tiered context bundle for the given conversation owner:
the last messages verbatim, a mid-range summary when the history is long
enough, recalled key facts, scored memories, related entities, and the
current-work snapshot.

The optional message argument stands in for the incoming user message and
drives relevance scoring and reference extraction.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, entityID, err := parseOwner(args[0], args[1])
		if err != nil {
			return err
		}
		message := ""
		if len(args) == 3 {
			message = args[2]
		}

		builder, err := getBuilder()
		if err != nil {
			return err
		}

		bundle := builder.BuildContext(cmd.Context(), entityType, entityID, message, service.BuildOptions{
			MaxMessages: contextMaxMessages,
			MaxTokens:   contextMaxTokens,
		})

		if contextJSON {
			out, err := json.MarshalIndent(bundle, "", "  ")
			if err != nil {
				return fmt.Errorf("encode bundle: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("Context for %s:%s (%d messages total)\n\n", entityType, entityID, bundle.TotalMessageCount)

		if bundle.ConversationSummary != nil {
			fmt.Printf("Summary [%d,%d):\n  %s\n\n",
				bundle.ConversationSummary.RangeStart,
				bundle.ConversationSummary.RangeEnd,
				bundle.ConversationSummary.SummaryText)
		}

		if len(bundle.KeyFacts) > 0 {
			fmt.Println("Key facts:")
			for _, f := range bundle.KeyFacts {
				fmt.Printf("  - [%s] (%.3f) %s\n", f.MemoryType, f.Relevance, f.Content)
			}
			fmt.Println()
		}

		if len(bundle.Memories) > 0 {
			fmt.Println("Memories:")
			for _, m := range bundle.Memories {
				fmt.Printf("  - [%s] (%.3f) %s\n", m.MemoryType, m.Relevance, m.Content)
			}
			fmt.Println()
		}

		for kind, cards := range bundle.RelatedEntities {
			fmt.Printf("Related %ss:\n", kind)
			for _, c := range cards {
				fmt.Printf("  - %s (%.3f)\n", c.Title, c.Score)
			}
		}

		if len(bundle.RecentMessages) > 0 {
			fmt.Println("Recent messages:")
			for _, m := range bundle.RecentMessages {
				fmt.Printf("  %s: %s\n", m.Role, m.Content)
			}
		}

		return nil
	},
}

func init() {
	contextCmd.Flags().IntVar(&contextMaxMessages, "max-messages", 0, "max messages to fetch (default from config)")
	contextCmd.Flags().IntVar(&contextMaxTokens, "max-tokens", 0, "soft token budget (default from config)")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "print the raw bundle as JSON")
}
