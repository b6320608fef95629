package cli

import (
	"fmt"

	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/spf13/cobra"
)

var seedRole string

var seedCmd = &cobra.Command{
	Use:   "seed <entity_type> <entity_id> <content>",
	Short: "Append a chat message to a conversation",
	Long: `Appends one message to the conversation history. Mainly for local
development and demos; in production the conversation layer owns the
message stream.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, entityID, err := parseOwner(args[0], args[1])
		if err != nil {
			return err
		}
		if seedRole != "user" && seedRole != "assistant" {
			return fmt.Errorf("role must be 'user' or 'assistant', got %q", seedRole)
		}

		msg, err := dbClient.AppendMessage(cmd.Context(), models.Message{
			EntityType: entityType,
			EntityID:   entityID,
			Role:       seedRole,
			Content:    args[2],
		})
		if err != nil {
			return fmt.Errorf("append message: %w", err)
		}

		fmt.Printf("Appended %s message %s\n", msg.Role, msg.ID)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedRole, "role", "r", "user", "message role (user or assistant)")
}
