package cli

import (
	"fmt"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/raphaelgruber/memctx-go/internal/service"
	"github.com/spf13/cobra"
)

var decayDaysFlag float64

var decayCmd = &cobra.Command{
	Use:   "decay <entity_type> <entity_id>",
	Short: "Snapshot decayed relevance scores onto stored memories",
	Long: `Recomputes each memory's stored relevance_score as its importance
decayed by age since last access. Retrieval always scores at read time;
this snapshot only keeps the stored column meaningful for inspection
and external reporting.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, entityID, err := parseOwner(args[0], args[1])
		if err != nil {
			return err
		}

		decayDays := decayDaysFlag
		if decayDays <= 0 {
			decayDays = cfg.DecayDays
		}

		memories, err := dbClient.MemoriesWithEmbeddings(cmd.Context(), entityType, entityID)
		if err != nil {
			return fmt.Errorf("load memories: %w", err)
		}

		now := time.Now()
		updated := 0
		for _, m := range memories {
			ref := m.LastAccessedAt
			if ref.IsZero() {
				ref = m.FirstMentionedAt
			}
			daysOld := now.Sub(ref).Hours() / 24

			// Similarity is query-dependent, so the snapshot stores the
			// query-independent part of the score.
			score := service.Relevance(1.0, m.Importance, daysOld, decayDays)

			id, err := models.RecordIDString(m.ID)
			if err != nil {
				continue
			}
			if err := dbClient.SnapshotRelevance(cmd.Context(), id, score); err != nil {
				return fmt.Errorf("snapshot relevance for %s: %w", id, err)
			}
			updated++
		}

		fmt.Printf("Updated %d of %d memories.\n", updated, len(memories))
		return nil
	},
}

func init() {
	decayCmd.Flags().Float64Var(&decayDaysFlag, "decay-days", 0, "decay half-life in days (default from config)")
}
