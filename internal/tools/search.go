package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchMemoriesInput defines the input schema for the search_memories tool.
type SearchMemoriesInput struct {
	EntityType   string  `json:"entity_type" jsonschema:"required,Conversation owner type,enum=staff|mentor"`
	EntityID     string  `json:"entity_id" jsonschema:"required,Conversation owner ID"`
	Query        string  `json:"query" jsonschema:"required,Natural-language search query"`
	Limit        int     `json:"limit,omitempty" jsonschema:"Max results (default 10)"`
	MinRelevance float64 `json:"min_relevance,omitempty" jsonschema:"Relevance threshold 0-1 (default 0.6)"`
	DecayDays    float64 `json:"decay_days,omitempty" jsonschema:"Half-life in days for recency decay (default 30)"`
}

// NewSearchMemoriesHandler creates the search_memories tool handler.
func NewSearchMemoriesHandler(deps *Dependencies) mcp.ToolHandlerFor[SearchMemoriesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchMemoriesInput) (
		*mcp.CallToolResult, any, error,
	) {
		entityType, ok := parseEntityType(input.EntityType)
		if !ok {
			return ErrorResult("Invalid entity_type", "Use 'staff' or 'mentor'"), nil, nil
		}
		if input.EntityID == "" || input.Query == "" {
			return ErrorResult("entity_id and query are required", ""), nil, nil
		}

		limit := input.Limit
		if limit <= 0 {
			limit = 10
		}
		minRelevance := input.MinRelevance
		if minRelevance <= 0 {
			minRelevance = 0.6
		}
		decayDays := input.DecayDays
		if decayDays <= 0 {
			decayDays = 30
		}

		results, err := deps.Scorer.RelevantMemories(ctx, entityType, input.EntityID, input.Query, limit, minRelevance, decayDays)
		if err != nil {
			deps.Logger.Error("memory search failed", "error", err)
			return ErrorResult(fmt.Sprintf("Search failed: %v", err), "Check that the embedder is reachable"), nil, nil
		}
		if len(results) == 0 {
			return TextResult("No memories matched. Try a broader query or a lower min_relevance."), nil, nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Found %d memories:\n\n", len(results))
		for i, m := range results {
			fmt.Fprintf(&sb, "%d. [%s] (relevance %.3f, importance %.2f, accessed %d times)\n   %s\n",
				i+1, m.MemoryType, m.Relevance, m.Importance, m.AccessCount, m.Content)
		}
		return TextResult(sb.String()), nil, nil
	}
}
