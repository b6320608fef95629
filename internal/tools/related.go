package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/memctx-go/internal/db"
)

// RelatedEntitiesInput defines the input schema for the related_entities tool.
type RelatedEntitiesInput struct {
	EntityType string `json:"entity_type" jsonschema:"required,Entity kind (issue, project, document, milestone)"`
	EntityID   string `json:"entity_id" jsonschema:"required,Entity UUID"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Max related entities (default 5)"`
}

// GraphSearchInput defines the input schema for the graph_search tool.
type GraphSearchInput struct {
	Query        string   `json:"query" jsonschema:"required,Natural-language search query"`
	EntityTypes  []string `json:"entity_types,omitempty" jsonschema:"Restrict to these entity kinds"`
	Limit        int      `json:"limit,omitempty" jsonschema:"Max results (default 10)"`
	MinRelevance float64  `json:"min_relevance,omitempty" jsonschema:"Similarity threshold 0-1 (default 0)"`
}

// NewRelatedEntitiesHandler creates the related_entities tool handler.
func NewRelatedEntitiesHandler(deps *Dependencies) mcp.ToolHandlerFor[RelatedEntitiesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RelatedEntitiesInput) (
		*mcp.CallToolResult, any, error,
	) {
		if deps.Knowledge == nil {
			return ErrorResult("Knowledge graph is not configured", ""), nil, nil
		}
		if input.EntityType == "" || input.EntityID == "" {
			return ErrorResult("entity_type and entity_id are required", ""), nil, nil
		}
		limit := input.Limit
		if limit <= 0 {
			limit = 5
		}

		result, err := deps.Knowledge.Related(ctx, input.EntityID, input.EntityType, limit)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return ErrorResult("Unknown entity", "Upsert the entity into the graph first"), nil, nil
			}
			deps.Logger.Error("related-entity lookup failed", "error", err)
			return ErrorResult(fmt.Sprintf("Lookup failed: %v", err), ""), nil, nil
		}
		if len(result.Hits) == 0 {
			return TextResult("No related entities found."), nil, nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Found %d related entities in %s:\n\n", len(result.Hits), result.Elapsed)
		for i, hit := range result.Hits {
			fmt.Fprintf(&sb, "%d. %s:%s (similarity %.3f) %s\n", i+1, hit.EntityType, hit.EntityID, hit.Similarity, hit.Content)
		}
		return TextResult(sb.String()), nil, nil
	}
}

// NewGraphSearchHandler creates the graph_search tool handler.
func NewGraphSearchHandler(deps *Dependencies) mcp.ToolHandlerFor[GraphSearchInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GraphSearchInput) (
		*mcp.CallToolResult, any, error,
	) {
		if deps.Knowledge == nil {
			return ErrorResult("Knowledge graph is not configured", ""), nil, nil
		}
		if input.Query == "" {
			return ErrorResult("query is required", ""), nil, nil
		}
		limit := input.Limit
		if limit <= 0 {
			limit = 10
		}

		result, err := deps.Knowledge.Search(ctx, input.Query, input.EntityTypes, limit, input.MinRelevance)
		if err != nil {
			deps.Logger.Error("graph search failed", "error", err)
			return ErrorResult(fmt.Sprintf("Search failed: %v", err), "Check that the embedder is reachable"), nil, nil
		}
		if len(result.Hits) == 0 {
			return TextResult("No entities matched."), nil, nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Found %d entities in %s:\n\n", len(result.Hits), result.Elapsed)
		for i, hit := range result.Hits {
			fmt.Fprintf(&sb, "%d. %s:%s (similarity %.3f) %s\n", i+1, hit.EntityType, hit.EntityID, hit.Similarity, hit.Content)
		}
		return TextResult(sb.String()), nil, nil
	}
}
