package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/raphaelgruber/memctx-go/internal/service"
)

// BuildContextInput defines the input schema for the build_context tool.
type BuildContextInput struct {
	EntityType     string `json:"entity_type" jsonschema:"required,Conversation owner type,enum=staff|mentor"`
	EntityID       string `json:"entity_id" jsonschema:"required,Conversation owner ID"`
	CurrentMessage string `json:"current_message" jsonschema:"required,The incoming user message"`
	MaxMessages    int    `json:"max_messages,omitempty" jsonschema:"Max messages to fetch (default 100)"`
	MaxTokens      int    `json:"max_tokens,omitempty" jsonschema:"Soft token budget for the bundle (default 6000)"`
}

// parseEntityType validates the owner type string.
func parseEntityType(s string) (models.EntityType, bool) {
	switch models.EntityType(s) {
	case models.EntityStaff:
		return models.EntityStaff, true
	case models.EntityMentor:
		return models.EntityMentor, true
	}
	return "", false
}

// NewBuildContextHandler creates the build_context tool handler.
// Always returns a bundle; degraded tiers come back empty.
func NewBuildContextHandler(deps *Dependencies) mcp.ToolHandlerFor[BuildContextInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input BuildContextInput) (
		*mcp.CallToolResult, any, error,
	) {
		entityType, ok := parseEntityType(input.EntityType)
		if !ok {
			return ErrorResult("Invalid entity_type", "Use 'staff' or 'mentor'"), nil, nil
		}
		if input.EntityID == "" {
			return ErrorResult("entity_id is required", ""), nil, nil
		}

		bundle := deps.Builder.BuildContext(ctx, entityType, input.EntityID, input.CurrentMessage, service.BuildOptions{
			MaxMessages: input.MaxMessages,
			MaxTokens:   input.MaxTokens,
		})

		jsonBytes, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return ErrorResult("Failed to encode bundle", ""), nil, nil
		}

		deps.Logger.Info("context built",
			"entity_type", entityType, "entity_id", input.EntityID,
			"total_messages", bundle.TotalMessageCount,
			"has_summary", bundle.Metadata.HasSummary,
			"memories", bundle.Metadata.MemoryCount,
			"related", bundle.Metadata.RelatedCount)
		return TextResult(string(jsonBytes)), nil, nil
	}
}
