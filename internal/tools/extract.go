package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TriggerExtractionInput defines the input schema for the trigger_extraction tool.
type TriggerExtractionInput struct {
	EntityType string `json:"entity_type" jsonschema:"required,Conversation owner type,enum=staff|mentor"`
	EntityID   string `json:"entity_id" jsonschema:"required,Conversation owner ID"`
	Force      bool   `json:"force,omitempty" jsonschema:"Run even when the history is short"`
}

// NewTriggerExtractionHandler creates the trigger_extraction tool handler.
func NewTriggerExtractionHandler(deps *Dependencies) mcp.ToolHandlerFor[TriggerExtractionInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input TriggerExtractionInput) (
		*mcp.CallToolResult, any, error,
	) {
		entityType, ok := parseEntityType(input.EntityType)
		if !ok {
			return ErrorResult("Invalid entity_type", "Use 'staff' or 'mentor'"), nil, nil
		}
		if input.EntityID == "" {
			return ErrorResult("entity_id is required", ""), nil, nil
		}

		memories := deps.Builder.TriggerMemoryExtraction(ctx, entityType, input.EntityID, input.Force)
		if len(memories) == 0 {
			return TextResult("No memories extracted. The history may be too short or contain nothing durable."), nil, nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Extracted %d memories:\n\n", len(memories))
		for i, m := range memories {
			fmt.Fprintf(&sb, "%d. [%s] (importance %.2f) %s\n", i+1, m.MemoryType, m.Importance, m.Content)
		}
		return TextResult(sb.String()), nil, nil
	}
}
