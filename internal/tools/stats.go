package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatsInput defines the input schema for the stats tool.
type StatsInput struct{}

// NewStatsHandler creates the stats tool handler reporting runtime metrics.
func NewStatsHandler(deps *Dependencies) mcp.ToolHandlerFor[StatsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (
		*mcp.CallToolResult, any, error,
	) {
		snapshot := deps.Metrics.Snapshot()
		jsonBytes, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return ErrorResult("Failed to encode stats", ""), nil, nil
		}
		return TextResult(string(jsonBytes)), nil, nil
	}
}
