package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	// Context assembly - the primary entry point
	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_context",
		Description: "Assemble a tiered context bundle (recent messages, summary, key facts, memories, related entities) for a conversation",
	}, NewBuildContextHandler(deps))

	// Memory extraction - distill durable facts from recent history
	mcp.AddTool(server, &mcp.Tool{
		Name:        "trigger_extraction",
		Description: "Extract durable memories (facts, preferences, decisions, insights) from recent conversation history",
	}, NewTriggerExtractionHandler(deps))

	// Memory recall - scored semantic search over stored memories
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_memories",
		Description: "Search stored memories by semantic relevance with importance weighting and recency decay",
	}, NewSearchMemoriesHandler(deps))

	// Graph navigation
	mcp.AddTool(server, &mcp.Tool{
		Name:        "related_entities",
		Description: "Find entities semantically related to a known entity in the knowledge graph",
	}, NewRelatedEntitiesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_search",
		Description: "Search the knowledge graph by natural-language query",
	}, NewGraphSearchHandler(deps))

	// Runtime statistics
	mcp.AddTool(server, &mcp.Tool{
		Name:        "stats",
		Description: "Report in-memory runtime metrics for embeddings, LLM calls, and database operations",
	}, NewStatsHandler(deps))
}
