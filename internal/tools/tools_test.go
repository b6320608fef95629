package tools_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/memctx-go/internal/embedding"
	"github.com/raphaelgruber/memctx-go/internal/metrics"
	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/raphaelgruber/memctx-go/internal/service"
	"github.com/raphaelgruber/memctx-go/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger creates a logger for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// emptySource satisfies service.MessageSource with no history.
type emptySource struct{}

func (emptySource) RecentMessages(ctx context.Context, entityType models.EntityType, entityID string, limit int) ([]models.Message, error) {
	return nil, nil
}

// emptyMemories satisfies service.MemoryStore with no stored memories.
type emptyMemories struct{}

func (emptyMemories) CreateMemory(ctx context.Context, m models.Memory) (*models.Memory, error) {
	return &m, nil
}

func (emptyMemories) MemoriesWithEmbeddings(ctx context.Context, entityType models.EntityType, entityID string) ([]models.Memory, error) {
	return nil, nil
}

func (emptyMemories) BumpMemoryAccess(ctx context.Context, ids []string) error { return nil }

// unitEmbedder returns a fixed unit vector.
type unitEmbedder struct{}

func (unitEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (unitEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (unitEmbedder) Model() string  { return "unit" }
func (unitEmbedder) Dimension() int { return 3 }

func testDeps() *tools.Dependencies {
	holder := embedding.NewHolderFor(unitEmbedder{})
	scorer := service.NewScorer(emptyMemories{}, holder, nil)
	builder := service.NewBuilder(
		emptySource{}, nil, scorer, nil,
		nil, nil, nil,
		0.6, 30, 0, nil, nil,
	)
	return &tools.Dependencies{
		Builder: builder,
		Scorer:  scorer,
		Metrics: metrics.NewCollector(),
		Logger:  testLogger(),
	}
}

func TestRegisterAll(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test-memctx", Version: "0.0.1-test"}, nil)
	tools.RegisterAll(server, testDeps())

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run(ctx, serverTransport)
	}()
	time.Sleep(50 * time.Millisecond)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect successfully")
	defer session.Close()

	result, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, result.Tools, 6)

	names := map[string]bool{}
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"build_context", "trigger_extraction", "search_memories", "related_entities", "graph_search", "stats"} {
		assert.True(t, names[want], "tool %s registered", want)
	}

	t.Run("build_context over the wire", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name: "build_context",
			Arguments: map[string]any{
				"entity_type":     "staff",
				"entity_id":       "staff-1",
				"current_message": "hello",
			},
		})
		require.NoError(t, err)
		assert.False(t, res.IsError)
		require.NotEmpty(t, res.Content)
		text, ok := res.Content[0].(*mcp.TextContent)
		require.True(t, ok)
		assert.Contains(t, text.Text, "total_message_count")
	})

	t.Run("invalid entity_type is a tool error", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name: "build_context",
			Arguments: map[string]any{
				"entity_type":     "alien",
				"entity_id":       "x",
				"current_message": "hello",
			},
		})
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("stats returns metrics json", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "stats"})
		require.NoError(t, err)
		assert.False(t, res.IsError)
		text, ok := res.Content[0].(*mcp.TextContent)
		require.True(t, ok)
		assert.Contains(t, text.Text, "uptime_seconds")
	})

	t.Run("related_entities without graph is a tool error", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name: "related_entities",
			Arguments: map[string]any{
				"entity_type": "issue",
				"entity_id":   "11111111-1111-1111-1111-111111111111",
			},
		})
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}
