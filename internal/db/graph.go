package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// graphNodeKey builds the record key for a graph node from its composite
// (type, id) identity so upserts merge instead of duplicating.
func graphNodeKey(entityType, entityID string) string {
	return strings.ToLower(entityType) + ":" + entityID
}

// UpsertGraphNode creates or merges a knowledge-graph node keyed by
// (entity_id, entity_type).
func (c *Client) UpsertGraphNode(ctx context.Context, node models.GraphNode) (*models.GraphNode, error) {
	defer c.record("db_query", time.Now())

	results, err := surrealdb.Query[[]models.GraphNode](ctx, c.db, `
		UPSERT type::record("graph_node", $key) MERGE {
			entity_id: $entity_id,
			entity_type: $entity_type,
			content: $content,
			embedding: $embedding,
			metadata: $metadata,
			updated_at: time::now()
		}
	`, map[string]any{
		"key":         graphNodeKey(node.EntityType, node.EntityID),
		"entity_id":   node.EntityID,
		"entity_type": node.EntityType,
		"content":     node.Content,
		"embedding":   node.Embedding,
		"metadata":    node.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert graph node: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("upsert graph node: empty result")
	}
	return &(*results)[0].Result[0], nil
}

// GetGraphNode returns one node, or ErrNotFound.
func (c *Client) GetGraphNode(ctx context.Context, entityType, entityID string) (*models.GraphNode, error) {
	defer c.record("db_query", time.Now())

	results, err := surrealdb.Query[[]models.GraphNode](ctx, c.db, `
		SELECT * FROM type::record("graph_node", $key)
	`, map[string]any{"key": graphNodeKey(entityType, entityID)})
	if err != nil {
		return nil, fmt.Errorf("get graph node: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("graph node %s/%s: %w", entityType, entityID, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// GraphCandidates returns all nodes carrying an embedding, optionally
// filtered by entity type. The knowledge client ranks them by cosine
// similarity in process.
func (c *Client) GraphCandidates(ctx context.Context, entityTypes []string) ([]models.GraphNode, error) {
	defer c.record("db_search", time.Now())

	typeClause := ""
	vars := map[string]any{}
	if len(entityTypes) > 0 {
		typeClause = "AND entity_type IN $types"
		vars["types"] = entityTypes
	}

	sql := fmt.Sprintf(`
		SELECT * FROM graph_node
		WHERE array::len(embedding) > 0 %s
	`, typeClause)

	results, err := surrealdb.Query[[]models.GraphNode](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("graph candidates: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.GraphNode{}, nil
	}
	return (*results)[0].Result, nil
}
