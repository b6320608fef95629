package db

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// CreateMemory persists a single extracted memory. Each write is atomic and
// independent, so a partially-completed extraction batch leaves no
// inconsistent state.
func (c *Client) CreateMemory(ctx context.Context, m models.Memory) (*models.Memory, error) {
	defer c.record("db_query", time.Now())

	results, err := surrealdb.Query[[]models.Memory](ctx, c.db, `
		CREATE memory CONTENT {
			entity_type: $entity_type,
			entity_id: $entity_id,
			memory_type: $memory_type,
			content: $content,
			importance: $importance,
			relevance_score: $relevance_score,
			embedding: $embedding,
			entities_mentioned: $entities_mentioned,
			source_message_ids: $source_message_ids,
			first_mentioned_at: time::now(),
			last_accessed_at: time::now(),
			access_count: 0
		}
	`, map[string]any{
		"entity_type":        string(m.EntityType),
		"entity_id":          m.EntityID,
		"memory_type":        string(m.MemoryType),
		"content":            m.Content,
		"importance":         m.Importance,
		"relevance_score":    m.RelevanceScore,
		"embedding":          m.Embedding,
		"entities_mentioned": m.EntitiesMentioned,
		"source_message_ids": m.SourceMessageIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create memory: empty result")
	}
	return &(*results)[0].Result[0], nil
}

// MemoriesWithEmbeddings returns all memories for one conversation owner
// that carry an embedding. Memories without one are excluded here rather
// than erroring downstream.
func (c *Client) MemoriesWithEmbeddings(ctx context.Context, entityType models.EntityType, entityID string) ([]models.Memory, error) {
	defer c.record("db_search", time.Now())

	results, err := surrealdb.Query[[]models.Memory](ctx, c.db, `
		SELECT * FROM memory
		WHERE entity_type = $entity_type
		  AND entity_id = $entity_id
		  AND array::len(embedding) > 0
	`, map[string]any{
		"entity_type": string(entityType),
		"entity_id":   entityID,
	})
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Memory{}, nil
	}
	return (*results)[0].Result, nil
}

// BumpMemoryAccess updates access tracking for all returned memories in one
// statement so the bump commits atomically with the retrieval.
func (c *Client) BumpMemoryAccess(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	defer c.record("db_query", time.Now())

	records := make([]any, 0, len(ids))
	for _, id := range ids {
		records = append(records, recordID("memory", id))
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE memory SET
			last_accessed_at = time::now(),
			access_count += 1
		WHERE id IN $ids
	`, map[string]any{"ids": records})
	if err != nil {
		return fmt.Errorf("bump memory access: %w", wrapQueryError(err))
	}
	return nil
}

// SnapshotRelevance persists a recomputed relevance score for one memory.
// Used by the maintenance decay action; retrieval always recomputes decay
// from first_mentioned_at.
func (c *Client) SnapshotRelevance(ctx context.Context, id string, score float64) error {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	defer c.record("db_query", time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("memory", $id) SET relevance_score = $score
	`, map[string]any{"id": id, "score": score})
	if err != nil {
		return fmt.Errorf("snapshot relevance: %w", wrapQueryError(err))
	}
	return nil
}

// CountMemories returns the number of memories for one conversation owner.
func (c *Client) CountMemories(ctx context.Context, entityType models.EntityType, entityID string) (int, error) {
	defer c.record("db_query", time.Now())

	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, `
		SELECT count() AS c FROM memory
		WHERE entity_type = $entity_type AND entity_id = $entity_id
		GROUP ALL
	`, map[string]any{
		"entity_type": string(entityType),
		"entity_id":   entityID,
	})
	if err != nil {
		return 0, fmt.Errorf("count memories: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}
