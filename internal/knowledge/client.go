// Package knowledge provides the embedding-indexed knowledge graph over
// arbitrary domain entities.
package knowledge

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/embedding"
	"github.com/raphaelgruber/memctx-go/internal/metrics"
	"github.com/raphaelgruber/memctx-go/internal/models"
)

// Store is the persistence surface the graph client needs.
// *db.Client satisfies it.
type Store interface {
	UpsertGraphNode(ctx context.Context, node models.GraphNode) (*models.GraphNode, error)
	GetGraphNode(ctx context.Context, entityType, entityID string) (*models.GraphNode, error)
	GraphCandidates(ctx context.Context, entityTypes []string) ([]models.GraphNode, error)
}

// Client indexes domain entities by embedding and answers semantic search
// and relatedness queries. All methods return errors to the caller; the
// context builder is the degradation boundary, not this client.
type Client struct {
	store   Store
	emb     *embedding.Holder
	collect *metrics.Collector
}

// NewClient creates a knowledge graph client. The metrics collector may be
// nil.
func NewClient(store Store, emb *embedding.Holder, collect *metrics.Collector) *Client {
	return &Client{store: store, emb: emb, collect: collect}
}

// Upsert embeds content and stores/merges the node keyed by
// (entityID, entityType).
func (c *Client) Upsert(ctx context.Context, entityID, entityType, content string, metadata map[string]any) (*models.GraphNode, error) {
	emb, err := c.emb.Get()
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	vector, err := emb.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("embed node content: %w", err)
	}

	node := models.GraphNode{
		EntityID:   entityID,
		EntityType: entityType,
		Content:    content,
		Embedding:  vector,
		Metadata:   metadata,
	}
	return c.store.UpsertGraphNode(ctx, node)
}

// Search embeds the query and ranks every candidate node by cosine
// similarity, keeping those at or above minRelevance, top limit first.
func (c *Client) Search(ctx context.Context, queryText string, entityTypes []string, limit int, minRelevance float64) (*models.GraphSearchResult, error) {
	emb, err := c.emb.Get()
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	queryVec, err := emb.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return c.rank(ctx, queryVec, entityTypes, limit, minRelevance, nil)
}

// Related ranks nodes against one node's own embedding rather than a fresh
// query, excluding the source node itself.
func (c *Client) Related(ctx context.Context, entityID, entityType string, limit int) (*models.GraphSearchResult, error) {
	node, err := c.store.GetGraphNode(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("source node: %w", err)
	}

	exclude := nodeIdentity{entityType: entityType, entityID: entityID}
	return c.rank(ctx, node.Embedding, nil, limit, 0, &exclude)
}

type nodeIdentity struct {
	entityType string
	entityID   string
}

// rank computes cosine similarity of the reference vector against every
// candidate node and returns the ranked, filtered, truncated hits annotated
// with elapsed search time.
func (c *Client) rank(ctx context.Context, ref []float32, entityTypes []string, limit int, minRelevance float64, exclude *nodeIdentity) (*models.GraphSearchResult, error) {
	start := time.Now()

	candidates, err := c.store.GraphCandidates(ctx, entityTypes)
	if err != nil {
		return nil, fmt.Errorf("graph candidates: %w", err)
	}

	hits := make([]models.GraphHit, 0, len(candidates))
	for _, node := range candidates {
		if exclude != nil && node.EntityType == exclude.entityType && node.EntityID == exclude.entityID {
			continue
		}
		sim := models.Cosine(ref, node.Embedding)
		if sim < minRelevance {
			continue
		}
		hits = append(hits, models.GraphHit{
			EntityID:   node.EntityID,
			EntityType: node.EntityType,
			Content:    node.Content,
			Metadata:   node.Metadata,
			Similarity: sim,
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	elapsed := time.Since(start)
	if c.collect != nil {
		c.collect.RecordTiming(metrics.OpGraphSearch, elapsed)
	}

	return &models.GraphSearchResult{Hits: hits, Elapsed: elapsed}, nil
}
