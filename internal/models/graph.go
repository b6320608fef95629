package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// GraphNode is a knowledge-graph node indexing one domain entity by
// embedding. Nodes are keyed by (entity_id, entity_type) so upserts merge
// rather than duplicate.
type GraphNode struct {
	ID surrealmodels.RecordID `json:"id"`

	EntityID   string `json:"entity_id"`
	EntityType string `json:"entity_type"`

	Content   string         `json:"content"`
	Embedding []float32      `json:"embedding,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GraphHit is one ranked result from a graph search.
type GraphHit struct {
	EntityID   string         `json:"entity_id"`
	EntityType string         `json:"entity_type"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Similarity float64        `json:"similarity"`
}

// GraphSearchResult wraps graph hits with the elapsed search time.
type GraphSearchResult struct {
	Hits    []GraphHit    `json:"hits"`
	Elapsed time.Duration `json:"elapsed"`
}
