// Package service implements the conversational memory engine: extraction,
// relevance scoring, summarization, and context assembly.
package service

import (
	"context"

	"github.com/raphaelgruber/memctx-go/internal/models"
)

// MessageSource supplies the ordered message window for one conversation
// owner. The production implementation is the SurrealDB message table; the
// conversation layer may substitute its own store.
type MessageSource interface {
	// RecentMessages returns up to limit of the newest messages, ordered
	// oldest to newest.
	RecentMessages(ctx context.Context, entityType models.EntityType, entityID string, limit int) ([]models.Message, error)
}

// MemoryStore persists extracted memories. *db.Client satisfies it.
type MemoryStore interface {
	CreateMemory(ctx context.Context, m models.Memory) (*models.Memory, error)
	MemoriesWithEmbeddings(ctx context.Context, entityType models.EntityType, entityID string) ([]models.Memory, error)
	BumpMemoryAccess(ctx context.Context, ids []string) error
}

// SummaryStore persists conversation summaries. *db.Client satisfies it.
type SummaryStore interface {
	GetSummary(ctx context.Context, entityType models.EntityType, entityID string, rangeStart, rangeEnd int) (*models.Summary, error)
	CreateSummary(ctx context.Context, s models.Summary) (*models.Summary, error)
}

// EntityFetcher hydrates small projections of domain entities referenced in
// conversation. Implementations return db.ErrNotFound (or a wrapper) for
// entities that no longer exist.
type EntityFetcher interface {
	GetEntityCard(ctx context.Context, kind, id string) (*models.EntityCard, error)
}

// WorkSource supplies the "current work" snapshot listings and the owner's
// capability flags.
type WorkSource interface {
	ActiveCards(ctx context.Context, ownerType models.EntityType, ownerID, kind string, limit int) ([]models.EntityCard, error)
	Capabilities(ctx context.Context, entityType models.EntityType, entityID string) ([]string, error)
}

// RelatedSearcher is the slice of the knowledge graph client the builder
// uses for related-entity discovery.
type RelatedSearcher interface {
	Related(ctx context.Context, entityID, entityType string, limit int) (*models.GraphSearchResult, error)
}
