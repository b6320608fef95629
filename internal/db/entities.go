package db

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// entityRow mirrors the domain_entity table.
type entityRow struct {
	ID       surrealmodels.RecordID `json:"id"`
	Kind     string                 `json:"kind"`
	Title    string                 `json:"title"`
	Status   *string                `json:"status,omitempty"`
	Priority *string                `json:"priority,omitempty"`
	Active   bool                   `json:"active"`
}

func (r entityRow) toCard() models.EntityCard {
	id, _ := models.RecordIDString(r.ID)
	card := models.EntityCard{ID: id, Type: r.Kind, Title: r.Title}
	if r.Status != nil {
		card.Status = *r.Status
	}
	if r.Priority != nil {
		card.Priority = *r.Priority
	}
	return card
}

// GetEntityCard fetches the small projection of one domain entity.
// Returns ErrNotFound if the entity no longer exists.
func (c *Client) GetEntityCard(ctx context.Context, kind, id string) (*models.EntityCard, error) {
	defer c.record("db_query", time.Now())

	results, err := surrealdb.Query[[]entityRow](ctx, c.db, `
		SELECT * FROM type::record("domain_entity", $id) WHERE kind = $kind
	`, map[string]any{"id": id, "kind": kind})
	if err != nil {
		return nil, fmt.Errorf("get entity card: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	card := (*results)[0].Result[0].toCard()
	return &card, nil
}

// ActiveCards lists active domain entities of one kind scoped to an owner.
func (c *Client) ActiveCards(ctx context.Context, ownerType models.EntityType, ownerID, kind string, limit int) ([]models.EntityCard, error) {
	defer c.record("db_search", time.Now())

	results, err := surrealdb.Query[[]entityRow](ctx, c.db, `
		SELECT * FROM domain_entity
		WHERE kind = $kind
		  AND active = true
		  AND owner_type = $owner_type
		  AND owner_id = $owner_id
		ORDER BY updated_at DESC
		LIMIT $limit
	`, map[string]any{
		"kind":       kind,
		"owner_type": string(ownerType),
		"owner_id":   ownerID,
		"limit":      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("active cards: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.EntityCard{}, nil
	}

	rows := (*results)[0].Result
	cards := make([]models.EntityCard, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, row.toCard())
	}
	return cards, nil
}

// UpsertEntityCard stores a domain entity projection. Used by seeding and
// by collaborators mirroring their entities into this store.
func (c *Client) UpsertEntityCard(ctx context.Context, id string, kind, title string, status, priority *string, active bool, ownerType *models.EntityType, ownerID *string) error {
	defer c.record("db_query", time.Now())

	var owner *string
	if ownerType != nil {
		s := string(*ownerType)
		owner = &s
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("domain_entity", $id) MERGE {
			kind: $kind,
			title: $title,
			status: $status,
			priority: $priority,
			active: $active,
			owner_type: $owner_type,
			owner_id: $owner_id,
			updated_at: time::now()
		}
	`, map[string]any{
		"id":         id,
		"kind":       kind,
		"title":      title,
		"status":     status,
		"priority":   priority,
		"active":     active,
		"owner_type": owner,
		"owner_id":   ownerID,
	})
	if err != nil {
		return fmt.Errorf("upsert entity card: %w", wrapQueryError(err))
	}
	return nil
}

// Capabilities returns the capability flags for a conversation owner.
// An unknown persona has no capabilities.
func (c *Client) Capabilities(ctx context.Context, entityType models.EntityType, entityID string) ([]string, error) {
	defer c.record("db_query", time.Now())

	results, err := surrealdb.Query[[]struct {
		Capabilities []string `json:"capabilities"`
	}](ctx, c.db, `
		SELECT capabilities FROM persona
		WHERE entity_type = $entity_type AND entity_id = $entity_id
		LIMIT 1
	`, map[string]any{
		"entity_type": string(entityType),
		"entity_id":   entityID,
	})
	if err != nil {
		return nil, fmt.Errorf("capabilities: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return []string{}, nil
	}
	return (*results)[0].Result[0].Capabilities, nil
}

// SetCapabilities stores capability flags for a conversation owner.
func (c *Client) SetCapabilities(ctx context.Context, entityType models.EntityType, entityID string, capabilities []string) error {
	defer c.record("db_query", time.Now())

	if capabilities == nil {
		capabilities = []string{}
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("persona", $key) MERGE {
			entity_type: $entity_type,
			entity_id: $entity_id,
			capabilities: $capabilities
		}
	`, map[string]any{
		"key":          string(entityType) + ":" + entityID,
		"entity_type":  string(entityType),
		"entity_id":    entityID,
		"capabilities": capabilities,
	})
	if err != nil {
		return fmt.Errorf("set capabilities: %w", wrapQueryError(err))
	}
	return nil
}
