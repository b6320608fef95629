package db

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// messageRow mirrors the message table with a record ID.
type messageRow struct {
	ID         surrealmodels.RecordID `json:"id"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Role       string                 `json:"role"`
	Content    string                 `json:"content"`
	CreatedAt  time.Time              `json:"created_at"`
}

func (r messageRow) toModel() models.Message {
	id, _ := models.RecordIDString(r.ID)
	return models.Message{
		ID:         id,
		EntityType: models.EntityType(r.EntityType),
		EntityID:   r.EntityID,
		Role:       r.Role,
		Content:    r.Content,
		CreatedAt:  r.CreatedAt,
	}
}

// RecentMessages returns up to limit of the newest messages for one
// conversation owner, ordered oldest to newest.
func (c *Client) RecentMessages(ctx context.Context, entityType models.EntityType, entityID string, limit int) ([]models.Message, error) {
	defer c.record("db_search", time.Now())

	results, err := surrealdb.Query[[]messageRow](ctx, c.db, `
		SELECT * FROM message
		WHERE entity_type = $entity_type AND entity_id = $entity_id
		ORDER BY created_at DESC
		LIMIT $limit
	`, map[string]any{
		"entity_type": string(entityType),
		"entity_id":   entityID,
		"limit":       limit,
	})
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Message{}, nil
	}

	rows := (*results)[0].Result
	// Query returns newest-first; callers want chronological order.
	msgs := make([]models.Message, len(rows))
	for i, row := range rows {
		msgs[len(rows)-1-i] = row.toModel()
	}
	return msgs, nil
}

// AppendMessage stores a new chat message. Used by the CLI seeding command
// and tests; the production message stream is written by the conversation
// layer.
func (c *Client) AppendMessage(ctx context.Context, m models.Message) (*models.Message, error) {
	defer c.record("db_query", time.Now())

	results, err := surrealdb.Query[[]messageRow](ctx, c.db, `
		CREATE message CONTENT {
			entity_type: $entity_type,
			entity_id: $entity_id,
			role: $role,
			content: $content,
			created_at: time::now()
		}
	`, map[string]any{
		"entity_type": string(m.EntityType),
		"entity_id":   m.EntityID,
		"role":        m.Role,
		"content":     m.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("append message: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("append message: empty result")
	}
	out := (*results)[0].Result[0].toModel()
	return &out, nil
}
