package db

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// GetSummary returns the summary for an exact (entity, range), or nil if
// none exists.
func (c *Client) GetSummary(ctx context.Context, entityType models.EntityType, entityID string, rangeStart, rangeEnd int) (*models.Summary, error) {
	defer c.record("db_query", time.Now())

	results, err := surrealdb.Query[[]models.Summary](ctx, c.db, `
		SELECT * FROM summary
		WHERE entity_type = $entity_type
		  AND entity_id = $entity_id
		  AND message_range_start = $range_start
		  AND message_range_end = $range_end
		LIMIT 1
	`, map[string]any{
		"entity_type": string(entityType),
		"entity_id":   entityID,
		"range_start": rangeStart,
		"range_end":   rangeEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// CreateSummary inserts an immutable summary record. The unique range index
// rejects a duplicate insert with ErrAlreadyExists; callers treat that as
// losing the get-or-create race and re-read the winner.
func (c *Client) CreateSummary(ctx context.Context, s models.Summary) (*models.Summary, error) {
	defer c.record("db_query", time.Now())

	results, err := surrealdb.Query[[]models.Summary](ctx, c.db, `
		CREATE summary CONTENT {
			entity_type: $entity_type,
			entity_id: $entity_id,
			message_range_start: $range_start,
			message_range_end: $range_end,
			message_count: $message_count,
			summary_text: $summary_text,
			key_topics: $key_topics,
			entities_discussed: $entities_discussed,
			decisions_made: $decisions_made,
			embedding: $embedding,
			time_range_start: <datetime>$time_range_start,
			time_range_end: <datetime>$time_range_end,
			created_at: time::now()
		}
	`, map[string]any{
		"entity_type":        string(s.EntityType),
		"entity_id":          s.EntityID,
		"range_start":        s.RangeStart,
		"range_end":          s.RangeEnd,
		"message_count":      s.MessageCount,
		"summary_text":       s.SummaryText,
		"key_topics":         s.KeyTopics,
		"entities_discussed": s.EntitiesDiscussed,
		"decisions_made":     s.DecisionsMade,
		"embedding":          s.Embedding,
		"time_range_start":   s.TimeRangeStart.Format(time.RFC3339Nano),
		"time_range_end":     s.TimeRangeEnd.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("create summary: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create summary: empty result")
	}
	return &(*results)[0].Result[0], nil
}

// ListSummaries returns all summaries for one conversation owner ordered by
// range start. Used by the CLI for inspection.
func (c *Client) ListSummaries(ctx context.Context, entityType models.EntityType, entityID string) ([]models.Summary, error) {
	defer c.record("db_search", time.Now())

	results, err := surrealdb.Query[[]models.Summary](ctx, c.db, `
		SELECT * FROM summary
		WHERE entity_type = $entity_type AND entity_id = $entity_id
		ORDER BY message_range_start ASC
	`, map[string]any{
		"entity_type": string(entityType),
		"entity_id":   entityID,
	})
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Summary{}, nil
	}
	return (*results)[0].Result, nil
}
