package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Summary condenses a contiguous, closed message range for one entity.
// Ranges are half-open [RangeStart, RangeEnd) over message indices, oldest
// message first. Summaries are immutable once created; get-or-create keyed
// by (entity_type, entity_id, range_start, range_end) guarantees at most one
// per range.
type Summary struct {
	ID surrealmodels.RecordID `json:"id"`

	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`

	RangeStart   int `json:"message_range_start"`
	RangeEnd     int `json:"message_range_end"`
	MessageCount int `json:"message_count"`

	SummaryText       string              `json:"summary_text"`
	KeyTopics         []string            `json:"key_topics,omitempty"`
	EntitiesDiscussed map[string][]string `json:"entities_discussed,omitempty"`
	DecisionsMade     []string            `json:"decisions_made,omitempty"`

	Embedding []float32 `json:"embedding,omitempty"`

	TimeRangeStart time.Time `json:"time_range_start"`
	TimeRangeEnd   time.Time `json:"time_range_end"`
	CreatedAt      time.Time `json:"created_at"`
}
