// Package models defines data structures for the conversational memory engine.
package models

import (
	"fmt"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// EntityType identifies the kind of persona that owns a conversation.
type EntityType string

const (
	EntityStaff  EntityType = "staff"
	EntityMentor EntityType = "mentor"
)

// MemoryType classifies an extracted memory.
type MemoryType string

const (
	MemoryFact          MemoryType = "fact"
	MemoryPreference    MemoryType = "preference"
	MemoryDecision      MemoryType = "decision"
	MemoryInsight       MemoryType = "insight"
	MemoryEntityMention MemoryType = "entity_mention"
)

// ValidMemoryType reports whether t is one of the five known memory types.
func ValidMemoryType(t MemoryType) bool {
	switch t {
	case MemoryFact, MemoryPreference, MemoryDecision, MemoryInsight, MemoryEntityMention:
		return true
	}
	return false
}

// Memory is a durable, atomic fact/preference/decision/insight/entity
// mention extracted from conversation. Only the access-tracking fields and
// RelevanceScore mutate after creation.
type Memory struct {
	ID surrealmodels.RecordID `json:"id"`

	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`

	MemoryType MemoryType `json:"memory_type"`
	Content    string     `json:"content"`

	// Importance is assigned at extraction time and fixed thereafter.
	Importance float64 `json:"importance"`
	// RelevanceScore decays over calendar time; starts at 1.0.
	RelevanceScore float64 `json:"relevance_score"`

	Embedding []float32 `json:"embedding,omitempty"`

	// EntitiesMentioned maps domain entity type ("issue", "project", ...)
	// to the referenced IDs.
	EntitiesMentioned map[string][]string `json:"entities_mentioned,omitempty"`
	SourceMessageIDs  []string            `json:"source_message_ids,omitempty"`

	FirstMentionedAt time.Time `json:"first_mentioned_at"`
	LastAccessedAt   time.Time `json:"last_accessed_at"`
	AccessCount      int       `json:"access_count"`
}

// Validate checks the memory invariants.
func (m Memory) Validate(embeddingDim int) error {
	if !ValidMemoryType(m.MemoryType) {
		return fmt.Errorf("unknown memory type: %s", m.MemoryType)
	}
	if m.Content == "" {
		return fmt.Errorf("content must not be empty")
	}
	if m.Importance < 0 || m.Importance > 1 {
		return fmt.Errorf("importance out of range: %f", m.Importance)
	}
	if m.RelevanceScore < 0 || m.RelevanceScore > 1 {
		return fmt.Errorf("relevance_score out of range: %f", m.RelevanceScore)
	}
	if len(m.Embedding) > 0 && embeddingDim > 0 && len(m.Embedding) != embeddingDim {
		return fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(m.Embedding), embeddingDim)
	}
	return nil
}

// ScoredMemory pairs a memory with its computed retrieval relevance for one
// query. The score is similarity * importance * temporal decay, not the
// stored RelevanceScore.
type ScoredMemory struct {
	Memory
	Relevance float64 `json:"relevance"`
}
