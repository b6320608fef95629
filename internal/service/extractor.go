package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/memctx-go/internal/embedding"
	"github.com/raphaelgruber/memctx-go/internal/llm"
	"github.com/raphaelgruber/memctx-go/internal/models"
)

// minExtractionMessages is the smallest window worth extracting from.
const minExtractionMessages = 3

const extractionSystemPrompt = `You extract durable memories from conversation transcripts.
Return ONLY a JSON array, no prose. Each element:
{"type": "...", "content": "...", "importance": 0.0-1.0, "entities": {"<entity_type>": ["<id>", ...]}}

Types: fact, preference, decision, insight, entity_mention.

Importance rubric:
- 0.8-1.0 critical: identity, hard constraints, commitments
- 0.5-0.7 important: decisions, strong preferences, recurring topics
- 0.3-0.4 contextual: background details worth keeping
- below 0.3 trivial: small talk, transient details

Only include memories worth remembering across conversations. Return [] if
there are none.`

// Extractor asks an LLM to distill a message window into durable memories,
// embeds the survivors, and persists them.
type Extractor struct {
	store  MemoryStore
	model  *llm.Model
	emb    *embedding.Holder
	logger *slog.Logger
}

// NewExtractor creates a memory extractor. model may be nil (no LLM
// configured), in which case extraction is a no-op.
func NewExtractor(store MemoryStore, model *llm.Model, emb *embedding.Holder, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{store: store, model: model, emb: emb, logger: logger}
}

// ExtractMemories runs one extraction pass over the message window and
// returns the memories it persisted. Preconditions (no LLM, fewer than 3
// messages) and every failure mode return an empty slice; extraction never
// errors into the caller.
func (e *Extractor) ExtractMemories(ctx context.Context, entityType models.EntityType, entityID string, messages []models.Message, minImportance float64) []models.Memory {
	if e.model == nil || len(messages) < minExtractionMessages {
		return []models.Memory{}
	}

	transcript := renderTranscript(messages)
	raw, err := e.model.Complete(ctx, extractionSystemPrompt, transcript, 1500)
	if err != nil {
		e.logger.Warn("memory extraction LLM call failed",
			"entity_type", entityType, "entity_id", entityID, "error", err)
		return []models.Memory{}
	}

	candidates, err := llm.ParseMemories(raw)
	if err != nil {
		// Garbled output commits nothing.
		e.logger.Warn("memory extraction produced unparseable output",
			"entity_type", entityType, "entity_id", entityID, "error", err)
		return []models.Memory{}
	}

	sourceIDs := make([]string, 0, len(messages))
	for _, m := range messages {
		sourceIDs = append(sourceIDs, m.ID)
	}

	stored := make([]models.Memory, 0, len(candidates))
	for _, c := range candidates {
		memType := models.MemoryType(strings.ToLower(strings.TrimSpace(c.Type)))
		if !models.ValidMemoryType(memType) {
			e.logger.Debug("skipping candidate with unknown memory type", "type", c.Type)
			continue
		}

		importance := clamp01(c.Importance)
		if importance < minImportance {
			continue
		}

		vector, err := e.embedContent(ctx, c.Content)
		if err != nil {
			// Each persisted memory is independent; stop here and keep
			// what already committed.
			e.logger.Warn("embedding failed during extraction, stopping batch",
				"entity_type", entityType, "entity_id", entityID, "error", err)
			break
		}

		memory := models.Memory{
			EntityType:        entityType,
			EntityID:          entityID,
			MemoryType:        memType,
			Content:           c.Content,
			Importance:        importance,
			RelevanceScore:    1.0,
			Embedding:         vector,
			EntitiesMentioned: c.Entities,
			SourceMessageIDs:  sourceIDs,
		}

		created, err := e.store.CreateMemory(ctx, memory)
		if err != nil {
			e.logger.Warn("failed to persist memory",
				"entity_type", entityType, "entity_id", entityID, "error", err)
			continue
		}
		stored = append(stored, *created)
	}

	if len(stored) > 0 {
		e.logger.Info("extracted memories",
			"entity_type", entityType, "entity_id", entityID,
			"candidates", len(candidates), "stored", len(stored))
	}
	return stored
}

func (e *Extractor) embedContent(ctx context.Context, content string) ([]float32, error) {
	emb, err := e.emb.Get()
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	return emb.Embed(ctx, content)
}

// renderTranscript formats messages as a role-tagged transcript.
func renderTranscript(messages []models.Message) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
