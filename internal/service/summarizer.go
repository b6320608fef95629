package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/memctx-go/internal/db"
	"github.com/raphaelgruber/memctx-go/internal/embedding"
	"github.com/raphaelgruber/memctx-go/internal/llm"
	"github.com/raphaelgruber/memctx-go/internal/models"
)

// minSummaryMessages is the smallest range worth summarizing.
const minSummaryMessages = 5

const summarySystemPrompt = `You condense conversation transcripts.
Return ONLY a JSON object, no prose:
{"summary": "...", "key_topics": ["..."], "entities": {"<entity_type>": ["<id>", ...]}, "decisions": ["..."]}

The summary covers what was discussed and decided. key_topics are short
phrases. decisions list concrete decisions made, empty if none.`

// Summarizer produces immutable, idempotent summaries of closed message
// ranges. Ranges are half-open [start, end) over message indices.
type Summarizer struct {
	store  SummaryStore
	model  *llm.Model
	emb    *embedding.Holder
	logger *slog.Logger
}

// NewSummarizer creates a summarizer. model may be nil.
func NewSummarizer(store SummaryStore, model *llm.Model, emb *embedding.Holder, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{store: store, model: model, emb: emb, logger: logger}
}

// GetOrCreate returns the stored summary for (entity, range) if one exists,
// otherwise generates, persists, and returns it. Returns (nil, nil) when
// preconditions are unmet or the LLM call/parse soft-fails; only store
// failures surface as errors. Repeated calls for the same range never
// create duplicates or re-invoke the LLM: the unique range index makes a
// concurrent first-time race resolve to a single winner, and the loser
// re-reads the winner's record.
func (s *Summarizer) GetOrCreate(ctx context.Context, entityType models.EntityType, entityID string, rangeStart, rangeEnd int, messages []models.Message) (*models.Summary, error) {
	existing, err := s.store.GetSummary(ctx, entityType, entityID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("lookup summary: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	if s.model == nil || len(messages) < minSummaryMessages {
		return nil, nil
	}

	raw, err := s.model.Complete(ctx, summarySystemPrompt, renderTranscript(messages), 800)
	if err != nil {
		s.logger.Warn("summary LLM call failed",
			"entity_type", entityType, "entity_id", entityID,
			"range_start", rangeStart, "range_end", rangeEnd, "error", err)
		return nil, nil
	}

	payload, err := llm.ParseSummary(raw)
	if err != nil {
		s.logger.Warn("summary output unparseable",
			"entity_type", entityType, "entity_id", entityID, "error", err)
		return nil, nil
	}

	var vector []float32
	if emb, err := s.emb.Get(); err == nil {
		if vector, err = emb.Embed(ctx, payload.Summary); err != nil {
			s.logger.Warn("summary embedding failed", "error", err)
			vector = nil
		}
	}

	summary := models.Summary{
		EntityType:        entityType,
		EntityID:          entityID,
		RangeStart:        rangeStart,
		RangeEnd:          rangeEnd,
		MessageCount:      len(messages),
		SummaryText:       payload.Summary,
		KeyTopics:         payload.KeyTopics,
		EntitiesDiscussed: payload.Entities,
		DecisionsMade:     payload.Decisions,
		Embedding:         vector,
		TimeRangeStart:    messages[0].CreatedAt,
		TimeRangeEnd:      messages[len(messages)-1].CreatedAt,
	}

	created, err := s.store.CreateSummary(ctx, summary)
	if err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			// Lost the first-writer race; the winner's record is the
			// canonical one.
			return s.store.GetSummary(ctx, entityType, entityID, rangeStart, rangeEnd)
		}
		return nil, fmt.Errorf("persist summary: %w", err)
	}
	return created, nil
}
