package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/embedding"
	"github.com/raphaelgruber/memctx-go/internal/models"
)

// Scorer ranks stored memories against a query by combining semantic
// similarity, extraction-time importance, and exponential temporal decay.
type Scorer struct {
	store  MemoryStore
	emb    *embedding.Holder
	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewScorer creates a relevance scorer.
func NewScorer(store MemoryStore, emb *embedding.Holder, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{store: store, emb: emb, logger: logger, now: time.Now}
}

// Relevance computes the retrieval score for one memory:
//
//	similarity * importance * exp(-daysOld / decayDays)
//
// For fixed similarity and importance the score strictly decreases as the
// memory ages.
func Relevance(similarity, importance, daysOld, decayDays float64) float64 {
	if decayDays <= 0 {
		decayDays = 1
	}
	if daysOld < 0 {
		daysOld = 0
	}
	return similarity * importance * math.Exp(-daysOld/decayDays)
}

// RelevantMemories returns up to limit memories for the owner scoring at
// least minRelevance against queryText, ranked best first. Returned
// memories get their access statistics bumped in the same operation as the
// read; memories without an embedding are excluded, never an error.
func (s *Scorer) RelevantMemories(ctx context.Context, entityType models.EntityType, entityID, queryText string, limit int, minRelevance, decayDays float64) ([]models.ScoredMemory, error) {
	emb, err := s.emb.Get()
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	queryVec, err := emb.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := s.store.MemoriesWithEmbeddings(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}

	now := s.now()
	scored := make([]models.ScoredMemory, 0, len(candidates))
	for _, m := range candidates {
		similarity := models.Cosine(queryVec, m.Embedding)
		daysOld := now.Sub(m.FirstMentionedAt).Hours() / 24
		relevance := Relevance(similarity, m.Importance, daysOld, decayDays)
		if relevance < minRelevance {
			continue
		}
		scored = append(scored, models.ScoredMemory{Memory: m, Relevance: relevance})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Relevance > scored[j].Relevance })
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	if len(scored) > 0 {
		ids := make([]string, 0, len(scored))
		for _, m := range scored {
			if id, err := models.RecordIDString(m.ID); err == nil {
				ids = append(ids, id)
			}
		}
		// Access statistics feed future product decisions; the scorer
		// itself never reads them.
		if err := s.store.BumpMemoryAccess(ctx, ids); err != nil {
			s.logger.Warn("failed to update memory access stats", "error", err)
		}
	}

	return scored, nil
}
