package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/embedding"
	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestRelevance(t *testing.T) {
	t.Run("fresh memory keeps full score", func(t *testing.T) {
		assert.InDelta(t, 0.9, Relevance(1.0, 0.9, 0, 30), 1e-9)
	})

	t.Run("one half-life decays by factor e", func(t *testing.T) {
		// 0.9 * exp(-1) ≈ 0.331
		assert.InDelta(t, 0.331, Relevance(1.0, 0.9, 30, 30), 0.001)
	})

	t.Run("strictly decreasing with age", func(t *testing.T) {
		prev := Relevance(0.8, 0.7, 0, 30)
		for _, days := range []float64{1, 5, 30, 90, 365} {
			cur := Relevance(0.8, 0.7, days, 30)
			assert.Less(t, cur, prev, "at %v days", days)
			prev = cur
		}
	})

	t.Run("bounded by similarity times importance", func(t *testing.T) {
		assert.LessOrEqual(t, Relevance(0.8, 0.7, 10, 30), 0.8*0.7)
	})

	t.Run("negative age treated as fresh", func(t *testing.T) {
		assert.Equal(t, Relevance(1, 1, 0, 30), Relevance(1, 1, -5, 30))
	})

	t.Run("zero decay days does not divide by zero", func(t *testing.T) {
		assert.NotPanics(t, func() { Relevance(1, 1, 10, 0) })
	})
}

func TestRelevantMemories(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	makeMemory := func(id string, vec []float32, importance float64, age time.Duration) models.Memory {
		return models.Memory{
			ID:               surrealmodels.NewRecordID("memory", id),
			EntityType:       models.EntityStaff,
			EntityID:         "staff-1",
			MemoryType:       models.MemoryFact,
			Content:          "content " + id,
			Importance:       importance,
			RelevanceScore:   1.0,
			Embedding:        vec,
			FirstMentionedAt: now.Add(-age),
		}
	}

	newScorer := func(store *fakeMemoryStore, emb *fakeEmbedder) *Scorer {
		s := NewScorer(store, embedding.NewHolderFor(emb), nil)
		s.now = func() time.Time { return now }
		return s
	}

	t.Run("ranked best first and truncated", func(t *testing.T) {
		emb := newFakeEmbedder()
		emb.vectors["query"] = []float32{1, 0, 0}
		store := &fakeMemoryStore{memories: []models.Memory{
			makeMemory("exact", []float32{1, 0, 0}, 0.9, 0),
			makeMemory("close", []float32{1, 0.3, 0}, 0.9, 0),
			makeMemory("far", []float32{0, 1, 0}, 0.9, 0),
		}}

		got, err := newScorer(store, emb).RelevantMemories(ctx, models.EntityStaff, "staff-1", "query", 2, 0.5, 30)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "content exact", got[0].Content)
		assert.Equal(t, "content close", got[1].Content)
		assert.Greater(t, got[0].Relevance, got[1].Relevance)
	})

	t.Run("threshold filters low scores", func(t *testing.T) {
		emb := newFakeEmbedder()
		emb.vectors["query"] = []float32{1, 0, 0}
		store := &fakeMemoryStore{memories: []models.Memory{
			makeMemory("strong", []float32{1, 0, 0}, 0.9, 0),
			makeMemory("weak", []float32{1, 0, 0}, 0.2, 0),
		}}

		got, err := newScorer(store, emb).RelevantMemories(ctx, models.EntityStaff, "staff-1", "query", 10, 0.6, 30)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "content strong", got[0].Content)
	})

	t.Run("old memories decay below threshold", func(t *testing.T) {
		emb := newFakeEmbedder()
		emb.vectors["query"] = []float32{1, 0, 0}
		store := &fakeMemoryStore{memories: []models.Memory{
			makeMemory("fresh", []float32{1, 0, 0}, 0.9, 0),
			makeMemory("stale", []float32{1, 0, 0}, 0.9, 120*24*time.Hour),
		}}

		got, err := newScorer(store, emb).RelevantMemories(ctx, models.EntityStaff, "staff-1", "query", 10, 0.6, 30)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "content fresh", got[0].Content)
	})

	t.Run("access stats bumped for returned memories only", func(t *testing.T) {
		emb := newFakeEmbedder()
		emb.vectors["query"] = []float32{1, 0, 0}
		store := &fakeMemoryStore{memories: []models.Memory{
			makeMemory("hit", []float32{1, 0, 0}, 0.9, 0),
			makeMemory("miss", []float32{0, 1, 0}, 0.9, 0),
		}}

		_, err := newScorer(store, emb).RelevantMemories(ctx, models.EntityStaff, "staff-1", "query", 10, 0.6, 30)
		require.NoError(t, err)
		require.Len(t, store.bumped, 1)
		assert.Equal(t, []string{"hit"}, store.bumped[0])
	})

	t.Run("bump failure does not fail the read", func(t *testing.T) {
		emb := newFakeEmbedder()
		emb.vectors["query"] = []float32{1, 0, 0}
		store := &fakeMemoryStore{
			memories: []models.Memory{makeMemory("hit", []float32{1, 0, 0}, 0.9, 0)},
			bumpErr:  errors.New("write conflict"),
		}

		got, err := newScorer(store, emb).RelevantMemories(ctx, models.EntityStaff, "staff-1", "query", 10, 0.6, 30)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("embedder failure is an error", func(t *testing.T) {
		emb := newFakeEmbedder()
		emb.err = errors.New("connection refused")
		store := &fakeMemoryStore{}

		_, err := newScorer(store, emb).RelevantMemories(ctx, models.EntityStaff, "staff-1", "query", 10, 0.6, 30)
		assert.Error(t, err)
	})

	t.Run("no candidates yields empty result", func(t *testing.T) {
		store := &fakeMemoryStore{}
		got, err := newScorer(store, newFakeEmbedder()).RelevantMemories(ctx, models.EntityStaff, "staff-1", "query", 10, 0.6, 30)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Empty(t, store.bumped, "no access bump without results")
	})
}
