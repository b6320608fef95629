package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/embedding"
	"github.com/raphaelgruber/memctx-go/internal/llm"
	"github.com/raphaelgruber/memctx-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(fake *fakeLLM) *llm.Model {
	return llm.NewModelWith(fake, "fake-model", time.Second)
}

func TestExtractMemories(t *testing.T) {
	ctx := context.Background()
	msgs := seedMessages(models.EntityStaff, "staff-1", 6)

	t.Run("persists valid candidates", func(t *testing.T) {
		fake := &fakeLLM{responses: []string{`[
			{"type": "preference", "content": "prefers morning meetings", "importance": 0.7},
			{"type": "fact", "content": "leads the billing team", "importance": 0.9}
		]`}}
		store := &fakeMemoryStore{}
		ext := NewExtractor(store, testModel(fake), embedding.NewHolderFor(newFakeEmbedder()), nil)

		got := ext.ExtractMemories(ctx, models.EntityStaff, "staff-1", msgs, 0.3)
		require.Len(t, got, 2)
		assert.Equal(t, models.MemoryPreference, got[0].MemoryType)
		assert.Equal(t, 1.0, got[0].RelevanceScore)
		assert.Equal(t, 0, got[0].AccessCount)
		assert.Len(t, got[0].SourceMessageIDs, len(msgs))
		assert.NotEmpty(t, got[0].Embedding)
		assert.Len(t, store.created, 2)
	})

	t.Run("nil model is a no-op", func(t *testing.T) {
		store := &fakeMemoryStore{}
		ext := NewExtractor(store, nil, embedding.NewHolderFor(newFakeEmbedder()), nil)

		got := ext.ExtractMemories(ctx, models.EntityStaff, "staff-1", msgs, 0.3)
		assert.Empty(t, got)
		assert.Empty(t, store.created)
	})

	t.Run("short window is a no-op", func(t *testing.T) {
		fake := &fakeLLM{responses: []string{`[]`}}
		ext := NewExtractor(&fakeMemoryStore{}, testModel(fake), embedding.NewHolderFor(newFakeEmbedder()), nil)

		got := ext.ExtractMemories(ctx, models.EntityStaff, "staff-1", msgs[:2], 0.3)
		assert.Empty(t, got)
		assert.Zero(t, fake.calls, "LLM not invoked below the message minimum")
	})

	t.Run("garbled output commits nothing", func(t *testing.T) {
		fake := &fakeLLM{responses: []string{"I found some interesting memories for you!"}}
		store := &fakeMemoryStore{}
		ext := NewExtractor(store, testModel(fake), embedding.NewHolderFor(newFakeEmbedder()), nil)

		got := ext.ExtractMemories(ctx, models.EntityStaff, "staff-1", msgs, 0.3)
		assert.Empty(t, got)
		assert.Empty(t, store.created)
	})

	t.Run("LLM failure commits nothing", func(t *testing.T) {
		fake := &fakeLLM{err: errors.New("model overloaded")}
		store := &fakeMemoryStore{}
		ext := NewExtractor(store, testModel(fake), embedding.NewHolderFor(newFakeEmbedder()), nil)

		got := ext.ExtractMemories(ctx, models.EntityStaff, "staff-1", msgs, 0.3)
		assert.Empty(t, got)
		assert.Empty(t, store.created)
	})

	t.Run("unknown type skipped, rest kept", func(t *testing.T) {
		fake := &fakeLLM{responses: []string{`[
			{"type": "rumor", "content": "unverifiable", "importance": 0.9},
			{"type": "decision", "content": "ship on Friday", "importance": 0.8}
		]`}}
		store := &fakeMemoryStore{}
		ext := NewExtractor(store, testModel(fake), embedding.NewHolderFor(newFakeEmbedder()), nil)

		got := ext.ExtractMemories(ctx, models.EntityStaff, "staff-1", msgs, 0.3)
		require.Len(t, got, 1)
		assert.Equal(t, models.MemoryDecision, got[0].MemoryType)
	})

	t.Run("importance clamped then filtered", func(t *testing.T) {
		fake := &fakeLLM{responses: []string{`[
			{"type": "fact", "content": "over-eager", "importance": 1.7},
			{"type": "fact", "content": "small talk", "importance": 0.1}
		]`}}
		store := &fakeMemoryStore{}
		ext := NewExtractor(store, testModel(fake), embedding.NewHolderFor(newFakeEmbedder()), nil)

		got := ext.ExtractMemories(ctx, models.EntityStaff, "staff-1", msgs, 0.3)
		require.Len(t, got, 1)
		assert.Equal(t, 1.0, got[0].Importance)
	})

	t.Run("embedding failure keeps earlier commits", func(t *testing.T) {
		fake := &fakeLLM{responses: []string{`[
			{"type": "fact", "content": "first", "importance": 0.8},
			{"type": "fact", "content": "second", "importance": 0.8}
		]`}}
		store := &fakeMemoryStore{}

		// Fail from the second embed onward.
		calls := 0
		wrapped := &hookEmbedder{inner: newFakeEmbedder(), hook: func(string) error {
			calls++
			if calls > 1 {
				return errors.New("embedder down")
			}
			return nil
		}}
		ext := NewExtractor(store, testModel(fake), embedding.NewHolderFor(wrapped), nil)

		got := ext.ExtractMemories(ctx, models.EntityStaff, "staff-1", msgs, 0.3)
		require.Len(t, got, 1)
		assert.Equal(t, "first", got[0].Content)
		assert.Len(t, store.created, 1)
	})
}

// hookEmbedder lets a test fail embedding on the nth call.
type hookEmbedder struct {
	inner *fakeEmbedder
	hook  func(text string) error
}

func (h *hookEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := h.hook(text); err != nil {
		return nil, err
	}
	return h.inner.Embed(ctx, text)
}

func (h *hookEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return h.inner.EmbedBatch(ctx, texts)
}

func (h *hookEmbedder) Model() string  { return h.inner.Model() }
func (h *hookEmbedder) Dimension() int { return h.inner.Dimension() }
