package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/memctx-go/internal/metrics"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return []float32{1, 0, 0}, nil
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls++
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{1, 0, 0}
	}
	return vecs, nil
}

func (c *countingEmbedder) Model() string { return "counting" }

func (c *countingEmbedder) Dimension() int { return 3 }

func TestHolderBuildsOnce(t *testing.T) {
	builds := 0
	emb := &countingEmbedder{}
	h := &Holder{build: func() (Embedder, error) {
		builds++
		return emb, nil
	}}

	for range 3 {
		got, err := h.Get()
		require.NoError(t, err)
		assert.Same(t, Embedder(emb), got)
	}
	assert.Equal(t, 1, builds)
}

func TestHolderConstructionErrorIsSticky(t *testing.T) {
	boom := errors.New("no backend")
	builds := 0
	h := &Holder{build: func() (Embedder, error) {
		builds++
		return nil, boom
	}}

	_, err := h.Get()
	assert.ErrorIs(t, err, boom)
	_, err = h.Get()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, builds, "failed construction is not retried")
}

func TestWithMetricsRecordsTimings(t *testing.T) {
	collector := metrics.NewCollector()
	emb := WithMetrics(&countingEmbedder{}, collector)

	_, err := emb.Embed(context.Background(), "hello")
	require.NoError(t, err)
	_, err = emb.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	snap := collector.Snapshot()
	require.NotNil(t, snap.Embedding)
	assert.Equal(t, int64(2), snap.Embedding.Count)

	assert.Equal(t, 3, emb.Dimension())
	assert.Equal(t, "counting", emb.Model())
}

func TestWithMetricsNilCollectorPassthrough(t *testing.T) {
	emb := &countingEmbedder{}
	assert.Same(t, Embedder(emb), WithMetrics(emb, nil))
}
