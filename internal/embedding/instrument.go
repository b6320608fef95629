package embedding

import (
	"context"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/metrics"
)

// timedEmbedder records the latency of every embedding call.
type timedEmbedder struct {
	inner   Embedder
	collect *metrics.Collector
}

// WithMetrics wraps an embedder so each call is timed under the embedding
// operation. A nil collector returns the embedder unchanged.
func WithMetrics(e Embedder, collect *metrics.Collector) Embedder {
	if collect == nil {
		return e
	}
	return &timedEmbedder{inner: e, collect: collect}
}

func (t *timedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := t.inner.Embed(ctx, text)
	t.collect.RecordTiming(metrics.OpEmbedding, time.Since(start))
	return vec, err
}

func (t *timedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := t.inner.EmbedBatch(ctx, texts)
	t.collect.RecordTiming(metrics.OpEmbedding, time.Since(start))
	return vecs, err
}

func (t *timedEmbedder) Model() string { return t.inner.Model() }

func (t *timedEmbedder) Dimension() int { return t.inner.Dimension() }
