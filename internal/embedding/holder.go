package embedding

import (
	"sync"

	"github.com/raphaelgruber/memctx-go/internal/metrics"
)

// Holder initializes an Embedder exactly once and hands out the shared
// instance. It replaces ambient global model state with an explicit,
// injectable handle: construct one Holder at startup, pass it to the
// components that embed text.
type Holder struct {
	build func() (Embedder, error)

	once sync.Once
	emb  Embedder
	err  error
}

// NewHolder creates a holder that builds the embedder from cfg on first use.
// A non-nil collector times every embedding call.
func NewHolder(cfg Config, collect *metrics.Collector) *Holder {
	return &Holder{build: func() (Embedder, error) {
		emb, err := New(cfg)
		if err != nil {
			return nil, err
		}
		return WithMetrics(emb, collect), nil
	}}
}

// NewHolderFor wraps an already-constructed embedder, mainly for tests.
func NewHolderFor(emb Embedder) *Holder {
	return &Holder{build: func() (Embedder, error) { return emb, nil }}
}

// Get returns the process-wide embedder, constructing it on first call.
// Construction failure is fatal for the holder: every subsequent call
// returns the same error.
func (h *Holder) Get() (Embedder, error) {
	h.once.Do(func() {
		h.emb, h.err = h.build()
	})
	return h.emb, h.err
}
