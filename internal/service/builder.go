package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/db"
	"github.com/raphaelgruber/memctx-go/internal/metrics"
	"github.com/raphaelgruber/memctx-go/internal/models"
)

// Tiering constants. A conversation up to tierThreshold messages fits the
// recent tier plus a little headroom; beyond that the window splits into
// verbatim recent, summarized mid-range, and memory-recalled old range.
const (
	recentCount   = 5
	tierThreshold = 20

	keyFactLimit      = 5
	memoryLimit       = 5
	refScanWindow     = 20
	refsPerKind       = 3
	relatedPerRef     = 2
	extractionWindow  = 20
	minTriggerHistory = 5
)

// keyFactTypes are the memory types surfaced as key facts from the
// old-range tier.
var keyFactTypes = map[models.MemoryType]bool{
	models.MemoryFact:       true,
	models.MemoryDecision:   true,
	models.MemoryPreference: true,
}

// BuildOptions bounds one context build.
type BuildOptions struct {
	// MaxMessages caps the fetched window. Defaults to 100.
	MaxMessages int
	// MaxTokens is the soft budget for the combined bundle. Defaults to
	// 6000. Lower-priority tiers are trimmed to fit; the recent tail and
	// the summary are never cut.
	MaxTokens int
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.MaxMessages <= 0 {
		o.MaxMessages = 100
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 6000
	}
	return o
}

// Builder assembles the bounded context bundle for one AI turn. Every step
// is independently fault-tolerant: external failures degrade the affected
// tier and never fail the whole build.
type Builder struct {
	messages   MessageSource
	summarizer *Summarizer
	scorer     *Scorer
	extractor  *Extractor
	graph      RelatedSearcher
	fetcher    EntityFetcher
	work       *WorkService

	minRelevance float64
	decayDays    float64
	graphBudget  time.Duration

	collect *metrics.Collector
	logger  *slog.Logger
}

// NewBuilder wires the context builder. graph, fetcher, and work may be nil
// when the corresponding collaborator is not deployed; those tiers then
// stay empty.
func NewBuilder(
	messages MessageSource,
	summarizer *Summarizer,
	scorer *Scorer,
	extractor *Extractor,
	graph RelatedSearcher,
	fetcher EntityFetcher,
	work *WorkService,
	minRelevance, decayDays float64,
	graphBudget time.Duration,
	collect *metrics.Collector,
	logger *slog.Logger,
) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if minRelevance <= 0 {
		minRelevance = 0.6
	}
	if decayDays <= 0 {
		decayDays = 30
	}
	if graphBudget <= 0 {
		graphBudget = 15 * time.Second
	}
	return &Builder{
		messages:     messages,
		summarizer:   summarizer,
		scorer:       scorer,
		extractor:    extractor,
		graph:        graph,
		fetcher:      fetcher,
		work:         work,
		minRelevance: minRelevance,
		decayDays:    decayDays,
		graphBudget:  graphBudget,
		collect:      collect,
		logger:       logger,
	}
}

// BuildContext assembles the context bundle for the next AI turn. It always
// returns a usable bundle; with every external dependency down the bundle
// degenerates to empty tiers with a correct TotalMessageCount so the prompt
// layer can fall back to a minimal transcript-only context.
func (b *Builder) BuildContext(ctx context.Context, entityType models.EntityType, entityID, currentMessage string, opts BuildOptions) models.ContextBundle {
	start := time.Now()
	defer func() {
		if b.collect != nil {
			b.collect.RecordTiming(metrics.OpContextBuild, time.Since(start))
		}
	}()

	opts = opts.withDefaults()
	bundle := models.EmptyBundle()

	// Step 1: message window, oldest to newest.
	window, err := b.messages.RecentMessages(ctx, entityType, entityID, opts.MaxMessages)
	if err != nil {
		b.logger.Warn("message fetch failed, returning empty bundle",
			"entity_type", entityType, "entity_id", entityID, "error", err)
		return bundle
	}
	total := len(window)
	bundle.TotalMessageCount = total
	if total == 0 {
		return bundle
	}

	// Step 2: recent tier, verbatim.
	recentStart := total - recentCount
	if recentStart < 0 {
		recentStart = 0
	}
	bundle.RecentMessages = window[recentStart:]

	hasOldMessages := total > tierThreshold
	bundle.Metadata.HasOldMessages = hasOldMessages

	// Step 3: mid-range tier, summarized. The slice [total-20, total-5)
	// over window indices is stable for a fixed total, so the summary is
	// cached per range.
	if hasOldMessages && b.summarizer != nil {
		midStart := total - tierThreshold
		midEnd := total - recentCount
		summary, err := b.summarizer.GetOrCreate(ctx, entityType, entityID, midStart, midEnd, window[midStart:midEnd])
		if err != nil {
			b.logger.Warn("mid-range summarization failed", "entity_type", entityType, "entity_id", entityID, "error", err)
		} else {
			bundle.ConversationSummary = summary
		}
	}
	bundle.Metadata.HasSummary = bundle.ConversationSummary != nil

	// Step 4: old-range recall, filtered to high-signal types.
	if hasOldMessages && b.scorer != nil {
		recalled, err := b.scorer.RelevantMemories(ctx, entityType, entityID, currentMessage, keyFactLimit, b.minRelevance, b.decayDays)
		if err != nil {
			b.logger.Warn("old-range recall failed", "entity_type", entityType, "entity_id", entityID, "error", err)
		} else {
			facts := make([]models.ScoredMemory, 0, len(recalled))
			for _, m := range recalled {
				if keyFactTypes[m.MemoryType] {
					facts = append(facts, m)
				}
			}
			bundle.KeyFacts = facts
		}
	}

	// Step 5: related entities via the knowledge graph.
	bundle.RelatedEntities = b.relatedEntities(ctx, window, currentMessage)

	// Step 6: long-term memories against the current message.
	if b.scorer != nil {
		memories, err := b.scorer.RelevantMemories(ctx, entityType, entityID, currentMessage, memoryLimit, b.minRelevance, b.decayDays)
		if err != nil {
			b.logger.Warn("long-term memory recall failed", "entity_type", entityType, "entity_id", entityID, "error", err)
		} else {
			bundle.Memories = memories
		}
	}

	// Step 7: current work snapshot.
	if b.work != nil {
		snapshot, err := b.work.Snapshot(ctx, entityType, entityID)
		if err != nil {
			b.logger.Warn("work snapshot failed", "entity_type", entityType, "entity_id", entityID, "error", err)
		} else {
			bundle.WorkContext = snapshot
		}
	}

	// Step 8: reference scan over the full window, for observability.
	texts := make([]string, 0, total)
	for _, m := range window {
		texts = append(texts, m.Content)
	}
	bundle.EntitiesDiscussed = ExtractReferences(texts...)

	b.applyTokenBudget(&bundle, opts.MaxTokens)

	bundle.Metadata.MemoryCount = len(bundle.Memories)
	for _, cards := range bundle.RelatedEntities {
		bundle.Metadata.RelatedCount += len(cards)
	}
	bundle.Metadata.TokenEstimate = bundle.TokenEstimate()

	return bundle
}

// applyTokenBudget trims lower-priority tiers until the bundle fits the soft
// budget. The verbatim recent tail and the summary are never cut; with only
// those left the bundle may still exceed the budget, which callers accept as
// the floor.
func (b *Builder) applyTokenBudget(bundle *models.ContextBundle, maxTokens int) {
	if bundle.TokenEstimate() <= maxTokens {
		return
	}

	bundle.WorkContext = nil
	for len(bundle.Memories) > 0 && bundle.TokenEstimate() > maxTokens {
		bundle.Memories = bundle.Memories[:len(bundle.Memories)-1]
	}
	for len(bundle.KeyFacts) > 0 && bundle.TokenEstimate() > maxTokens {
		bundle.KeyFacts = bundle.KeyFacts[:len(bundle.KeyFacts)-1]
	}
	if bundle.TokenEstimate() > maxTokens {
		bundle.RelatedEntities = map[string][]models.EntityCard{}
	}

	b.logger.Debug("bundle trimmed to token budget",
		"max_tokens", maxTokens, "token_estimate", bundle.TokenEstimate())
}

// relatedEntities scans the recent window plus the current message for
// typed references, asks the graph for neighbors of each, and hydrates the
// hits. Any graph failure degrades the whole step to an empty map; a
// missing entity drops only that hit.
func (b *Builder) relatedEntities(ctx context.Context, window []models.Message, currentMessage string) map[string][]models.EntityCard {
	related := map[string][]models.EntityCard{}
	if b.graph == nil {
		return related
	}

	// Graph lookups are the slowest optional step; bound them so a stalled
	// graph store cannot hold up the whole build.
	ctx, cancel := context.WithTimeout(ctx, b.graphBudget)
	defer cancel()

	scanStart := len(window) - refScanWindow
	if scanStart < 0 {
		scanStart = 0
	}
	texts := make([]string, 0, refScanWindow+1)
	for _, m := range window[scanStart:] {
		texts = append(texts, m.Content)
	}
	texts = append(texts, currentMessage)

	refs := ExtractReferences(texts...)

	for kind, ids := range refs {
		if len(ids) > refsPerKind {
			ids = ids[:refsPerKind]
		}
		for _, id := range ids {
			result, err := b.graph.Related(ctx, id, kind, relatedPerRef)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					// Reference to an unindexed entity; nothing related.
					continue
				}
				b.logger.Warn("knowledge graph unavailable, dropping related entities", "error", err)
				return map[string][]models.EntityCard{}
			}

			for _, hit := range result.Hits {
				card := b.hydrate(ctx, hit)
				if card == nil {
					continue
				}
				related[hit.EntityType] = append(related[hit.EntityType], *card)
			}
		}
	}

	return related
}

// hydrate resolves a graph hit into an entity card, or nil if the entity no
// longer exists.
func (b *Builder) hydrate(ctx context.Context, hit models.GraphHit) *models.EntityCard {
	if b.fetcher == nil {
		return nil
	}

	card, err := b.fetcher.GetEntityCard(ctx, hit.EntityType, hit.EntityID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			b.logger.Warn("entity hydration failed", "kind", hit.EntityType, "id", hit.EntityID, "error", err)
		}
		return nil
	}
	card.Score = hit.Similarity
	return card
}

// TriggerMemoryExtraction runs one extraction pass over the recent window.
// Callers invoke it periodically (every 10th message by convention); the
// cadence is not enforced here. With fewer than 5 stored messages it is a
// no-op unless force is set, in which case only the extractor's own 3
// message minimum applies.
func (b *Builder) TriggerMemoryExtraction(ctx context.Context, entityType models.EntityType, entityID string, force bool) []models.Memory {
	if b.extractor == nil {
		return []models.Memory{}
	}

	window, err := b.messages.RecentMessages(ctx, entityType, entityID, 100)
	if err != nil {
		b.logger.Warn("message fetch failed, skipping extraction",
			"entity_type", entityType, "entity_id", entityID, "error", err)
		return []models.Memory{}
	}
	if !force && len(window) < minTriggerHistory {
		return []models.Memory{}
	}

	if len(window) > extractionWindow {
		window = window[len(window)-extractionWindow:]
	}
	return b.extractor.ExtractMemories(ctx, entityType, entityID, window, 0.3)
}
