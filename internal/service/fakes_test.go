package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/db"
	"github.com/raphaelgruber/memctx-go/internal/models"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/tmc/langchaingo/llms"
)

// fakeEmbedder returns canned vectors keyed by text, or defaultVec for
// unknown texts.
type fakeEmbedder struct {
	vectors    map[string][]float32
	defaultVec []float32
	err        error
	calls      int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		vectors:    map[string][]float32{},
		defaultVec: []float32{1, 0, 0},
	}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return f.defaultVec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Model() string  { return "fake-embedder" }
func (f *fakeEmbedder) Dimension() int { return len(f.defaultVec) }

// fakeLLM implements llms.Model with scripted responses, one per call.
type fakeLLM struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, errors.New("fakeLLM: no scripted response")
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: resp}},
	}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := f.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)})
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

// fakeMemoryStore keeps memories in a slice.
type fakeMemoryStore struct {
	memories []models.Memory
	created  []models.Memory
	bumped   [][]string

	loadErr   error
	createErr error
	bumpErr   error
	nextID    int
}

func (f *fakeMemoryStore) CreateMemory(ctx context.Context, m models.Memory) (*models.Memory, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	m.ID = surrealmodels.NewRecordID("memory", fmt.Sprintf("m%d", f.nextID))
	if m.FirstMentionedAt.IsZero() {
		m.FirstMentionedAt = time.Now()
	}
	f.created = append(f.created, m)
	f.memories = append(f.memories, m)
	return &m, nil
}

func (f *fakeMemoryStore) MemoriesWithEmbeddings(ctx context.Context, entityType models.EntityType, entityID string) ([]models.Memory, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]models.Memory, 0, len(f.memories))
	for _, m := range f.memories {
		if m.EntityType == entityType && m.EntityID == entityID && len(m.Embedding) > 0 {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemoryStore) BumpMemoryAccess(ctx context.Context, ids []string) error {
	if f.bumpErr != nil {
		return f.bumpErr
	}
	f.bumped = append(f.bumped, ids)
	return nil
}

// fakeSummaryStore keys summaries by owner and range.
type fakeSummaryStore struct {
	stored      map[string]*models.Summary
	getErr      error
	createErr   error
	createCalls int
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{stored: map[string]*models.Summary{}}
}

func summaryKey(entityType models.EntityType, entityID string, start, end int) string {
	return fmt.Sprintf("%s/%s/%d/%d", entityType, entityID, start, end)
}

func (f *fakeSummaryStore) GetSummary(ctx context.Context, entityType models.EntityType, entityID string, rangeStart, rangeEnd int) (*models.Summary, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stored[summaryKey(entityType, entityID, rangeStart, rangeEnd)], nil
}

func (f *fakeSummaryStore) CreateSummary(ctx context.Context, s models.Summary) (*models.Summary, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	key := summaryKey(s.EntityType, s.EntityID, s.RangeStart, s.RangeEnd)
	f.stored[key] = &s
	return &s, nil
}

// fakeMessageSource serves a fixed window.
type fakeMessageSource struct {
	messages []models.Message
	err      error
}

func (f *fakeMessageSource) RecentMessages(ctx context.Context, entityType models.EntityType, entityID string, limit int) ([]models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	msgs := f.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// fakeGraph serves scripted related-entity results.
type fakeGraph struct {
	results map[string]*models.GraphSearchResult
	err     error
	calls   int
}

func (f *fakeGraph) Related(ctx context.Context, entityID, entityType string, limit int) (*models.GraphSearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[entityType+"/"+entityID]; ok {
		return r, nil
	}
	return &models.GraphSearchResult{Hits: []models.GraphHit{}}, nil
}

// fakeFetcher hydrates entity cards from a map.
type fakeFetcher struct {
	cards map[string]*models.EntityCard
	err   error
}

func (f *fakeFetcher) GetEntityCard(ctx context.Context, kind, id string) (*models.EntityCard, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.cards[kind+"/"+id]; ok {
		card := *c
		return &card, nil
	}
	return nil, db.ErrNotFound
}

// fakeWorkSource serves active cards and capability flags.
type fakeWorkSource struct {
	cards        map[string][]models.EntityCard
	capabilities []string
	cardsErr     error
	capErr       error
}

func (f *fakeWorkSource) ActiveCards(ctx context.Context, ownerType models.EntityType, ownerID, kind string, limit int) ([]models.EntityCard, error) {
	if f.cardsErr != nil {
		return nil, f.cardsErr
	}
	cards := f.cards[kind]
	if limit > 0 && len(cards) > limit {
		cards = cards[:limit]
	}
	return cards, nil
}

func (f *fakeWorkSource) Capabilities(ctx context.Context, entityType models.EntityType, entityID string) ([]string, error) {
	if f.capErr != nil {
		return nil, f.capErr
	}
	return f.capabilities, nil
}

// seedMessages builds n alternating-role messages spaced one minute apart.
func seedMessages(entityType models.EntityType, entityID string, n int) []models.Message {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msgs := make([]models.Message, n)
	for i := range msgs {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		msgs[i] = models.Message{
			ID:         fmt.Sprintf("msg%d", i),
			EntityType: entityType,
			EntityID:   entityID,
			Role:       role,
			Content:    fmt.Sprintf("message %d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
	}
	return msgs
}
