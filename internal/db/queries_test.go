//go:build integration

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/raphaelgruber/memctx-go/internal/models"
)

func TestMemoryLifecycle(t *testing.T) {
	ctx := context.Background()

	created, err := testDB.CreateMemory(ctx, models.Memory{
		EntityType:     models.EntityStaff,
		EntityID:       "staff-mem",
		MemoryType:     models.MemoryPreference,
		Content:        "prefers async standups",
		Importance:     0.7,
		RelevanceScore: 1.0,
		Embedding:      testEmbedding(0.1),
	})
	if err != nil {
		t.Fatalf("CreateMemory failed: %v", err)
	}
	if created.AccessCount != 0 {
		t.Errorf("new memory access_count = %d, want 0", created.AccessCount)
	}
	if created.FirstMentionedAt.IsZero() {
		t.Error("first_mentioned_at not set")
	}

	// A memory without an embedding is excluded from the candidate set.
	if _, err := testDB.CreateMemory(ctx, models.Memory{
		EntityType:     models.EntityStaff,
		EntityID:       "staff-mem",
		MemoryType:     models.MemoryFact,
		Content:        "no embedding yet",
		Importance:     0.5,
		RelevanceScore: 1.0,
	}); err != nil {
		t.Fatalf("CreateMemory (no embedding) failed: %v", err)
	}

	withEmb, err := testDB.MemoriesWithEmbeddings(ctx, models.EntityStaff, "staff-mem")
	if err != nil {
		t.Fatalf("MemoriesWithEmbeddings failed: %v", err)
	}
	if len(withEmb) != 1 {
		t.Fatalf("got %d memories with embeddings, want 1", len(withEmb))
	}

	count, err := testDB.CountMemories(ctx, models.EntityStaff, "staff-mem")
	if err != nil {
		t.Fatalf("CountMemories failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountMemories = %d, want 2", count)
	}

	id, err := models.RecordIDString(created.ID)
	if err != nil {
		t.Fatalf("RecordIDString failed: %v", err)
	}
	if err := testDB.BumpMemoryAccess(ctx, []string{id}); err != nil {
		t.Fatalf("BumpMemoryAccess failed: %v", err)
	}
	after, err := testDB.MemoriesWithEmbeddings(ctx, models.EntityStaff, "staff-mem")
	if err != nil {
		t.Fatalf("MemoriesWithEmbeddings failed: %v", err)
	}
	if after[0].AccessCount != 1 {
		t.Errorf("access_count after bump = %d, want 1", after[0].AccessCount)
	}
	if !after[0].LastAccessedAt.After(after[0].FirstMentionedAt) {
		t.Error("last_accessed_at not advanced by bump")
	}

	if err := testDB.SnapshotRelevance(ctx, id, 0.42); err != nil {
		t.Fatalf("SnapshotRelevance failed: %v", err)
	}
}

func TestMemorySchemaRejectsOutOfRange(t *testing.T) {
	ctx := context.Background()

	if _, err := testDB.CreateMemory(ctx, models.Memory{
		EntityType:     models.EntityStaff,
		EntityID:       "staff-invalid",
		MemoryType:     models.MemoryFact,
		Content:        "too important",
		Importance:     1.5,
		RelevanceScore: 1.0,
		Embedding:      testEmbedding(0.2),
	}); err == nil {
		t.Fatal("importance > 1 accepted, want schema rejection")
	}

	if _, err := testDB.CreateMemory(ctx, models.Memory{
		EntityType:     models.EntityStaff,
		EntityID:       "staff-invalid",
		MemoryType:     models.MemoryFact,
		Content:        "negative relevance",
		Importance:     0.5,
		RelevanceScore: -0.1,
		Embedding:      testEmbedding(0.2),
	}); err == nil {
		t.Fatal("relevance_score < 0 accepted, want schema rejection")
	}
}

func TestSummaryUniqueRange(t *testing.T) {
	ctx := context.Background()

	summary := models.Summary{
		EntityType:   models.EntityMentor,
		EntityID:     "mentor-sum",
		RangeStart:   5,
		RangeEnd:     20,
		MessageCount: 15,
		SummaryText:  "talked about onboarding",
		KeyTopics:    []string{"onboarding"},
		Embedding:    testEmbedding(0.3),
	}

	created, err := testDB.CreateSummary(ctx, summary)
	if err != nil {
		t.Fatalf("CreateSummary failed: %v", err)
	}
	if created.SummaryText != summary.SummaryText {
		t.Errorf("summary text = %q", created.SummaryText)
	}

	// Second create for the same range must surface the conflict.
	if _, err := testDB.CreateSummary(ctx, summary); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate CreateSummary error = %v, want ErrAlreadyExists", err)
	}

	// A different range for the same owner is fine.
	other := summary
	other.RangeStart, other.RangeEnd = 20, 35
	if _, err := testDB.CreateSummary(ctx, other); err != nil {
		t.Fatalf("CreateSummary (different range) failed: %v", err)
	}

	got, err := testDB.GetSummary(ctx, models.EntityMentor, "mentor-sum", 5, 20)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if got == nil || got.SummaryText != "talked about onboarding" {
		t.Fatalf("GetSummary = %+v", got)
	}

	missing, err := testDB.GetSummary(ctx, models.EntityMentor, "mentor-sum", 0, 5)
	if err != nil {
		t.Fatalf("GetSummary (missing) failed: %v", err)
	}
	if missing != nil {
		t.Errorf("GetSummary for unknown range = %+v, want nil", missing)
	}

	all, err := testDB.ListSummaries(ctx, models.EntityMentor, "mentor-sum")
	if err != nil {
		t.Fatalf("ListSummaries failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListSummaries = %d entries, want 2", len(all))
	}
}

func TestMessagesOrderAndLimit(t *testing.T) {
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		if _, err := testDB.AppendMessage(ctx, models.Message{
			EntityType: models.EntityStaff,
			EntityID:   "staff-msg",
			Role:       "user",
			Content:    content,
		}); err != nil {
			t.Fatalf("AppendMessage(%q) failed: %v", content, err)
		}
	}

	msgs, err := testDB.RecentMessages(ctx, models.EntityStaff, "staff-msg", 10)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Content != "first" || msgs[2].Content != "third" {
		t.Errorf("messages not chronological: %q .. %q", msgs[0].Content, msgs[2].Content)
	}

	limited, err := testDB.RecentMessages(ctx, models.EntityStaff, "staff-msg", 2)
	if err != nil {
		t.Fatalf("RecentMessages (limit) failed: %v", err)
	}
	if len(limited) != 2 || limited[0].Content != "second" {
		t.Errorf("limited window = %+v, want newest two oldest-first", limited)
	}
}

func TestGraphNodes(t *testing.T) {
	ctx := context.Background()

	node := models.GraphNode{
		EntityID:   "issue-42",
		EntityType: "issue",
		Content:    "intermittent login failure",
		Embedding:  testEmbedding(0.4),
	}
	if _, err := testDB.UpsertGraphNode(ctx, node); err != nil {
		t.Fatalf("UpsertGraphNode failed: %v", err)
	}

	// Upsert with the same key merges rather than duplicates.
	node.Content = "intermittent login failure on mobile"
	if _, err := testDB.UpsertGraphNode(ctx, node); err != nil {
		t.Fatalf("UpsertGraphNode (merge) failed: %v", err)
	}

	got, err := testDB.GetGraphNode(ctx, "issue", "issue-42")
	if err != nil {
		t.Fatalf("GetGraphNode failed: %v", err)
	}
	if got.Content != "intermittent login failure on mobile" {
		t.Errorf("merged content = %q", got.Content)
	}

	if _, err := testDB.GetGraphNode(ctx, "issue", "issue-nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetGraphNode (missing) error = %v, want ErrNotFound", err)
	}

	if _, err := testDB.UpsertGraphNode(ctx, models.GraphNode{
		EntityID:   "proj-1",
		EntityType: "project",
		Content:    "auth revamp",
		Embedding:  testEmbedding(0.5),
	}); err != nil {
		t.Fatalf("UpsertGraphNode (project) failed: %v", err)
	}

	issuesOnly, err := testDB.GraphCandidates(ctx, []string{"issue"})
	if err != nil {
		t.Fatalf("GraphCandidates failed: %v", err)
	}
	for _, n := range issuesOnly {
		if n.EntityType != "issue" {
			t.Errorf("type filter leaked %s node", n.EntityType)
		}
	}
}

func TestEntityCardsAndCapabilities(t *testing.T) {
	ctx := context.Background()
	owner := models.EntityStaff
	ownerID := "staff-cards"
	status := "in_progress"
	priority := "high"

	if err := testDB.UpsertEntityCard(ctx, "card-1", "issue", "Fix login flake", &status, &priority, true, &owner, &ownerID); err != nil {
		t.Fatalf("UpsertEntityCard failed: %v", err)
	}
	if err := testDB.UpsertEntityCard(ctx, "card-2", "issue", "Closed issue", nil, nil, false, &owner, &ownerID); err != nil {
		t.Fatalf("UpsertEntityCard (inactive) failed: %v", err)
	}

	card, err := testDB.GetEntityCard(ctx, "issue", "card-1")
	if err != nil {
		t.Fatalf("GetEntityCard failed: %v", err)
	}
	if card.Title != "Fix login flake" || card.Status != "in_progress" {
		t.Errorf("card = %+v", card)
	}

	if _, err := testDB.GetEntityCard(ctx, "issue", "card-nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetEntityCard (missing) error = %v, want ErrNotFound", err)
	}

	active, err := testDB.ActiveCards(ctx, owner, ownerID, "issue", 5)
	if err != nil {
		t.Fatalf("ActiveCards failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != "card-1" {
		t.Errorf("ActiveCards = %+v, want only the active card", active)
	}

	if err := testDB.SetCapabilities(ctx, owner, ownerID, []string{"career"}); err != nil {
		t.Fatalf("SetCapabilities failed: %v", err)
	}
	caps, err := testDB.Capabilities(ctx, owner, ownerID)
	if err != nil {
		t.Fatalf("Capabilities failed: %v", err)
	}
	if len(caps) != 1 || caps[0] != "career" {
		t.Errorf("Capabilities = %v, want [career]", caps)
	}
}
