package models

// EntityCard is a small projection of a domain entity (issue, project,
// document, milestone) used for related-entity hydration and work snapshots.
type EntityCard struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Title    string  `json:"title"`
	Status   string  `json:"status,omitempty"`
	Priority string  `json:"priority,omitempty"`
	Score    float64 `json:"score,omitempty"`
}

// WorkContext is a lightweight snapshot of what the user is working on.
// The career listings are populated only for entities carrying a career
// capability flag.
type WorkContext struct {
	ActiveProjects []EntityCard `json:"active_projects,omitempty"`
	ActiveIssues   []EntityCard `json:"active_issues,omitempty"`

	JobApplications []EntityCard `json:"job_applications,omitempty"`
	Resumes         []EntityCard `json:"resumes,omitempty"`
	Companies       []EntityCard `json:"companies,omitempty"`
	Contacts        []EntityCard `json:"contacts,omitempty"`
}

// BundleMetadata reports what the builder managed to assemble.
type BundleMetadata struct {
	HasSummary     bool `json:"has_summary"`
	HasOldMessages bool `json:"has_old_messages"`
	MemoryCount    int  `json:"memory_count"`
	RelatedCount   int  `json:"related_count"`
	TokenEstimate  int  `json:"token_estimate"`
}

// ContextBundle is the bounded, relevance-ranked payload assembled for one
// AI turn. Every tier degrades independently: a bundle with empty tiers but
// a correct TotalMessageCount is still usable by the prompt layer.
type ContextBundle struct {
	// Recent tier: the last messages, verbatim, oldest first.
	RecentMessages []Message `json:"recent_messages"`

	// Mid-range tier: summary of the slice before the recent tier.
	ConversationSummary *Summary `json:"conversation_summary,omitempty"`

	// Old-range tier: high-signal memories (fact/decision/preference only).
	KeyFacts []ScoredMemory `json:"key_facts,omitempty"`

	// Related domain entities discovered via the knowledge graph, keyed by
	// entity type.
	RelatedEntities map[string][]EntityCard `json:"related_entities"`

	// Long-term memories relevant to the current message.
	Memories []ScoredMemory `json:"memories,omitempty"`

	WorkContext *WorkContext `json:"work_context,omitempty"`

	// EntitiesDiscussed is the reference scan over the full fetched window,
	// kept for observability.
	EntitiesDiscussed map[string][]string `json:"entities_discussed,omitempty"`

	TotalMessageCount int            `json:"total_message_count"`
	Metadata          BundleMetadata `json:"metadata"`
}

// Rough prompt-cost heuristic: four characters per token.
func estimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// cardTokens covers the title plus the rendered status/priority fields.
func cardTokens(c EntityCard) int {
	return estimateTokens(c.Title) + estimateTokens(c.Status) + estimateTokens(c.Priority) + 8
}

// TokenEstimate approximates the bundle's prompt cost.
func (b *ContextBundle) TokenEstimate() int {
	n := 0
	for _, m := range b.RecentMessages {
		n += estimateTokens(m.Content) + 4
	}
	if b.ConversationSummary != nil {
		n += estimateTokens(b.ConversationSummary.SummaryText)
		for _, t := range b.ConversationSummary.KeyTopics {
			n += estimateTokens(t)
		}
		for _, d := range b.ConversationSummary.DecisionsMade {
			n += estimateTokens(d)
		}
	}
	for _, f := range b.KeyFacts {
		n += estimateTokens(f.Content) + 4
	}
	for _, cards := range b.RelatedEntities {
		for _, c := range cards {
			n += cardTokens(c)
		}
	}
	for _, m := range b.Memories {
		n += estimateTokens(m.Content) + 4
	}
	if w := b.WorkContext; w != nil {
		for _, list := range [][]EntityCard{
			w.ActiveProjects, w.ActiveIssues,
			w.JobApplications, w.Resumes, w.Companies, w.Contacts,
		} {
			for _, c := range list {
				n += cardTokens(c)
			}
		}
	}
	return n
}

// EmptyBundle is the degenerate bundle returned for an empty history.
func EmptyBundle() ContextBundle {
	return ContextBundle{
		RecentMessages:    []Message{},
		RelatedEntities:   map[string][]EntityCard{},
		EntitiesDiscussed: map[string][]string{},
	}
}
