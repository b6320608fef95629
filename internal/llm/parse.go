package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MemoryCandidate is one item of the extraction response, decoded strictly.
type MemoryCandidate struct {
	Type       string              `json:"type"`
	Content    string              `json:"content"`
	Importance float64             `json:"importance"`
	Entities   map[string][]string `json:"entities,omitempty"`
}

// SummaryPayload is the decoded summarization response.
type SummaryPayload struct {
	Summary   string              `json:"summary"`
	KeyTopics []string            `json:"key_topics"`
	Entities  map[string][]string `json:"entities,omitempty"`
	Decisions []string            `json:"decisions"`
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, so "```json\n[...]\n```" decodes like bare JSON.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop a language tag on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "" || !strings.ContainsAny(first, "{}[]\"") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseMemories decodes an extraction response into candidates. Any decode
// failure, or a response that decodes but contains no object array, returns
// ErrMalformedOutput with the raw text attached; no partial result is
// produced.
func ParseMemories(raw string) ([]MemoryCandidate, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}

	var candidates []MemoryCandidate
	if err := json.Unmarshal([]byte(cleaned), &candidates); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", ErrMalformedOutput, err, truncateRaw(raw))
	}

	for i, c := range candidates {
		if c.Content == "" {
			return nil, fmt.Errorf("%w: candidate %d has no content (raw: %s)", ErrMalformedOutput, i, truncateRaw(raw))
		}
	}
	return candidates, nil
}

// ParseSummary decodes a summarization response strictly.
func ParseSummary(raw string) (*SummaryPayload, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}

	var payload SummaryPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", ErrMalformedOutput, err, truncateRaw(raw))
	}
	if payload.Summary == "" {
		return nil, fmt.Errorf("%w: missing summary field (raw: %s)", ErrMalformedOutput, truncateRaw(raw))
	}
	return &payload, nil
}

// truncateRaw keeps error messages bounded when the model rambles.
func truncateRaw(s string) string {
	const max = 200
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
