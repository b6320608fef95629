package service

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Domain entity kinds recognized by the typed-reference scan.
var knownRefKinds = map[string]bool{
	"issue":     true,
	"project":   true,
	"document":  true,
	"milestone": true,
}

// DefaultRefKind is what bare "#<uuid>" shorthand resolves to.
const DefaultRefKind = "issue"

var (
	// "issue: <uuid>" / "projects: <uuid>" — optional plural, flexible
	// whitespace around the colon.
	typedRefPattern = regexp.MustCompile(`(?i)\b(issue|project|document|milestone)s?\s*:\s*([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)

	// "#<uuid>" shorthand.
	shortRefPattern = regexp.MustCompile(`(?i)#([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)
)

// ExtractReferences scans texts for typed entity references and returns
// them grouped by kind, duplicates removed, first-seen order preserved.
// Shorthand "#<uuid>" references default to the issue kind.
func ExtractReferences(texts ...string) map[string][]string {
	refs := make(map[string][]string)
	seen := make(map[string]bool)

	add := func(kind, id string) {
		// Normalize and validate; the regex is permissive about case.
		parsed, err := uuid.Parse(id)
		if err != nil {
			return
		}
		id = parsed.String()
		key := kind + "/" + id
		if seen[key] {
			return
		}
		seen[key] = true
		refs[kind] = append(refs[kind], id)
	}

	for _, text := range texts {
		for _, m := range typedRefPattern.FindAllStringSubmatch(text, -1) {
			kind := strings.ToLower(m[1])
			if knownRefKinds[kind] {
				add(kind, m[2])
			}
		}
		for _, m := range shortRefPattern.FindAllStringSubmatch(text, -1) {
			add(DefaultRefKind, m[1])
		}
	}

	return refs
}
