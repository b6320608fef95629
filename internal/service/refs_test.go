package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uuidA = "11111111-1111-1111-1111-111111111111"
	uuidB = "22222222-2222-2222-2222-222222222222"
	uuidC = "33333333-3333-3333-3333-333333333333"
)

func TestExtractReferences(t *testing.T) {
	t.Run("typed reference", func(t *testing.T) {
		refs := ExtractReferences("let's look at issue: " + uuidA)
		assert.Equal(t, map[string][]string{"issue": {uuidA}}, refs)
	})

	t.Run("shorthand defaults to issue", func(t *testing.T) {
		refs := ExtractReferences("see #" + uuidB + " for details")
		assert.Equal(t, map[string][]string{"issue": {uuidB}}, refs)
	})

	t.Run("typed and shorthand merge into one kind", func(t *testing.T) {
		refs := ExtractReferences(
			"working on issue: "+uuidA,
			"also #"+uuidB,
		)
		assert.Equal(t, map[string][]string{"issue": {uuidA, uuidB}}, refs)
	})

	t.Run("plural form and flexible whitespace", func(t *testing.T) {
		refs := ExtractReferences("projects:   " + uuidC)
		assert.Equal(t, map[string][]string{"project": {uuidC}}, refs)
	})

	t.Run("case-insensitive kind and uuid normalization", func(t *testing.T) {
		refs := ExtractReferences("Document: AAAAAAAA-BBBB-1111-2222-CCCCCCCCCCCC")
		assert.Equal(t, map[string][]string{"document": {"aaaaaaaa-bbbb-1111-2222-cccccccccccc"}}, refs)
	})

	t.Run("duplicates removed, first-seen order kept", func(t *testing.T) {
		refs := ExtractReferences(
			"issue: "+uuidB,
			"issue: "+uuidA,
			"again #"+uuidB,
		)
		assert.Equal(t, []string{uuidB, uuidA}, refs["issue"])
	})

	t.Run("same uuid under two kinds is two references", func(t *testing.T) {
		refs := ExtractReferences("issue: " + uuidA + " and project: " + uuidA)
		assert.Equal(t, map[string][]string{
			"issue":   {uuidA},
			"project": {uuidA},
		}, refs)
	})

	t.Run("unknown kind ignored", func(t *testing.T) {
		refs := ExtractReferences("ticket: " + uuidA)
		assert.Empty(t, refs)
	})

	t.Run("malformed uuid ignored", func(t *testing.T) {
		refs := ExtractReferences("issue: 1234-not-a-uuid and #deadbeef")
		assert.Empty(t, refs)
	})

	t.Run("no references", func(t *testing.T) {
		refs := ExtractReferences("nothing to see here")
		assert.Empty(t, refs)
	})
}

func TestExtractReferencesMilestone(t *testing.T) {
	refs := ExtractReferences("milestone: " + uuidC)
	assert.Equal(t, map[string][]string{"milestone": {uuidC}}, refs)
}
