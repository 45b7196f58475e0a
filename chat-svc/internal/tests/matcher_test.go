package tests

import (
	"testing"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_Resolve(t *testing.T) {
	matcher := service.NewMatcher()
	catalog := testCatalog()

	tests := []struct {
		name         string
		ref          string
		expectedID   string
		expectMatch  bool
		instructions string
	}{
		{name: "exact_id", ref: "latte", expectedID: "latte", expectMatch: true},
		{name: "exact_name_case_insensitive", ref: "LATTE", expectedID: "latte", expectMatch: true},
		{name: "substring_ref_in_name", ref: "cappucc", expectedID: "cappuccino", expectMatch: true},
		{name: "substring_name_in_ref", ref: "iced latte grande", expectedID: "latte", expectMatch: true},
		{name: "token_overlap_typo", ref: "capuccino", expectedID: "cappuccino", expectMatch: true},
		{name: "classic_prefix_annotates", ref: "classic espresso", expectedID: "espresso", expectMatch: true, instructions: service.ClassicAnnotation},
		{name: "no_match", ref: "pizza", expectMatch: false},
		{name: "empty_ref", ref: "", expectMatch: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			match, ok := matcher.Resolve(testCase.ref, catalog)
			assert.Equal(t, testCase.expectMatch, ok)
			if testCase.expectMatch {
				assert.Equal(t, testCase.expectedID, match.Item.ID)
				assert.Equal(t, testCase.instructions, match.SpecialInstructions)
			}
		})
	}
}

// Resolving the resolved item's own name must land on the same item, so a
// draft re-check after an edit can never flip to a different product.
func TestMatcher_ResolveIsIdempotent(t *testing.T) {
	matcher := service.NewMatcher()
	catalog := testCatalog()

	for _, ref := range []string{"latte", "capuccino", "iced latte grande", "CROISSANT"} {
		first, ok := matcher.Resolve(ref, catalog)
		if !assert.True(t, ok, ref) {
			continue
		}
		second, ok := matcher.Resolve(first.Item.Name, catalog)
		assert.True(t, ok)
		assert.Equal(t, first.Item.ID, second.Item.ID)
	}
}

func TestMatcher_EmptyCatalog(t *testing.T) {
	matcher := service.NewMatcher()

	_, ok := matcher.Resolve("latte", domain.Catalog{})
	assert.False(t, ok)
}
