package service

import (
	"strings"

	"neocafe-assistant/chat-svc/internal/domain"
)

// MinOverlapScore is the smallest token-overlap score that still counts as a
// match. Four characters covers the shortest menu tokens worth matching
// ("moch" -> "Mocha") while rejecting incidental overlaps like "tea"/"steak".
const MinOverlapScore = 4

// ClassicAnnotation is stamped on the line when the reference asks for the
// classic preparation of a base item.
const ClassicAnnotation = "classic preparation"

// Match is a successful catalog resolution.
type Match struct {
	Item                domain.CatalogItem
	SpecialInstructions string
}

// Matcher resolves item references against a catalog snapshot. Matching is
// pure: the same reference and snapshot always resolve the same way.
type Matcher struct {
	strategies []matchStrategy
}

type matchStrategy func(ref string, catalog domain.Catalog) *domain.CatalogItem

// NewMatcher builds the standard strategy chain: exact id, exact name,
// substring containment, token overlap.
func NewMatcher() *Matcher {
	return &Matcher{
		strategies: []matchStrategy{
			matchExactID,
			matchExactName,
			matchSubstring,
			matchTokenOverlap,
		},
	}
}

// Resolve runs the strategies in order and returns the first hit. A reference
// combining "classic" with a base item name resolves to the base item with
// the classic annotation. The second return is false when nothing matched;
// callers must surface that instead of inventing an item.
func (m *Matcher) Resolve(ref string, catalog domain.Catalog) (Match, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Match{}, false
	}

	if base, ok := m.resolveClassic(ref, catalog); ok {
		return Match{Item: base, SpecialInstructions: ClassicAnnotation}, true
	}

	for _, strategy := range m.strategies {
		if item := strategy(ref, catalog); item != nil {
			return Match{Item: *item}, true
		}
	}
	return Match{}, false
}

// resolveClassic handles references like "classic mocha": strip the marker
// and resolve the remainder as the base item.
func (m *Matcher) resolveClassic(ref string, catalog domain.Catalog) (domain.CatalogItem, bool) {
	lower := strings.ToLower(ref)
	if !strings.Contains(lower, "classic") {
		return domain.CatalogItem{}, false
	}
	base := strings.TrimSpace(strings.ReplaceAll(lower, "classic", ""))
	if base == "" {
		return domain.CatalogItem{}, false
	}
	for _, strategy := range m.strategies {
		if item := strategy(base, catalog); item != nil {
			return *item, true
		}
	}
	return domain.CatalogItem{}, false
}

func matchExactID(ref string, catalog domain.Catalog) *domain.CatalogItem {
	return catalog.ByID(ref)
}

func matchExactName(ref string, catalog domain.Catalog) *domain.CatalogItem {
	for i := range catalog.Items {
		if strings.EqualFold(catalog.Items[i].Name, ref) {
			return &catalog.Items[i]
		}
	}
	return nil
}

// matchSubstring accepts containment in either direction, so both
// "iced latte please" and "capp" can land on a menu entry.
func matchSubstring(ref string, catalog domain.Catalog) *domain.CatalogItem {
	lowerRef := strings.ToLower(strings.TrimSpace(ref))
	if lowerRef == "" {
		return nil
	}
	for i := range catalog.Items {
		lowerName := strings.ToLower(catalog.Items[i].Name)
		if strings.Contains(lowerRef, lowerName) || strings.Contains(lowerName, lowerRef) {
			return &catalog.Items[i]
		}
	}
	return nil
}

// matchTokenOverlap scores every reference token against every name token by
// their longest common substring and picks the best candidate at or above
// MinOverlapScore. First catalog entry wins ties, keeping resolution
// deterministic.
func matchTokenOverlap(ref string, catalog domain.Catalog) *domain.CatalogItem {
	refTokens := strings.Fields(strings.ToLower(ref))
	if len(refTokens) == 0 {
		return nil
	}

	var best *domain.CatalogItem
	bestScore := 0
	for i := range catalog.Items {
		nameTokens := strings.Fields(strings.ToLower(catalog.Items[i].Name))
		score := 0
		for _, rt := range refTokens {
			for _, nt := range nameTokens {
				if s := longestCommonSubstring(rt, nt); s > score {
					score = s
				}
			}
		}
		if score >= MinOverlapScore && score > bestScore {
			bestScore = score
			best = &catalog.Items[i]
		}
	}
	return best
}

func longestCommonSubstring(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	longest := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > longest {
					longest = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return longest
}
