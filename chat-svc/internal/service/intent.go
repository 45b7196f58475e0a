package service

import (
	"regexp"
	"strconv"
	"strings"

	"neocafe-assistant/chat-svc/internal/domain"
)

// NormalizedTurn is the outcome of classifying one free-text utterance.
// Exactly one of the three shapes holds: a bare confirmation, a usable delta,
// or nothing recognizable (Recognized == false, the validation signal).
type NormalizedTurn struct {
	Confirmation bool
	Cancel       bool
	Delta        domain.OrderDelta
	Unmatched    []string
	Recognized   bool
}

// IntentNormalizer turns raw text into structured order deltas using
// deterministic keyword sets and the catalog matcher. It holds no mutable
// state and is safe for concurrent use.
type IntentNormalizer struct {
	matcher *Matcher
	phrases PhraseConfig
}

func NewIntentNormalizer(matcher *Matcher, phrases PhraseConfig) *IntentNormalizer {
	return &IntentNormalizer{matcher: matcher, phrases: phrases}
}

var (
	tableRe     = regexp.MustCompile(`(?i)\btable\s*#?\s*(\d+)\b`)
	quantityRe  = regexp.MustCompile(`\b(\d+)\s+([a-z][a-z ]*)`)
	streetWords = []string{
		"street", "st", "avenue", "ave", "road", "rd", "boulevard", "blvd",
		"lane", "ln", "drive", "dr", "apt", "suite", "floor", "building",
	}
)

var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "dozen": 12,
}

var deliveryTypeKeywords = map[domain.DeliveryType][]string{
	domain.DeliveryDineIn:  {"dine in", "dine-in", "dinein", "eat in", "eat here", "for here", "at the table", "at my table"},
	domain.DeliveryPickup:  {"pickup", "pick up", "pick it up", "takeaway", "take away", "to go", "take out", "takeout", "collect"},
	domain.DeliveryCourier: {"deliver", "delivery", "bring it", "bring them", "send it", "to my address", "to my office", "to my desk"},
}

var paymentKeywords = map[domain.PaymentMethod][]string{
	domain.PaymentCreditCard: {"credit", "credit card", "card", "visa", "mastercard", "debit"},
	domain.PaymentCash:       {"cash"},
	domain.PaymentMobile:     {"mobile", "apple pay", "google pay", "phone", "mobile payment"},
}

// Normalize classifies one utterance. pending and deliveryType give the
// conversational context: a bare "Table 5" only means a location while the
// dialogue is actually waiting for one.
func (n *IntentNormalizer) Normalize(text string, pending domain.MissingField, deliveryType domain.DeliveryType, catalog domain.Catalog) NormalizedTurn {
	norm := normalizeUtterance(text)
	if norm == "" {
		return NormalizedTurn{}
	}

	items, unmatched := n.extractItems(norm, catalog)

	if len(items) == 0 && matchesPhraseSet(norm, n.phrases.Cancel) {
		return NormalizedTurn{Cancel: true, Recognized: true}
	}
	if len(items) == 0 && isBareConfirmation(norm, n.phrases.Confirmation) {
		return NormalizedTurn{Confirmation: true, Recognized: true}
	}

	delta := domain.OrderDelta{Items: items}
	delta.DeliveryType = extractDeliveryType(norm)
	delta.PaymentMethod = extractPaymentMethod(norm)

	effectiveType := delta.DeliveryType
	if effectiveType == domain.DeliveryUnset {
		effectiveType = deliveryType
	}
	delta.DeliveryLocation = extractLocation(text, norm, pending, effectiveType)

	if delta.Empty() && len(unmatched) == 0 {
		return NormalizedTurn{}
	}
	return NormalizedTurn{Delta: delta, Unmatched: unmatched, Recognized: !delta.Empty()}
}

// extractItems finds catalog mentions with naive quantity detection: a digit
// or number word immediately before the name. "classic <name>" picks up the
// fixed annotation via the matcher.
func (n *IntentNormalizer) extractItems(norm string, catalog domain.Catalog) ([]domain.DeltaItem, []string) {
	var items []domain.DeltaItem
	matchedSpans := make([]string, 0, 4)

	for i := range catalog.Items {
		name := strings.ToLower(catalog.Items[i].Name)
		idx := strings.Index(norm, name)
		if idx < 0 {
			continue
		}

		quantity := 1
		instructions := ""

		before := strings.Fields(norm[:idx])
		if len(before) > 0 {
			last := before[len(before)-1]
			if last == "classic" {
				instructions = ClassicAnnotation
				if len(before) > 1 {
					last = before[len(before)-2]
				} else {
					last = ""
				}
			}
			if q, ok := parseQuantityWord(last); ok {
				quantity = q
			}
		}

		items = append(items, domain.DeltaItem{
			Ref:                 catalog.Items[i].ID,
			Quantity:            quantity,
			SpecialInstructions: instructions,
		})
		matchedSpans = append(matchedSpans, name)
	}

	// "2 somethings" where somethings matched no catalog name: surface it as
	// an unresolved reference instead of dropping it silently.
	var unmatched []string
	for _, m := range quantityRe.FindAllStringSubmatch(norm, -1) {
		candidate := strings.TrimSpace(m[2])
		if candidate == "" || containsAny(candidate, matchedSpans) {
			continue
		}
		if _, ok := n.matcher.Resolve(candidate, domain.Catalog{Items: filterOut(catalog.Items, matchedSpans)}); ok {
			continue
		}
		word := strings.Fields(candidate)[0]
		if !isStopWord(word) && !containsAny(word, matchedSpans) {
			unmatched = append(unmatched, word)
		}
	}
	return items, unmatched
}

func parseQuantityWord(word string) (int, bool) {
	if word == "" {
		return 0, false
	}
	if q, err := strconv.Atoi(word); err == nil && q >= 1 {
		return q, true
	}
	if q, ok := numberWords[word]; ok {
		return q, true
	}
	return 0, false
}

func extractDeliveryType(norm string) domain.DeliveryType {
	// dine-in first so "eat in" is not shadowed by the "in" of other phrases
	for _, t := range []domain.DeliveryType{domain.DeliveryDineIn, domain.DeliveryPickup, domain.DeliveryCourier} {
		for _, kw := range deliveryTypeKeywords[t] {
			if strings.Contains(norm, kw) {
				return t
			}
		}
	}
	if tableRe.MatchString(norm) {
		return domain.DeliveryDineIn
	}
	return domain.DeliveryUnset
}

func extractPaymentMethod(norm string) domain.PaymentMethod {
	padded := " " + norm + " "
	for _, m := range []domain.PaymentMethod{domain.PaymentCash, domain.PaymentMobile, domain.PaymentCreditCard} {
		for _, kw := range paymentKeywords[m] {
			if strings.Contains(padded, " "+kw+" ") {
				return m
			}
		}
	}
	return domain.PaymentUnset
}

// extractLocation pulls a table identifier or street address out of the turn.
// raw keeps the user's casing for addresses; norm drives the matching.
func extractLocation(raw, norm string, pending domain.MissingField, deliveryType domain.DeliveryType) string {
	if m := tableRe.FindStringSubmatch(norm); m != nil {
		return "Table " + m[1]
	}

	if deliveryType != domain.DeliveryCourier {
		return ""
	}
	if looksLikeAddress(norm) {
		return strings.TrimSpace(raw)
	}
	// while explicitly waiting for a delivery address, take the turn verbatim
	if pending == domain.MissingDeliveryLocation && strings.TrimSpace(raw) != "" {
		return strings.TrimSpace(raw)
	}
	return ""
}

// looksLikeAddress is a loose street-address heuristic: a number plus a
// street word somewhere in the utterance.
func looksLikeAddress(norm string) bool {
	hasDigit := strings.IndexFunc(norm, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
	if !hasDigit {
		return false
	}
	for _, w := range strings.Fields(norm) {
		for _, sw := range streetWords {
			if w == sw {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, spans []string) bool {
	for _, span := range spans {
		if strings.Contains(span, s) || strings.Contains(s, span) {
			return true
		}
	}
	return false
}

func filterOut(items []domain.CatalogItem, matchedNames []string) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(items))
	for _, item := range items {
		if !containsAny(strings.ToLower(item.Name), matchedNames) {
			out = append(out, item)
		}
	}
	return out
}

var stopWords = map[string]bool{
	"of": true, "the": true, "and": true, "for": true, "with": true,
	"please": true, "to": true, "my": true, "me": true, "that": true,
	"table": true, "minutes": true, "dollars": true, "percent": true,
}

func isStopWord(w string) bool { return stopWords[w] }
