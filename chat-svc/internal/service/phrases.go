package service

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxConfirmationTokens bounds how long an utterance can be and still count
// as a bare confirmation phrase. Longer turns go through extraction instead.
const MaxConfirmationTokens = 4

// PhraseConfig holds the named phrase sets driving turn classification. The
// lists are hand-tuned; operators can override them from a YAML file without
// rebuilding.
type PhraseConfig struct {
	Confirmation []string `yaml:"confirmation"`
	Addition     []string `yaml:"addition"`
	Cancel       []string `yaml:"cancel"`
}

// DefaultPhrases returns the built-in phrase sets.
func DefaultPhrases() PhraseConfig {
	return PhraseConfig{
		Confirmation: []string{
			"yes", "yeah", "yep", "yup", "ok", "okay", "sure",
			"confirm", "confirmed", "correct", "right",
			"that's all", "thats all", "that is all", "that's it", "thats it",
			"done", "sounds good", "looks good",
			"confirm my order", "place the order", "place my order",
		},
		Addition: []string{
			"add", "also", "another", "one more", "more",
			"i'd like", "i would like", "i want", "can i get",
			"as well", "too", "plus",
		},
		Cancel: []string{
			"cancel", "cancel my order", "cancel the order",
			"never mind", "nevermind", "forget it",
			"clear my order", "start over", "no thanks", "stop",
		},
	}
}

// LoadPhraseFile reads a phrase override file. Missing sets fall back to the
// defaults so a file can override just one list.
func LoadPhraseFile(path string) (PhraseConfig, error) {
	cfg := DefaultPhrases()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read phrase file: %w", err)
	}
	var override PhraseConfig
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cfg, fmt.Errorf("failed to parse phrase file: %w", err)
	}
	if len(override.Confirmation) > 0 {
		cfg.Confirmation = override.Confirmation
	}
	if len(override.Addition) > 0 {
		cfg.Addition = override.Addition
	}
	if len(override.Cancel) > 0 {
		cfg.Cancel = override.Cancel
	}
	return cfg, nil
}

// normalizeUtterance lowercases and strips punctuation so "That's all!"
// matches "thats all" as well as "that's all".
func normalizeUtterance(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '\'':
			b.WriteRune(r)
		case r == '.' || r == ',' || r == '!' || r == '?':
			// dropped
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// matchesPhraseSet reports whether the utterance matches any phrase in the
// set, either exactly or by containing it, within the token bound.
func matchesPhraseSet(text string, phrases []string) bool {
	norm := normalizeUtterance(text)
	if norm == "" {
		return false
	}
	stripped := strings.ReplaceAll(norm, "'", "")
	for _, phrase := range phrases {
		p := normalizeUtterance(phrase)
		ps := strings.ReplaceAll(p, "'", "")
		if norm == p || stripped == ps ||
			strings.Contains(norm, p) || strings.Contains(stripped, ps) {
			return true
		}
	}
	return false
}

// isBareConfirmation is the stricter check used for confirmation-only turns:
// the whole utterance must be short and match the confirmation set.
func isBareConfirmation(text string, phrases []string) bool {
	norm := normalizeUtterance(text)
	if norm == "" || len(strings.Fields(norm)) > MaxConfirmationTokens {
		return false
	}
	return matchesPhraseSet(norm, phrases)
}

// isExactAffirmation reports whether the utterance is nothing but one of the
// confirmation phrases. Unlike matchesPhraseSet it never matches on
// containment, so a phrase buried in a longer reply does not count.
func isExactAffirmation(text string, phrases []string) bool {
	norm := normalizeUtterance(text)
	if norm == "" {
		return false
	}
	stripped := strings.ReplaceAll(norm, "'", "")
	for _, phrase := range phrases {
		p := normalizeUtterance(phrase)
		if norm == p || stripped == strings.ReplaceAll(p, "'", "") {
			return true
		}
	}
	return false
}
