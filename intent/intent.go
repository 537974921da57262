// Package intent decides how the AI assistant should handle a user
// utterance: escalate to crisis resources, forward to the language model, or
// refuse as off-topic. Classification is a stateless rule-table evaluation in
// strict priority order, so crisis detection always dominates topic
// detection.
package intent

import (
	"sort"
	"strings"
	"unicode"
)

// Outcome is the routing decision for one utterance
type Outcome string

// Possible routing decisions
const (
	OutcomeCrisis  Outcome = "crisis"
	OutcomeForward Outcome = "forward"
	OutcomeRefuse  Outcome = "refuse"
)

// Rule is one row of the classification table. A rule matches when the
// utterance contains any pattern in Any; if Also is non-empty, one of its
// patterns must match as well.
type Rule struct {
	Name     string
	Outcome  Outcome
	Priority int
	Any      []string
	Also     []string
}

// Result names the matched rule alongside the routing decision
type Result struct {
	Outcome Outcome
	Rule    string
}

// Classifier evaluates rules in priority order, lowest number first
type Classifier struct {
	rules []Rule
}

// New builds a classifier from the given rules, sorted by priority. Rules
// with equal priority keep their given order.
func New(rules ...Rule) *Classifier {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })
	return &Classifier{rules: sorted}
}

// Default returns a classifier loaded with the standard rule table
func Default() *Classifier {
	return New(DefaultRules()...)
}

// Classify routes a single utterance. If no rule matches, the utterance is
// refused as off-topic.
func (c *Classifier) Classify(message string) Result {
	lower := strings.ToLower(message)
	tokens := tokenize(lower)

	for _, rule := range c.rules {
		if !matchAny(lower, tokens, rule.Any) {
			continue
		}
		if len(rule.Also) > 0 && !matchAny(lower, tokens, rule.Also) {
			continue
		}
		return Result{Outcome: rule.Outcome, Rule: rule.Name}
	}
	return Result{Outcome: OutcomeRefuse, Rule: ""}
}

func matchAny(lower string, tokens map[string]struct{}, patterns []string) bool {
	for _, p := range patterns {
		if matches(lower, tokens, p) {
			return true
		}
	}
	return false
}

// matches applies a single pattern. Multi-word phrases and bare punctuation
// use substring containment; single words must match a whole token so that
// short patterns like "i" or "sad" do not fire inside unrelated words.
func matches(lower string, tokens map[string]struct{}, pattern string) bool {
	if strings.ContainsRune(pattern, ' ') || !containsLetter(pattern) {
		return strings.Contains(lower, pattern)
	}
	_, ok := tokens[pattern]
	return ok
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// tokenize splits on anything that is not a letter, apostrophe or hyphen,
// keeping contractions ("i'm") and hyphenated terms ("self-harm") whole
func tokenize(lower string) map[string]struct{} {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\'' && r != '-'
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[strings.Trim(f, "'-")] = struct{}{}
	}
	return tokens
}
