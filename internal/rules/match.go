package rules

import (
	"strings"

	"github.com/estrattori/eventi/internal/annotate"
	"github.com/estrattori/eventi/internal/model"
)

// Matcher evaluates the rule registry against annotated sentences
type Matcher struct {
	registry *Registry
}

// NewMatcher creates a matcher over an immutable registry
func NewMatcher(registry *Registry) *Matcher {
	return &Matcher{registry: registry}
}

// Match returns the event families whose triggers fire on the sentence.
// Lexical and dependency matches are a union; each family fires at most
// once regardless of how many rule occurrences hit. Order follows the
// registry, so output is deterministic for a fixed rule set.
func (m *Matcher) Match(sent *annotate.Sentence) []model.EventType {
	fired := make(map[model.EventType]bool)
	var families []model.EventType

	record := func(family model.EventType) {
		if !fired[family] {
			fired[family] = true
			families = append(families, family)
		}
	}

	for _, rule := range m.registry.Lexical {
		if matchLexical(rule, sent.Tokens) {
			record(rule.Family)
		}
	}
	for _, rule := range m.registry.Dependency {
		if matchDependency(rule, sent.Tokens) {
			record(rule.Family)
		}
	}
	return families
}

// matchLexical reports whether any window of the rule matches a contiguous
// token run
func matchLexical(rule LexicalRule, tokens []annotate.Token) bool {
	for _, window := range rule.Windows {
		if len(window) == 0 || len(window) > len(tokens) {
			continue
		}
		for start := 0; start+len(window) <= len(tokens); start++ {
			ok := true
			for i, pred := range window {
				if !matchToken(pred, tokens[start+i]) {
					ok = false
					break
				}
			}
			if ok {
				return true
			}
		}
	}
	return false
}

func matchToken(pred TokenPredicate, tok annotate.Token) bool {
	lower := strings.ToLower(tok.Text)
	if pred.Lower != "" {
		return lower == pred.Lower
	}
	lemma := strings.ToLower(tok.Lemma)
	for _, want := range pred.Lemmas {
		if lemma == want || lower == want {
			return true
		}
	}
	return false
}

// matchDependency looks for a head token satisfying the head predicate with
// a dependent attached via the rule's relation
func matchDependency(rule DependencyRule, tokens []annotate.Token) bool {
	for _, tok := range tokens {
		if tok.Dep != rule.Relation {
			continue
		}
		if tok.Head < 0 || tok.Head >= len(tokens) {
			continue
		}
		head := tokens[tok.Head]
		if head.POS != rule.HeadPOS {
			continue
		}
		lemma := strings.ToLower(head.Lemma)
		for _, want := range rule.HeadLemmas {
			if lemma == want {
				return true
			}
		}
	}
	return false
}
