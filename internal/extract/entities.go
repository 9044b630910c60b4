package extract

import (
	"regexp"
	"unicode/utf8"

	"github.com/estrattori/eventi/internal/annotate"
)

var (
	// Currency marker before or after the digit group ("euro 500", "500 euro")
	moneyRe = regexp.MustCompile(`(?i)(?:€|euro|eur)\s?\d[\d.,]*|\d[\d.,]*\s?(?:€|euro|eur)`)
	phoneRe = regexp.MustCompile(`(?:\+?\d{2,3}\s?)?\(?0?\d+\)?[ \-]?\d+(?:[ \-]?\d+){1,4}`)
)

// Collected holds the entity mentions gathered from one sentence
type Collected struct {
	Participants []string // PERSON entities, PROPN fallback; first-occurrence order
	Places       []string // LOC/GPE/FAC entities, first-occurrence order
	Amount       string   // First currency-marked amount, verbatim; empty if none
	Phones       []string // Phone-like digit groups; only presence is used downstream
}

// Collector extracts participants, places, money amounts and phone-like
// numbers from annotated sentences. It is read-only over its input.
type Collector struct{}

// NewCollector creates a new entity collector
func NewCollector() *Collector {
	return &Collector{}
}

// Collect gathers entity mentions from the sentence. It fails only on
// malformed input encoding, which is surfaced as an annotation error.
func (c *Collector) Collect(sent *annotate.Sentence) (Collected, error) {
	if !utf8.ValidString(sent.Text) {
		return Collected{}, annotate.ErrAnnotation
	}

	var col Collected
	col.Participants = participants(sent)
	col.Places = places(sent)
	if m := moneyRe.FindString(sent.Text); m != "" {
		col.Amount = m
	}
	col.Phones = phoneRe.FindAllString(sent.Text, -1)
	return col, nil
}

// participants returns PERSON entity texts; when the sentence has none it
// falls back to proper-noun tokens. Dedupe is exact and order-preserving.
func participants(sent *annotate.Sentence) []string {
	var names []string
	for _, ent := range sent.Entities {
		if ent.Label == annotate.LabelPerson {
			names = append(names, ent.Text)
		}
	}
	if len(names) == 0 {
		for _, tok := range sent.Tokens {
			if tok.POS == annotate.POSProperNoun {
				names = append(names, tok.Text)
			}
		}
	}
	return dedupeStrings(names)
}

func places(sent *annotate.Sentence) []string {
	var locs []string
	for _, ent := range sent.Entities {
		switch ent.Label {
		case annotate.LabelLocation, annotate.LabelGPE, annotate.LabelFacility:
			locs = append(locs, ent.Text)
		}
	}
	return dedupeStrings(locs)
}

// dedupeStrings removes duplicates preserving first occurrence
func dedupeStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}
