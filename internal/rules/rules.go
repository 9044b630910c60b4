package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/estrattori/eventi/internal/model"
)

// TokenPredicate matches one token of a lexical window. Exactly one of the
// fields is set: Lemmas matches lemma or lowercased surface against a closed
// set, Lower matches the lowercased surface exactly (phrase patterns).
type TokenPredicate struct {
	Lemmas []string `yaml:"lemmas,omitempty"`
	Lower  string   `yaml:"lower,omitempty"`
}

// LexicalRule fires when any contiguous token window satisfies one of its
// ordered predicate sequences
type LexicalRule struct {
	Label   string             `yaml:"label"`
	Family  model.EventType    `yaml:"family"`
	Windows [][]TokenPredicate `yaml:"windows"`
}

// DependencyRule fires when a head token with the given POS and lemma has an
// incoming edge with the given relation
type DependencyRule struct {
	Label      string          `yaml:"label"`
	Family     model.EventType `yaml:"family"`
	HeadPOS    string          `yaml:"head_pos"`
	HeadLemmas []string        `yaml:"head_lemmas"`
	Relation   string          `yaml:"relation"`
}

// Registry is the immutable set of trigger rules, loaded once at startup
// and shared read-only across concurrent pipeline runs
type Registry struct {
	Lexical    []LexicalRule    `yaml:"lexical"`
	Dependency []DependencyRule `yaml:"dependency"`
}

// Load reads a rule registry from a YAML file
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Registry) validate() error {
	for _, lx := range r.Lexical {
		if lx.Label == "" || lx.Family == "" {
			return fmt.Errorf("lexical rule missing label or family")
		}
		if len(lx.Windows) == 0 {
			return fmt.Errorf("lexical rule %q has no windows", lx.Label)
		}
	}
	for _, dp := range r.Dependency {
		if dp.Label == "" || dp.Family == "" {
			return fmt.Errorf("dependency rule missing label or family")
		}
		if len(dp.HeadLemmas) == 0 || dp.Relation == "" {
			return fmt.Errorf("dependency rule %q incomplete", dp.Label)
		}
	}
	return nil
}

// DefaultRegistry returns the built-in Italian trigger rules for the three
// event families. New families are added here or in a YAML override, never
// in matching code.
func DefaultRegistry() *Registry {
	return &Registry{
		Lexical: []LexicalRule{
			{
				Label:  "meeting-trigger",
				Family: model.EventMeeting,
				Windows: [][]TokenPredicate{
					{{Lemmas: []string{"incontrare", "vedere"}}},
					{{Lower: "in"}, {Lower: "compagnia"}, {Lower: "di"}},
					{{Lemmas: []string{"riunire", "appuntare"}}},
				},
			},
			{
				Label:  "call-trigger",
				Family: model.EventPhoneCall,
				Windows: [][]TokenPredicate{
					{{Lemmas: []string{"telefonare", "chiamare", "contattare", "conversare"}}},
					{{Lower: "colloquio"}, {Lower: "telefonico"}},
				},
			},
			{
				Label:  "handoff-trigger",
				Family: model.EventHandoff,
				Windows: [][]TokenPredicate{
					{{Lemmas: []string{"consegnare", "cedere", "passare", "ricevere", "ritirare"}}},
				},
			},
		},
		Dependency: []DependencyRule{
			{
				Label:      "meeting-dep",
				Family:     model.EventMeeting,
				HeadPOS:    "VERB",
				HeadLemmas: []string{"incontrare", "vedere", "riunire"},
				Relation:   "nsubj",
			},
			{
				Label:      "call-dep",
				Family:     model.EventPhoneCall,
				HeadPOS:    "VERB",
				HeadLemmas: []string{"telefonare", "chiamare", "contattare"},
				Relation:   "nsubj",
			},
			{
				Label:      "handoff-dep",
				Family:     model.EventHandoff,
				HeadPOS:    "VERB",
				HeadLemmas: []string{"consegnare", "cedere", "passare", "ricevere", "ritirare"},
				Relation:   "nsubj",
			},
		},
	}
}
