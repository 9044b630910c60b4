package annotate

import (
	"context"
	"errors"
)

// Entity labels produced by the annotation backends (spaCy Italian tag set)
const (
	LabelPerson   = "PER"
	LabelLocation = "LOC"
	LabelGPE      = "GPE"
	LabelFacility = "FAC"
)

// Part-of-speech tags the matcher cares about
const (
	POSVerb       = "VERB"
	POSProperNoun = "PROPN"
)

// DepSubject is the dependency relation from a verb to its subject
const DepSubject = "nsubj"

var (
	// ErrUnavailable means the annotation backend could not be initialized
	ErrUnavailable = errors.New("annotation backend unavailable")

	// ErrAnnotation means a single request could not be annotated
	ErrAnnotation = errors.New("annotation failed")
)

// Token is one token of an annotated sentence
type Token struct {
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	POS   string `json:"pos"`
	Dep   string `json:"dep"`
	Head  int    `json:"head"` // Index of the syntactic head within the sentence
}

// Entity is a named-entity span within a sentence
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Sentence is one annotated sentence, immutable once produced
type Sentence struct {
	Text     string   `json:"text"`
	Start    int      `json:"start"` // Character offset in the source document
	End      int      `json:"end"`
	Tokens   []Token  `json:"tokens"`
	Entities []Entity `json:"ents"`
}

// Document is the annotated form of one input text
type Document struct {
	Sentences []Sentence `json:"sentences"`
}

// Annotator produces linguistic annotations for raw text.
// Implementations must be safe for concurrent use once initialized.
type Annotator interface {
	Annotate(ctx context.Context, text string) (*Document, error)
}
