package annotate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// NERAnnotator runs an in-process ONNX token-classification model.
// It fills entity spans only; tokens carry lowercased surface forms as
// lemma stand-ins and no dependency edges, so lexical rules still fire
// while dependency rules stay silent on this backend.
type NERAnnotator struct {
	session *hugot.Session
	ner     *pipelines.TokenClassificationPipeline
}

// NewNERAnnotator downloads the model if needed and builds the NER pipeline
func NewNERAnnotator(modelName string) (*NERAnnotator, error) {
	modelPath, err := prepareModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %v", ErrUnavailable, err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "eventi-ner",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	ner, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("%w: create pipeline: %v (cleanup: %v)", ErrUnavailable, err, destroyErr)
		}
		return nil, fmt.Errorf("%w: create pipeline: %v", ErrUnavailable, err)
	}

	return &NERAnnotator{session: session, ner: ner}, nil
}

// Annotate splits the text into sentences and tags each with NER spans
func (a *NERAnnotator) Annotate(ctx context.Context, text string) (*Document, error) {
	doc := &Document{}
	for _, span := range splitSentences(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sent := Sentence{
			Text:   span.text,
			Start:  span.start,
			End:    span.end,
			Tokens: tokenize(span.text),
		}

		result, err := a.ner.RunPipeline([]string{span.text})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAnnotation, err)
		}
		if len(result.Entities) > 0 {
			for _, ent := range result.Entities[0] {
				label := normalizeLabel(ent.Entity)
				if label == "" {
					continue
				}
				sent.Entities = append(sent.Entities, Entity{
					Text:  strings.TrimSpace(ent.Word),
					Label: label,
				})
			}
		}

		doc.Sentences = append(doc.Sentences, sent)
	}
	return doc, nil
}

// Close releases the underlying ONNX session
func (a *NERAnnotator) Close() error {
	return a.session.Destroy()
}

// normalizeLabel strips BIO prefixes and maps model labels onto the
// spaCy-style tag set the matcher expects. ORG and MISC spans carry no
// event role and are dropped.
func normalizeLabel(label string) string {
	label = strings.TrimPrefix(strings.TrimPrefix(label, "B-"), "I-")
	switch label {
	case "PER", "PERSON":
		return LabelPerson
	case "LOC", "LOCATION", "GPE":
		return LabelLocation
	case "FAC", "FACILITY":
		return LabelFacility
	default:
		return ""
	}
}

// prepareModel downloads the model into ./models on first use
func prepareModel(modelName string) (string, error) {
	modelDir := "./models"
	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0755); err != nil {
			return "", fmt.Errorf("create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		downloadedPath, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("download model: %w", err)
		}
		modelPath = downloadedPath
	}

	return modelPath, nil
}

type sentenceSpan struct {
	text  string
	start int
	end   int
}

// splitSentences breaks text on sentence terminators, tracking rune-accurate
// character offsets into the source
func splitSentences(text string) []sentenceSpan {
	var spans []sentenceSpan
	runes := []rune(text)
	begin := 0

	flush := func(end int) {
		raw := string(runes[begin:end])
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			lead := len([]rune(raw)) - len([]rune(strings.TrimLeft(raw, " \t\n")))
			spans = append(spans, sentenceSpan{
				text:  trimmed,
				start: begin + lead,
				end:   begin + lead + len([]rune(trimmed)),
			})
		}
		begin = end
	}

	for i, r := range runes {
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				flush(i + 1)
			}
		}
	}
	flush(len(runes))
	return spans
}

// sentenceStarters are function words whose sentence-initial capital carries
// no proper-noun signal
var sentenceStarters = map[string]bool{
	"il": true, "lo": true, "la": true, "i": true, "gli": true, "le": true,
	"un": true, "uno": true, "una": true, "l'": true, "un'": true,
	"a": true, "al": true, "alla": true, "ai": true, "in": true, "nel": true,
	"nella": true, "di": true, "del": true, "della": true, "da": true,
	"dal": true, "dalla": true, "per": true, "con": true, "su": true,
	"e": true, "ma": true, "se": true, "non": true, "si": true, "poi": true,
	"dopo": true, "quando": true, "mentre": true, "ieri": true, "oggi": true,
	"domani": true, "questo": true, "questa": true, "egli": true, "lui": true,
	"lei": true, "loro": true, "nessuno": true, "tutti": true,
}

// tokenize produces a surface-level token stream. Lemmas are lowercased
// surface forms; capitalized words are flagged PROPN so the participant
// fallback path still works without a tagger. Sentence-initial capitals
// count only when the word is not a common sentence starter, since every
// sentence opens with a capital.
func tokenize(sentence string) []Token {
	fields := strings.FieldsFunc(sentence, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == ':'
	})

	tokens := make([]Token, 0, len(fields))
	for i, f := range fields {
		f = strings.Trim(f, ".!?\"'()")
		if f == "" {
			continue
		}
		tok := Token{
			Text:  f,
			Lemma: strings.ToLower(f),
			Head:  -1,
		}
		if startsUpper(f) && (i > 0 || !sentenceStarters[tok.Lemma]) {
			tok.POS = POSProperNoun
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
