package nlp

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Token is one word or punctuation mark with its tags
type Token struct {
	Text string
	// Tag is the Penn Treebank part-of-speech tag (NN, NNP, JJ, ...)
	Tag string
	// IOB is the entity chunk label: "B-<TYPE>", "I-<TYPE>" or "O"
	IOB string
}

// BeginsEntity reports whether the token opens a named-entity span
func (t Token) BeginsEntity() bool {
	return len(t.IOB) > 2 && t.IOB[:2] == "B-"
}

// Entity is a recognized span before offsets are resolved
type Entity struct {
	Text  string
	Label string
}

// Annotation is the result of a single linguistic pass over a text
type Annotation struct {
	Tokens    []Token
	Sentences []string
	Entities  []Entity
}

// Annotator tokenizes, tags, segments and runs entity recognition
type Annotator interface {
	Annotate(text string) (*Annotation, error)
}

// ProseAnnotator implements Annotator with the prose English pipeline
type ProseAnnotator struct{}

// NewProseAnnotator creates an annotator with all prose stages enabled
func NewProseAnnotator() *ProseAnnotator {
	return &ProseAnnotator{}
}

// Annotate runs tokenization, POS tagging, sentence segmentation and NER
func (p *ProseAnnotator) Annotate(text string) (*Annotation, error) {
	if text == "" {
		return &Annotation{}, nil
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, fmt.Errorf("annotate text: %w", err)
	}

	out := &Annotation{}
	for _, tok := range doc.Tokens() {
		out.Tokens = append(out.Tokens, Token{Text: tok.Text, Tag: tok.Tag, IOB: tok.Label})
	}
	for _, sent := range doc.Sentences() {
		out.Sentences = append(out.Sentences, sent.Text)
	}
	for _, ent := range doc.Entities() {
		out.Entities = append(out.Entities, Entity{Text: ent.Text, Label: ent.Label})
	}
	chunkIOB(out.Tokens, out.Entities)
	return out, nil
}

// chunkIOB rewrites entity labels to real IOB. prose marks every token of a
// multi-word entity "B-"; only the first token of each span keeps it and the
// rest become "I-". Spans follow the recognized entities in order, falling
// back to runs of same-type tokens when a span text cannot be matched.
func chunkIOB(tokens []Token, ents []Entity) {
	next := 0
	span, want := "", ""
	prevType := ""
	for i := range tokens {
		typ := entityType(tokens[i].IOB)
		if typ == "" {
			prevType, span, want = "", "", ""
			continue
		}

		if typ == prevType && (want == "" || len(span) < len(want)) {
			tokens[i].IOB = "I-" + typ
			span += " " + tokens[i].Text
			continue
		}

		tokens[i].IOB = "B-" + typ
		span, want = tokens[i].Text, ""
		for j := next; j < len(ents); j++ {
			if ents[j].Label == typ && strings.HasPrefix(ents[j].Text, tokens[i].Text) {
				want = ents[j].Text
				next = j + 1
				break
			}
		}
		prevType = typ
	}
}

func entityType(iob string) string {
	if len(iob) > 2 && (iob[:2] == "B-" || iob[:2] == "I-") {
		return iob[2:]
	}
	return ""
}
