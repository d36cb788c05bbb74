package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
)

type mapScorer map[string]float64

func (m mapScorer) Compound(text string) float64 {
	return m[text]
}

func TestFrequentExpressions(t *testing.T) {
	tokens := []Token{
		{Text: "Budget", Tag: "NN"},
		{Text: "review", Tag: "NN"},
		{Text: "is", Tag: "VBZ"},
		{Text: "late", Tag: "JJ"},
		{Text: "budget", Tag: "NN"},
		{Text: "review", Tag: "NN"},
		{Text: ".", Tag: "."},
	}

	got := FrequentExpressions(tokens, 5)
	assert.Equal(t, []string{"budget", "budget review", "review", "review late", "late"}, got)
}

func TestFrequentExpressions_IgnoresOtherTags(t *testing.T) {
	tokens := []Token{
		{Text: "we", Tag: "PRP"},
		{Text: "quickly", Tag: "RB"},
		{Text: "agreed", Tag: "VBD"},
	}
	assert.Empty(t, FrequentExpressions(tokens, 5))
}

func TestSentimentPhrases(t *testing.T) {
	sentences := []string{"s0", "s1", "s2", "s3", "s4", "s5"}
	scorer := mapScorer{"s0": 0.1, "s1": 0.9, "s2": -0.5, "s3": 0.5, "s4": -0.9, "s5": 0.0}

	pos, neg := SentimentPhrases(sentences, scorer, 3)
	assert.Equal(t, []string{"s0", "s1", "s3"}, pos)
	assert.Equal(t, []string{"s2", "s4", "s5"}, neg)
}

func TestSentimentPhrases_TiesPreferEarlier(t *testing.T) {
	sentences := []string{"a", "b", "c", "d"}
	pos, neg := SentimentPhrases(sentences, mapScorer{}, 3)
	assert.Equal(t, []string{"a", "b", "c"}, pos)
	assert.Equal(t, []string{"a", "b", "c"}, neg)
}

func TestSentimentPhrases_FewSentences(t *testing.T) {
	pos, neg := SentimentPhrases([]string{"only"}, mapScorer{"only": 0.4}, 3)
	assert.Equal(t, []string{"only"}, pos)
	assert.Equal(t, []string{"only"}, neg)
}

func TestVaderScorer(t *testing.T) {
	v := NewVaderScorer()
	assert.Greater(t, v.Compound("This is a great and wonderful result!"), 0.3)
	assert.Less(t, v.Compound("This is a terrible, awful failure."), -0.3)
}

func TestLocateEntities(t *testing.T) {
	text := "Alice met Bob. Then Alice left."
	got := LocateEntities(text, []Entity{
		{Text: "Alice", Label: "PERSON"},
		{Text: "Bob", Label: "PERSON"},
		{Text: "Alice", Label: "PERSON"},
	})

	assert.Equal(t, []entities.NamedEntity{
		{Text: "Alice", StartChar: 0, EndChar: 5, Label: "PERSON"},
		{Text: "Bob", StartChar: 10, EndChar: 13, Label: "PERSON"},
		{Text: "Alice", StartChar: 20, EndChar: 25, Label: "PERSON"},
	}, got)
}

func TestLocateEntities_CountsCharacters(t *testing.T) {
	got := LocateEntities("Café Zoë", []Entity{{Text: "Zoë", Label: "PERSON"}})
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].StartChar)
	assert.Equal(t, 8, got[0].EndChar)
}

func TestLocateEntities_SkipsUnknownSpans(t *testing.T) {
	got := LocateEntities("nothing here", []Entity{{Text: "Paris", Label: "GPE"}})
	assert.Empty(t, got)
}

func TestAnalyze(t *testing.T) {
	text := "Budget review is late. Alice is happy."
	ann := &Annotation{
		Sentences: []string{"Budget review is late.", "Alice is happy."},
		Tokens: []Token{
			{Text: "Budget", Tag: "NN"}, {Text: "review", Tag: "NN"}, {Text: "is", Tag: "VBZ"},
			{Text: "late", Tag: "JJ"}, {Text: ".", Tag: "."},
			{Text: "Alice", Tag: "NNP", IOB: "B-PERSON"}, {Text: "is", Tag: "VBZ"},
			{Text: "happy", Tag: "JJ"}, {Text: ".", Tag: "."},
		},
		Entities: []Entity{{Text: "Alice", Label: "PERSON"}},
	}
	scorer := mapScorer{"Budget review is late.": -0.2, "Alice is happy.": 0.6}

	a := Analyze(text, ann, scorer)
	assert.Len(t, a.KeyPhrases, 2)
	assert.Equal(t, []entities.NamedEntity{{Text: "Alice", StartChar: 23, EndChar: 28, Label: "PERSON"}}, a.NamedEntities)
	assert.Equal(t, "budget", a.FrequentExpressions[0])

	fields := a.Fields()
	assert.Len(t, fields, 5)
	for _, f := range []string{
		entities.FieldKeyPhrases, entities.FieldNamedEntities, entities.FieldFrequentExpressions,
		entities.FieldMostPositivePhrases, entities.FieldMostNegativePhrases,
	} {
		assert.Contains(t, fields, f)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	ann := &Annotation{
		Sentences: []string{"Revenue grew.", "Costs fell.", "Alice joined."},
		Tokens:    []Token{{Text: "Revenue", Tag: "NN"}, {Text: "Costs", Tag: "NNS"}, {Text: "Alice", Tag: "NNP"}},
		Entities:  []Entity{{Text: "Alice", Label: "PERSON"}},
	}
	text := "Revenue grew. Costs fell. Alice joined."
	first := Analyze(text, ann, mapScorer{})
	second := Analyze(text, ann, mapScorer{})
	assert.Equal(t, first, second)
}

func TestProseAnnotator(t *testing.T) {
	p := NewProseAnnotator()

	empty, err := p.Annotate("")
	require.NoError(t, err)
	assert.Empty(t, empty.Tokens)

	ann, err := p.Annotate("The meeting started late. Everyone agreed on the budget.")
	require.NoError(t, err)
	assert.Len(t, ann.Sentences, 2)
	assert.NotEmpty(t, ann.Tokens)
	for _, tok := range ann.Tokens {
		assert.NotEmpty(t, tok.Tag)
	}
}
