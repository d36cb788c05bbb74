package nlp

import "github.com/johnquangdev/talk-tracer/internal/domain/entities"

// Limits for the analytics lists
const (
	KeyPhraseLimit          = 5
	FrequentExpressionLimit = 5
	SentimentPhraseLimit    = 3
)

// Analytics holds every list derived from one transcript
type Analytics struct {
	KeyPhrases          []string
	NamedEntities       []entities.NamedEntity
	FrequentExpressions []string
	MostPositive        []string
	MostNegative        []string
}

// Analyze derives all analytics lists from a single annotation of text
func Analyze(text string, ann *Annotation, scorer Scorer) Analytics {
	positive, negative := SentimentPhrases(ann.Sentences, scorer, SentimentPhraseLimit)
	return Analytics{
		KeyPhrases:          nonNil(KeyPhrases(ann.Sentences, KeyPhraseLimit)),
		NamedEntities:       LocateEntities(text, ann.Entities),
		FrequentExpressions: nonNil(FrequentExpressions(ann.Tokens, FrequentExpressionLimit)),
		MostPositive:        nonNil(positive),
		MostNegative:        nonNil(negative),
	}
}

// Fields returns the document fields the analytics stage owns
func (a Analytics) Fields() map[string]interface{} {
	return map[string]interface{}{
		entities.FieldKeyPhrases:          a.KeyPhrases,
		entities.FieldNamedEntities:       a.NamedEntities,
		entities.FieldFrequentExpressions: a.FrequentExpressions,
		entities.FieldMostPositivePhrases: a.MostPositive,
		entities.FieldMostNegativePhrases: a.MostNegative,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
