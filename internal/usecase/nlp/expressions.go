package nlp

import "sort"

// content tags: nouns, proper nouns and adjectives
var expressionTags = map[string]bool{
	"NN": true, "NNS": true, "NNP": true, "NNPS": true,
	"JJ": true, "JJR": true, "JJS": true,
}

// FrequentExpressions counts unigrams and bigrams over the stream of noun,
// proper-noun and adjective tokens and returns the limit most frequent.
// Equal counts are ordered by first occurrence in the stream.
func FrequentExpressions(tokens []Token, limit int) []string {
	var stream []string
	for _, tok := range tokens {
		if !expressionTags[tok.Tag] {
			continue
		}
		stream = append(stream, Words(tok.Text)...)
	}

	type term struct {
		text  string
		count int
		first int
	}
	terms := make(map[string]*term)
	var order []*term
	pos := 0
	add := func(text string) {
		t, ok := terms[text]
		if !ok {
			t = &term{text: text, first: pos}
			terms[text] = t
			order = append(order, t)
		}
		t.count++
		pos++
	}

	for i, w := range stream {
		add(w)
		if i+1 < len(stream) {
			add(w + " " + stream[i+1])
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		if order[a].count != order[b].count {
			return order[a].count > order[b].count
		}
		return order[a].first < order[b].first
	})

	if len(order) > limit {
		order = order[:limit]
	}
	out := make([]string, 0, len(order))
	for _, t := range order {
		out = append(out, t.text)
	}
	return out
}
