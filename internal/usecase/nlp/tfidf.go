package nlp

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Words splits s into lowercase terms of two or more word characters,
// matching the \b\w\w+\b pattern of common vectorizers.
func Words(s string) []string {
	var out []string
	var b strings.Builder
	n := 0
	flush := func() {
		if n >= 2 {
			out = append(out, b.String())
		}
		b.Reset()
		n = 0
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			b.WriteRune(unicode.ToLower(r))
			n++
			continue
		}
		flush()
	}
	flush()
	return out
}

// SentenceScores computes, for every sentence, the sum of its L2-normalised
// TF-IDF weights. IDF is smoothed: ln((1+n)/(1+df)) + 1. English stop words
// are excluded from the vocabulary.
func SentenceScores(sentences []string) []float64 {
	n := len(sentences)
	scores := make([]float64, n)
	if n == 0 {
		return scores
	}

	tfs := make([]map[string]float64, n)
	df := make(map[string]int)
	for i, s := range sentences {
		tf := make(map[string]float64)
		for _, w := range Words(s) {
			if IsStopWord(w) {
				continue
			}
			tf[w]++
		}
		for w := range tf {
			df[w]++
		}
		tfs[i] = tf
	}

	idf := make(map[string]float64, len(df))
	for w, d := range df {
		idf[w] = math.Log(float64(1+n)/float64(1+d)) + 1
	}

	for i, tf := range tfs {
		// fixed summation order keeps scores bit-identical across runs
		terms := make([]string, 0, len(tf))
		for w := range tf {
			terms = append(terms, w)
		}
		sort.Strings(terms)

		var sum, sq float64
		for _, w := range terms {
			v := tf[w] * idf[w]
			sum += v
			sq += v * v
		}
		if sq > 0 {
			scores[i] = sum / math.Sqrt(sq)
		}
	}
	return scores
}

// KeyPhrases returns up to limit sentences with the highest TF-IDF score,
// best first; equal scores keep their original order.
func KeyPhrases(sentences []string, limit int) []string {
	scores := SentenceScores(sentences)
	idx := make([]int, len(sentences))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	if len(idx) > limit {
		idx = idx[:limit]
	}
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, sentences[i])
	}
	return out
}
