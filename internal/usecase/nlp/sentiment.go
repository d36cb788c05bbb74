package nlp

import (
	"sort"

	"github.com/jonreiter/govader"
)

// Scorer rates text polarity on a compound scale in [-1, 1]
type Scorer interface {
	Compound(text string) float64
}

// VaderScorer scores sentences with the VADER lexicon
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer loads the VADER lexicon once for reuse
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound returns VADER's normalized compound score
func (v *VaderScorer) Compound(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

// SentimentPhrases returns the limit highest- and lowest-scoring sentences.
// Each group is reported in the sentences' original order; equal scores
// prefer the earlier sentence.
func SentimentPhrases(sentences []string, scorer Scorer, limit int) (positive, negative []string) {
	scores := make([]float64, len(sentences))
	for i, s := range sentences {
		scores[i] = scorer.Compound(s)
	}

	pick := func(better func(a, b float64) bool) []string {
		idx := make([]int, len(sentences))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return better(scores[idx[a]], scores[idx[b]])
		})
		if len(idx) > limit {
			idx = idx[:limit]
		}
		sort.Ints(idx)
		out := make([]string, 0, len(idx))
		for _, i := range idx {
			out = append(out, sentences[i])
		}
		return out
	}

	positive = pick(func(a, b float64) bool { return a > b })
	negative = pick(func(a, b float64) bool { return a < b })
	return positive, negative
}
