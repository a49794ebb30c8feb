package scorer

import (
	"fmt"
	"math"
	"strings"
)

// RougeMetric scores n-gram overlap between expected and predicted text as
// an F1 measure scaled to [0,100]. N=1 compares unigrams, N=2 bigrams.
type RougeMetric struct {
	N int
}

func (m *RougeMetric) Name() string {
	return fmt.Sprintf("rouge%d", m.N)
}

func (m *RougeMetric) Score(expected, predicted string) float64 {
	if expected == "" || predicted == "" {
		return emptyScore(expected, predicted)
	}
	if expected == predicted {
		return 100
	}

	expGrams := ngrams(expected, m.N)
	predGrams := ngrams(predicted, m.N)
	if len(expGrams) == 0 || len(predGrams) == 0 {
		return 0
	}

	expCounts := make(map[string]int, len(expGrams))
	for _, g := range expGrams {
		expCounts[g]++
	}

	// Clipped overlap: each expected n-gram credits at most its own count.
	overlap := 0
	for _, g := range predGrams {
		if expCounts[g] > 0 {
			expCounts[g]--
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}

	precision := float64(overlap) / float64(len(predGrams))
	recall := float64(overlap) / float64(len(expGrams))
	f1 := 2 * precision * recall / (precision + recall)

	return math.Round(f1*10000) / 100
}

// ngrams splits text on whitespace and returns the sequence of n-grams.
// Tokens are joined with a single space, so original spacing does not
// affect the score.
func ngrams(text string, n int) []string {
	tokens := strings.Fields(text)
	if len(tokens) < n {
		return nil
	}

	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], " "))
	}
	return grams
}
