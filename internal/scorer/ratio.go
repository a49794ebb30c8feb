package scorer

import "math"

// RatioMetric scores the whole-string similarity of two strings: with M the
// number of matching characters under the best alignment and T the total
// length of both strings, the score is round(200*M/T).
type RatioMetric struct{}

func (m *RatioMetric) Name() string {
	return "ratio"
}

func (m *RatioMetric) Score(expected, predicted string) float64 {
	if expected == "" || predicted == "" {
		return emptyScore(expected, predicted)
	}
	return ratio([]rune(expected), []rune(predicted))
}

// PartialRatioMetric scores the best alignment of the shorter string as a
// contiguous substring of the longer one. A short answer that appears
// verbatim inside a longer one scores 100.
type PartialRatioMetric struct{}

func (m *PartialRatioMetric) Name() string {
	return "partial_ratio"
}

func (m *PartialRatioMetric) Score(expected, predicted string) float64 {
	if expected == "" || predicted == "" {
		return emptyScore(expected, predicted)
	}

	shorter, longer := []rune(expected), []rune(predicted)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == len(longer) {
		return ratio(shorter, longer)
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		r := ratio(shorter, longer[i:i+len(shorter)])
		if r > best {
			best = r
		}
		if best == 100 {
			break
		}
	}
	return best
}

// emptyScore handles the shared empty-string edges: both empty scores 100,
// exactly one empty scores 0.
func emptyScore(expected, predicted string) float64 {
	if expected == "" && predicted == "" {
		return 100
	}
	return 0
}

// ratio is round(200*M/T) where M is the number of matched characters
// (longest common subsequence) and T the total length of both strings.
func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return math.Round(200 * float64(lcsLength(a, b)) / float64(total))
}

// lcsLength computes the longest common subsequence length with a rolling
// one-row DP table.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
