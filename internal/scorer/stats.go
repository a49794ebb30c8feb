package scorer

import (
	"errors"
	"math"
	"slices"
)

// ErrEmptyBatch is returned when a batch has no record with both an
// expected and a predicted answer.
var ErrEmptyBatch = errors.New("no scorable records in batch")

// Aggregate returns the arithmetic mean of the given per-record scores.
func Aggregate(scores []float64) (float64, error) {
	if len(scores) == 0 {
		return 0, ErrEmptyBatch
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return math.Round(sum/float64(len(scores))*100) / 100, nil
}

// Summary holds aggregate statistics over the scored records of a batch.
type Summary struct {
	Mean     float64 `json:"mean_score"`
	Min      float64 `json:"min_score"`
	Max      float64 `json:"max_score"`
	Variance float64 `json:"variance"`
	Scored   int     `json:"scored_records"`
}

// Summarize computes batch statistics over the given per-record scores.
func Summarize(scores []float64) (Summary, error) {
	mean, err := Aggregate(scores)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Mean:     mean,
		Min:      slices.Min(scores),
		Max:      slices.Max(scores),
		Variance: variance(scores, mean),
		Scored:   len(scores),
	}, nil
}

// variance calculates the population variance given a precomputed mean.
func variance(vals []float64, mean float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sumSquaredDiff := 0.0
	for _, v := range vals {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Round(sumSquaredDiff/float64(len(vals))*100) / 100
}
