// Package scorer compares generated answers against expected answers and
// aggregates scores across a batch.
//
// All metrics return a score in [0,100] and share the same empty-string
// edges: two empty strings score 100, exactly one empty string scores 0.
// Metrics do not normalize case or whitespace; callers that want lenient
// comparison normalize before scoring.
package scorer

// Metric scores a predicted answer against an expected answer.
type Metric interface {
	// Name returns the metric identifier (e.g. "partial_ratio").
	Name() string

	// Score returns a similarity score in [0,100].
	Score(expected, predicted string) float64
}

// DefaultMetric is the metric used when a suite does not specify one.
const DefaultMetric = "partial_ratio"

// Get returns the Metric for the given name.
func Get(name string) (Metric, error) {
	switch name {
	case "partial_ratio", "":
		return &PartialRatioMetric{}, nil
	case "ratio":
		return &RatioMetric{}, nil
	case "rouge1":
		return &RougeMetric{N: 1}, nil
	case "rouge2":
		return &RougeMetric{N: 2}, nil
	case "exact":
		return &ExactMetric{}, nil
	default:
		return nil, &UnsupportedMetricError{Name: name}
	}
}

// Names returns the identifiers of all registered metrics.
func Names() []string {
	return []string{"partial_ratio", "ratio", "rouge1", "rouge2", "exact"}
}

// UnsupportedMetricError is returned when an unknown metric is requested.
type UnsupportedMetricError struct {
	Name string
}

func (e *UnsupportedMetricError) Error() string {
	return "unsupported metric: " + e.Name
}

// ExactMetric scores 100 for identical strings and 0 otherwise.
type ExactMetric struct{}

func (m *ExactMetric) Name() string {
	return "exact"
}

func (m *ExactMetric) Score(expected, predicted string) float64 {
	if expected == predicted {
		return 100
	}
	return 0
}
