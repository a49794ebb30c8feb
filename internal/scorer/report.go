package scorer

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// LabelStats holds per-label classification metrics.
type LabelStats struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassReport summarizes classification performance when expected and
// predicted answers are labels.
type ClassReport struct {
	Accuracy float64      `json:"accuracy"`
	Labels   []LabelStats `json:"labels"`
	Total    int          `json:"total"`
}

// Report computes accuracy and per-label precision, recall and F1 over
// paired expected/predicted labels. Labels are compared verbatim; callers
// normalize case or whitespace beforehand if they want lenient matching.
func Report(expected, predicted []string) (*ClassReport, error) {
	if len(expected) != len(predicted) {
		return nil, fmt.Errorf("expected %d labels but got %d predictions", len(expected), len(predicted))
	}
	if len(expected) == 0 {
		return nil, ErrEmptyBatch
	}

	correct := 0
	tp := make(map[string]int)
	fp := make(map[string]int)
	fn := make(map[string]int)
	support := make(map[string]int)

	for i := range expected {
		exp, pred := expected[i], predicted[i]
		support[exp]++
		if exp == pred {
			correct++
			tp[exp]++
		} else {
			fn[exp]++
			fp[pred]++
		}
	}

	labels := make([]string, 0, len(support))
	for label := range support {
		labels = append(labels, label)
	}
	// Predicted-only labels still get a row (precision 0, support 0).
	for label := range fp {
		if _, ok := support[label]; !ok {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	report := &ClassReport{
		Accuracy: round2(float64(correct) / float64(len(expected)) * 100),
		Total:    len(expected),
		Labels:   make([]LabelStats, 0, len(labels)),
	}

	for _, label := range labels {
		precision := safeDiv(tp[label], tp[label]+fp[label])
		recall := safeDiv(tp[label], tp[label]+fn[label])
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report.Labels = append(report.Labels, LabelStats{
			Label:     label,
			Precision: round2(precision * 100),
			Recall:    round2(recall * 100),
			F1:        round2(f1 * 100),
			Support:   support[label],
		})
	}

	return report, nil
}

// Format renders the report as an aligned text table.
func (r *ClassReport) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %10s %10s %10s %10s\n", "label", "precision", "recall", "f1", "support")
	for _, l := range r.Labels {
		fmt.Fprintf(&b, "%-20s %10.2f %10.2f %10.2f %10d\n", l.Label, l.Precision, l.Recall, l.F1, l.Support)
	}
	fmt.Fprintf(&b, "\naccuracy: %.2f%% (%d records)\n", r.Accuracy, r.Total)
	return b.String()
}

func safeDiv(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
