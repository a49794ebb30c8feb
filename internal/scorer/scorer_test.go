package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartialRatio(t *testing.T) {
	m := &PartialRatioMetric{}

	tests := []struct {
		name      string
		expected  string
		predicted string
		want      float64
	}{
		{
			name:      "identical strings",
			expected:  "World Wide Web",
			predicted: "World Wide Web",
			want:      100,
		},
		{
			name:      "shorter string contained in longer",
			expected:  "The Pacific Ocean",
			predicted: "Pacific Ocean",
			want:      100,
		},
		{
			name:      "containment is symmetric",
			expected:  "Pacific Ocean",
			predicted: "The Pacific Ocean",
			want:      100,
		},
		{
			name:      "both empty",
			expected:  "",
			predicted: "",
			want:      100,
		},
		{
			name:      "expected empty",
			expected:  "",
			predicted: "abc",
			want:      0,
		},
		{
			name:      "predicted empty",
			expected:  "abc",
			predicted: "",
			want:      0,
		},
		{
			name:      "completely different",
			expected:  "aaaa",
			predicted: "bbbb",
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Score(tt.expected, tt.predicted))
		})
	}
}

func TestPartialRatioNearMatch(t *testing.T) {
	m := &PartialRatioMetric{}

	// One character substituted inside the aligned window.
	score := m.Score("kubernetes", "kubernetis")
	assert.Greater(t, score, 80.0)
	assert.Less(t, score, 100.0)
}

func TestPartialRatioIsCaseSensitive(t *testing.T) {
	m := &PartialRatioMetric{}
	assert.Less(t, m.Score("ABC", "abc"), 100.0)
}

func TestPartialRatioBounds(t *testing.T) {
	m := &PartialRatioMetric{}
	inputs := [][2]string{
		{"a", "zzzzzzzzzz"},
		{"hello world", "world hello"},
		{"x", "x"},
		{"short", "a much longer string with short inside"},
	}
	for _, in := range inputs {
		score := m.Score(in[0], in[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestRatio(t *testing.T) {
	m := &RatioMetric{}

	tests := []struct {
		name      string
		expected  string
		predicted string
		want      float64
	}{
		{name: "identical", expected: "abcd", predicted: "abcd", want: 100},
		{name: "both empty", expected: "", predicted: "", want: 100},
		{name: "one empty", expected: "abc", predicted: "", want: 0},
		// LCS of "abcd"/"abxd" is 3, total 8: round(200*3/8) = 75.
		{name: "one substitution", expected: "abcd", predicted: "abxd", want: 75},
		{name: "disjoint", expected: "abc", predicted: "xyz", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Score(tt.expected, tt.predicted))
		})
	}
}

func TestRatioPenalizesExtraText(t *testing.T) {
	ratio := &RatioMetric{}
	partial := &PartialRatioMetric{}

	// Whole-string ratio is stricter than partial ratio for near-substrings.
	assert.Less(t, ratio.Score("The Pacific Ocean", "Pacific Ocean"), 100.0)
	assert.Equal(t, 100.0, partial.Score("The Pacific Ocean", "Pacific Ocean"))
}

func TestRougeUnigram(t *testing.T) {
	m := &RougeMetric{N: 1}

	assert.Equal(t, 100.0, m.Score("the cat sat", "the cat sat"))
	assert.Equal(t, 100.0, m.Score("", ""))
	assert.Equal(t, 0.0, m.Score("", "abc"))
	assert.Equal(t, 0.0, m.Score("alpha beta", "gamma delta"))

	// 2 of 3 predicted unigrams overlap with 3 expected:
	// precision 2/2=1.0 after clipping? No: predicted "the cat" has 2 grams,
	// both in expected, recall 2/3, precision 1, f1 = 0.8.
	assert.InDelta(t, 80.0, m.Score("the cat sat", "the cat"), 0.01)
}

func TestRougeBigram(t *testing.T) {
	m := &RougeMetric{N: 2}

	assert.Equal(t, "rouge2", m.Name())
	assert.Equal(t, 100.0, m.Score("the cat sat down", "the cat sat down"))
	assert.Equal(t, 0.0, m.Score("the cat", "cat the"))

	// Single-word strings have no bigrams.
	assert.Equal(t, 0.0, m.Score("alpha", "beta"))
	// But identical single words still score 100.
	assert.Equal(t, 100.0, m.Score("alpha", "alpha"))
}

func TestExactMetric(t *testing.T) {
	m := &ExactMetric{}
	assert.Equal(t, 100.0, m.Score("yes", "yes"))
	assert.Equal(t, 0.0, m.Score("yes", "Yes"))
	assert.Equal(t, 100.0, m.Score("", ""))
}

func TestGet(t *testing.T) {
	for _, name := range Names() {
		m, err := Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.Name())
	}

	// Empty name falls back to the default.
	m, err := Get("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMetric, m.Name())
}

func TestGetUnsupported(t *testing.T) {
	_, err := Get("bleu")
	require.Error(t, err)

	var ume *UnsupportedMetricError
	require.ErrorAs(t, err, &ume)
	assert.Equal(t, "bleu", ume.Name)
}

func TestAggregate(t *testing.T) {
	mean, err := Aggregate([]float64{100, 100, 100, 100})
	require.NoError(t, err)
	assert.Equal(t, 100.0, mean)

	mean, err = Aggregate([]float64{50, 100})
	require.NoError(t, err)
	assert.Equal(t, 75.0, mean)
}

func TestAggregateEmptyBatch(t *testing.T) {
	_, err := Aggregate(nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = Aggregate([]float64{})
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize([]float64{50, 60, 70})
	require.NoError(t, err)

	assert.InDelta(t, 60.0, summary.Mean, 0.01)
	assert.Equal(t, 50.0, summary.Min)
	assert.Equal(t, 70.0, summary.Max)
	// Population variance of [50,60,70] with mean 60: (100+0+100)/3 = 66.67.
	assert.InDelta(t, 66.67, summary.Variance, 0.01)
	assert.Equal(t, 3, summary.Scored)
}

func TestSummarizeEmptyBatch(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestReport(t *testing.T) {
	expected := []string{"positive", "positive", "negative", "negative"}
	predicted := []string{"positive", "negative", "negative", "negative"}

	report, err := Report(expected, predicted)
	require.NoError(t, err)

	assert.Equal(t, 75.0, report.Accuracy)
	assert.Equal(t, 4, report.Total)
	require.Len(t, report.Labels, 2)

	neg := report.Labels[0]
	assert.Equal(t, "negative", neg.Label)
	// negative: tp=2, fp=1, fn=0.
	assert.InDelta(t, 66.67, neg.Precision, 0.01)
	assert.Equal(t, 100.0, neg.Recall)
	assert.Equal(t, 2, neg.Support)

	pos := report.Labels[1]
	assert.Equal(t, "positive", pos.Label)
	// positive: tp=1, fp=0, fn=1.
	assert.Equal(t, 100.0, pos.Precision)
	assert.Equal(t, 50.0, pos.Recall)
	assert.InDelta(t, 66.67, pos.F1, 0.01)
}

func TestReportLengthMismatch(t *testing.T) {
	_, err := Report([]string{"a"}, []string{"a", "b"})
	assert.Error(t, err)
}

func TestReportEmpty(t *testing.T) {
	_, err := Report(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestReportFormat(t *testing.T) {
	report, err := Report([]string{"yes", "no"}, []string{"yes", "no"})
	require.NoError(t, err)

	out := report.Format()
	assert.Contains(t, out, "precision")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "100.00%")
}
