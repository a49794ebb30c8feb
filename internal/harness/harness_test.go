package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/prompteval/internal/prompt"
	"github.com/giantswarm/prompteval/internal/scorer"
	"github.com/giantswarm/prompteval/internal/suite"
	"github.com/giantswarm/prompteval/internal/testutil"
)

func mustMetric(t *testing.T, name string) scorer.Metric {
	t.Helper()
	m, err := scorer.Get(name)
	require.NoError(t, err)
	return m
}

func qaSuite() *suite.Suite {
	return &suite.Suite{
		Name:   "qa-suite",
		Metric: "partial_ratio",
		Prompt: suite.Prompt{
			SystemMessage: "Answer briefly.",
			Template:      "Q: {q}\nA:",
		},
		Records: []suite.Record{
			{ID: "1", Bindings: map[string]string{"q": "What is 2+2?"}, Expected: "4"},
		},
	}
}

func TestHarnessRunsSuite(t *testing.T) {
	tmpDir := t.TempDir()

	client := &testutil.MockLLMClient{
		Responses: map[string]string{
			"Q: What is 2+2?\nA:": "4",
		},
	}

	h := NewHarness(client, mustMetric(t, "partial_ratio"), tmpDir)

	run, err := h.Run(context.Background(), qaSuite(), []suite.Model{{Name: "test-model"}})
	require.NoError(t, err)

	assert.Equal(t, "qa-suite", run.Suite)
	assert.Equal(t, "partial_ratio", run.Metric)
	require.Len(t, run.Models, 1)

	mr := run.Models[0]
	assert.Equal(t, "test-model", mr.ModelName)
	require.Len(t, mr.Records, 1)

	rec := mr.Records[0]
	assert.Equal(t, "Q: What is 2+2?\nA:", rec.Prompt)
	assert.Equal(t, "4", rec.Predicted)
	require.NotNil(t, rec.Score)
	assert.Equal(t, 100.0, *rec.Score)

	require.NotNil(t, mr.Summary)
	assert.Equal(t, 100.0, mr.Summary.Mean)
	assert.Equal(t, 1, mr.Summary.Scored)

	assert.Equal(t, 1, client.Calls)
	assert.Equal(t, "Answer briefly.", client.LastRequest.SystemMessage)

	// Verify files were written.
	assert.FileExists(t, mr.RecordsFile)
	assert.FileExists(t, mr.ReportFile)
	assert.FileExists(t, filepath.Join(tmpDir, run.ID, "resultset.json"))
}

func TestHarnessMultipleModels(t *testing.T) {
	tmpDir := t.TempDir()

	client := &testutil.MockLLMClient{DefaultResponse: "answer"}
	h := NewHarness(client, mustMetric(t, "partial_ratio"), tmpDir)

	run, err := h.Run(context.Background(), qaSuite(), []suite.Model{
		{Name: "model-a"},
		{Name: "model-b", Temperature: 0.5},
	})
	require.NoError(t, err)
	assert.Len(t, run.Models, 2)
	assert.Equal(t, 2, client.Calls) // one record per model
}

func TestHarnessPreservesRecordOrder(t *testing.T) {
	tmpDir := t.TempDir()

	s := qaSuite()
	s.Records = []suite.Record{
		{ID: "1", Bindings: map[string]string{"q": "first"}, Expected: "a"},
		{ID: "2", Bindings: map[string]string{"q": "second"}, Expected: "b"},
		{ID: "3", Bindings: map[string]string{"q": "third"}, Expected: "c"},
	}

	client := &testutil.MockLLMClient{DefaultResponse: "x"}
	h := NewHarness(client, mustMetric(t, "partial_ratio"), tmpDir)

	run, err := h.Run(context.Background(), s, []suite.Model{{Name: "m"}})
	require.NoError(t, err)

	records := run.Models[0].Records
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{records[0].ID, records[1].ID, records[2].ID})
	assert.Equal(t, []string{"Q: first\nA:", "Q: second\nA:", "Q: third\nA:"}, client.Prompts)
}

func TestHarnessSkipsScoringWithoutExpected(t *testing.T) {
	tmpDir := t.TempDir()

	s := qaSuite()
	s.Records = []suite.Record{
		{ID: "1", Bindings: map[string]string{"q": "ideate"}},
	}

	client := &testutil.MockLLMClient{DefaultResponse: "some idea"}
	h := NewHarness(client, mustMetric(t, "partial_ratio"), tmpDir)

	run, err := h.Run(context.Background(), s, []suite.Model{{Name: "m"}})
	require.NoError(t, err)

	rec := run.Models[0].Records[0]
	assert.Nil(t, rec.Score)
	assert.Nil(t, run.Models[0].Summary)
}

func TestHarnessHaltsOnMissingBinding(t *testing.T) {
	tmpDir := t.TempDir()

	s := qaSuite()
	s.Records = []suite.Record{
		{ID: "1", Bindings: map[string]string{"q": "ok"}, Expected: "a"},
		{ID: "2", Bindings: map[string]string{"wrong": "key"}, Expected: "b"},
		{ID: "3", Bindings: map[string]string{"q": "never reached"}, Expected: "c"},
	}

	client := &testutil.MockLLMClient{DefaultResponse: "x"}
	h := NewHarness(client, mustMetric(t, "partial_ratio"), tmpDir)

	_, err := h.Run(context.Background(), s, []suite.Model{{Name: "m"}})
	require.Error(t, err)

	var mbe *prompt.MissingBindingError
	require.ErrorAs(t, err, &mbe)
	assert.Equal(t, "q", mbe.Placeholder)

	// The first record was sent; the batch halted before the third.
	assert.Equal(t, 1, client.Calls)
}

func TestHarnessPropagatesGenerationError(t *testing.T) {
	tmpDir := t.TempDir()

	client := &testutil.MockLLMClient{Err: assert.AnError}
	h := NewHarness(client, mustMetric(t, "partial_ratio"), tmpDir)

	_, err := h.Run(context.Background(), qaSuite(), []suite.Model{{Name: "m"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHarnessProgressCallback(t *testing.T) {
	tmpDir := t.TempDir()

	s := qaSuite()
	s.Records = append(s.Records, suite.Record{
		ID: "2", Bindings: map[string]string{"q": "more"}, Expected: "x",
	})

	client := &testutil.MockLLMClient{DefaultResponse: "x"}
	h := NewHarness(client, mustMetric(t, "partial_ratio"), tmpDir)

	var progressCalls []int
	h.SetProgressFunc(func(model string, idx, total int) {
		progressCalls = append(progressCalls, idx)
	})

	_, err := h.Run(context.Background(), s, []suite.Model{{Name: "m"}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, progressCalls)
}

func TestHarnessNoModels(t *testing.T) {
	h := NewHarness(&testutil.MockLLMClient{}, mustMetric(t, "exact"), t.TempDir())
	_, err := h.Run(context.Background(), qaSuite(), nil)
	assert.Error(t, err)
}

func TestHarnessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := NewHarness(&testutil.MockLLMClient{}, mustMetric(t, "exact"), t.TempDir())
	_, err := h.Run(ctx, qaSuite(), []suite.Model{{Name: "m"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHarnessReportContents(t *testing.T) {
	tmpDir := t.TempDir()

	client := &testutil.MockLLMClient{
		Responses: map[string]string{"Q: What is 2+2?\nA:": "4"},
	}
	h := NewHarness(client, mustMetric(t, "partial_ratio"), tmpDir)

	run, err := h.Run(context.Background(), qaSuite(), []suite.Model{{Name: "my-model"}})
	require.NoError(t, err)

	content, err := os.ReadFile(run.Models[0].ReportFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "NO. 1")
	assert.Contains(t, string(content), "SCORE: 100")
	assert.Contains(t, string(content), "MEAN SCORE: 100.00")
}

func TestLoadRecordsFileRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	client := &testutil.MockLLMClient{DefaultResponse: "4"}
	h := NewHarness(client, mustMetric(t, "partial_ratio"), tmpDir)

	run, err := h.Run(context.Background(), qaSuite(), []suite.Model{{Name: "m"}})
	require.NoError(t, err)

	rf, err := LoadRecordsFile(run.Models[0].RecordsFile)
	require.NoError(t, err)
	assert.Equal(t, "m", rf.Model)
	assert.Equal(t, "partial_ratio", rf.Metric)
	require.Len(t, rf.Records, 1)
	assert.Equal(t, "4", rf.Records[0].Predicted)
	require.NotNil(t, rf.Summary)
	assert.Equal(t, 100.0, rf.Summary.Mean)
}

func TestRescore(t *testing.T) {
	score := 100.0
	records := []*Record{
		{ID: "1", Expected: "The Pacific Ocean", Predicted: "Pacific Ocean", Score: &score},
		{ID: "2", Expected: "", Predicted: "free-form output"},
	}

	summary, err := Rescore(records, mustMetric(t, "ratio"))
	require.NoError(t, err)

	// Whole-string ratio is stricter than the partial ratio the run used.
	require.NotNil(t, records[0].Score)
	assert.Less(t, *records[0].Score, 100.0)
	assert.Nil(t, records[1].Score)
	assert.Equal(t, 1, summary.Scored)
}

func TestRescoreNothingScorable(t *testing.T) {
	records := []*Record{{ID: "1", Predicted: "output"}}
	_, err := Rescore(records, mustMetric(t, "exact"))
	assert.ErrorIs(t, err, scorer.ErrEmptyBatch)
}
