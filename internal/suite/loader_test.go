package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedSuite(t *testing.T) {
	s, err := Load("geography-qa", "")
	require.NoError(t, err)

	assert.Equal(t, "Geography QA", s.Name)
	assert.Equal(t, "1", s.Version)
	assert.Equal(t, "partial_ratio", s.Metric)
	assert.Len(t, s.Records, 5)
}

func TestLoadEmbeddedSuiteRecords(t *testing.T) {
	s, err := Load("geography-qa", "")
	require.NoError(t, err)

	r := s.Records[0]
	assert.Equal(t, "1", r.ID)
	assert.Equal(t, "Pacific Ocean", r.Expected)
	assert.Contains(t, r.Bindings["context"], "Pacific Ocean")
	assert.Contains(t, r.Bindings["question"], "largest")

	last := s.Records[len(s.Records)-1]
	assert.Equal(t, "5", last.ID)
	assert.Equal(t, "Sahara", last.Expected)
}

func TestLoadFewShotSuite(t *testing.T) {
	s, err := Load("sentiment-v1", "")
	require.NoError(t, err)

	assert.Equal(t, "exact", s.Metric)
	require.Len(t, s.Examples, 2)
	assert.Equal(t, "positive", s.Examples[0].Output)
	assert.Equal(t, "negative", s.Examples[1].Output)

	// Template() weaves examples ahead of the record template.
	rendered, err := s.Template().Render(map[string]string{"text": "loved it"})
	require.NoError(t, err)
	assert.Contains(t, rendered, "Output: positive")
	assert.Contains(t, rendered, "Input: loved it")
}

func TestLoadNonexistentSuite(t *testing.T) {
	_, err := Load("nonexistent-suite", "")
	assert.Error(t, err)
}

func TestListEmbeddedSuites(t *testing.T) {
	names, err := List("")
	require.NoError(t, err)
	assert.Contains(t, names, "geography-qa")
	assert.Contains(t, names, "sentiment-v1")
}

func TestSuiteDefaults(t *testing.T) {
	s, err := Load("geography-qa", "")
	require.NoError(t, err)

	assert.Equal(t, "records.csv", s.RecordsFile)
	assert.NotEmpty(t, s.Prompt.SystemMessage)
	assert.Contains(t, s.Prompt.Template, "{question}")
}

func TestLoadExternalSuite(t *testing.T) {
	dir := t.TempDir()
	writeExternalSuite(t, dir, "custom-suite")

	s, err := Load("custom-suite", dir)
	require.NoError(t, err)
	assert.Equal(t, "Custom", s.Name)
	require.Len(t, s.Records, 2)
	assert.Equal(t, "blue", s.Records[0].Expected)
	assert.Equal(t, "What color is the sky?", s.Records[0].Bindings["q"])

	names, err := List(dir)
	require.NoError(t, err)
	assert.Contains(t, names, "custom-suite")
	assert.Contains(t, names, "geography-qa")
}

func TestLoadRejectsUnknownMetric(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFiles(t, dir, "bad-metric",
		"name: Bad\nmetric: bleu\nprompt:\n  template: \"{q}\"\n",
		"ID,Expected,q\n1,a,b\n")

	_, err := Load("bad-metric", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metric")
}

func TestLoadRejectsMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFiles(t, dir, "no-template",
		"name: NoTemplate\n",
		"ID,Expected,q\n1,a,b\n")

	_, err := Load("no-template", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no prompt template")
}

func TestLoadRejectsMissingIDColumn(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFiles(t, dir, "no-id",
		"name: NoID\nprompt:\n  template: \"{q}\"\n",
		"Expected,q\na,b\n")

	_, err := Load("no-id", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ID")
}

func writeExternalSuite(t *testing.T, dir, name string) {
	t.Helper()
	writeSuiteFiles(t, dir, name,
		"name: Custom\nprompt:\n  system_message: Answer briefly.\n  template: \"Q: {q}\\nA:\"\n",
		"ID,Expected,q\n1,blue,What color is the sky?\n2,four,What is 2+2?\n")
}
