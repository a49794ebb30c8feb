package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/giantswarm/prompteval/internal/scorer"
)

// RecordsFile is the machine-readable per-model output: the full record
// list plus the metric used and the batch summary.
type RecordsFile struct {
	Model   string          `json:"model"`
	Suite   string          `json:"suite"`
	Metric  string          `json:"metric"`
	Records []*Record       `json:"records"`
	Summary *scorer.Summary `json:"summary,omitempty"`
}

// writeModelFiles writes the per-model outputs: a JSON records file and a
// human-readable text report. The paths are recorded on the ModelRun.
func writeModelFiles(outputPath, suiteName, metricName string, mr *ModelRun) error {
	safeModelName := sanitizeFilename(mr.ModelName)

	rf := RecordsFile{
		Model:   mr.ModelName,
		Suite:   suiteName,
		Metric:  metricName,
		Records: mr.Records,
		Summary: mr.Summary,
	}
	data, err := json.MarshalIndent(rf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records for model %s: %w", mr.ModelName, err)
	}

	recordsFile := filepath.Join(outputPath, fmt.Sprintf("%s.json", safeModelName))
	if err := os.WriteFile(recordsFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write records for model %s: %w", mr.ModelName, err)
	}
	mr.RecordsFile = recordsFile

	reportFile := filepath.Join(outputPath, fmt.Sprintf("%s.txt", safeModelName))
	if err := os.WriteFile(reportFile, []byte(formatReport(mr)), 0o644); err != nil {
		return fmt.Errorf("failed to write report for model %s: %w", mr.ModelName, err)
	}
	mr.ReportFile = reportFile

	return nil
}

// formatReport renders records as a human-readable text report.
func formatReport(mr *ModelRun) string {
	var b strings.Builder
	for _, r := range mr.Records {
		fmt.Fprintf(&b, "---\n")
		fmt.Fprintf(&b, "NO. %s\n", r.ID)
		fmt.Fprintf(&b, "PROMPT: %s\n", r.Prompt)
		if r.Expected != "" {
			fmt.Fprintf(&b, "EXPECTED: %s\n", r.Expected)
		}
		fmt.Fprintf(&b, "PREDICTED: %s\n", r.Predicted)
		if r.Score != nil {
			fmt.Fprintf(&b, "SCORE: %.0f\n", *r.Score)
		}
	}
	if mr.Summary != nil {
		fmt.Fprintf(&b, "---\n")
		fmt.Fprintf(&b, "MEAN SCORE: %.2f (%d records scored)\n", mr.Summary.Mean, mr.Summary.Scored)
	}
	return b.String()
}

// sanitizeFilename replaces characters unsafe for filenames with underscores.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}

func writeRunManifest(outputPath string, run *Run) error {
	models := make([]map[string]interface{}, 0, len(run.Models))
	for _, m := range run.Models {
		entry := map[string]interface{}{
			"model_name":   m.ModelName,
			"duration":     m.Duration.Seconds(),
			"records_file": m.RecordsFile,
			"report_file":  m.ReportFile,
		}
		if m.Summary != nil {
			entry["summary"] = m.Summary
		}
		models = append(models, entry)
	}

	manifest := map[string]interface{}{
		"id":            run.ID,
		"suite":         run.Suite,
		"metric":        run.Metric,
		"timestamp":     run.Timestamp,
		"full_duration": run.Duration.Seconds(),
		"models":        models,
	}

	data, err := json.MarshalIndent(manifest, "", "    ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(outputPath, "resultset.json"), data, 0o644)
}

// LoadRecordsFile reads a per-model records JSON written by a previous run.
func LoadRecordsFile(path string) (*RecordsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	var rf RecordsFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse records file: %w", err)
	}
	return &rf, nil
}

// ScoreFileOutput is the structured output of an offline rescoring pass.
type ScoreFileOutput struct {
	Timestamp   string          `json:"timestamp"`
	RecordsPath string          `json:"records_file"`
	Metric      string          `json:"metric"`
	Normalized  bool            `json:"normalized"`
	Summary     *scorer.Summary `json:"summary"`
	Records     []*Record       `json:"records"`
}

// WriteScoreFile writes a rescoring output as JSON next to the records file.
func WriteScoreFile(output *ScoreFileOutput, recordsPath string) (string, error) {
	if output.Timestamp == "" {
		output.Timestamp = time.Now().Format(time.RFC3339)
	}
	scoresFile := strings.TrimSuffix(recordsPath, ".json") + "_scores.json"

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal scores: %w", err)
	}

	if err := os.WriteFile(scoresFile, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write scores file: %w", err)
	}

	return scoresFile, nil
}
