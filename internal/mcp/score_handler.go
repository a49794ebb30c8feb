package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/prompteval/internal/harness"
	"github.com/giantswarm/prompteval/internal/scorer"
	"github.com/giantswarm/prompteval/internal/server"
)

func handleScoreRecords(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	recordsFile, _ := args["records_file"].(string)
	runID, _ := args["run_id"].(string)

	if recordsFile == "" && runID == "" {
		return mcp.NewToolResultError("either 'run_id' or 'records_file' is required"), nil
	}

	metricName, _ := args["metric"].(string)
	metric, err := scorer.Get(metricName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// If run_id is specified, resolve to the records files in the run directory.
	if runID != "" {
		return scoreByRunID(sc.OutputDir, runID, metric)
	}

	resolved, err := resolveRecordsFilePath(sc.OutputDir, recordsFile)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid records_file: %v", err)), nil
	}
	return scoreSingleFile(resolved, metric)
}

// scoreSingleFile rescores a single records file.
func scoreSingleFile(recordsFile string, metric scorer.Metric) (*mcp.CallToolResult, error) {
	rf, err := harness.LoadRecordsFile(recordsFile)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	summary, err := harness.Rescore(rf.Records, metric)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	scoresFile, err := harness.WriteScoreFile(&harness.ScoreFileOutput{
		RecordsPath: recordsFile,
		Metric:      metric.Name(),
		Summary:     summary,
		Records:     rf.Records,
	}, recordsFile)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write scores: %v", err)), nil
	}

	result := map[string]interface{}{
		"scores_file": scoresFile,
		"metric":      metric.Name(),
		"summary":     summary,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// scoreByRunID finds all records JSON files in a run directory and rescores
// each one.
func scoreByRunID(outputDir, runID string, metric scorer.Metric) (*mcp.CallToolResult, error) {
	runPath, err := resolveRunPath(outputDir, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid run_id: %v", err)), nil
	}

	entries, err := os.ReadDir(runPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found: %v", runID, err)), nil
	}

	// Find records files (*.json, excluding the manifest and score files).
	var recordsFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".json") || name == "resultset.json" || strings.HasSuffix(name, "_scores.json") {
			continue
		}
		recordsFiles = append(recordsFiles, filepath.Join(runPath, name))
	}

	if len(recordsFiles) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no records files found in run %q", runID)), nil
	}

	type fileScore struct {
		RecordsFile string          `json:"records_file"`
		ScoresFile  string          `json:"scores_file"`
		Summary     *scorer.Summary `json:"summary"`
	}

	var scored []fileScore
	for _, rfPath := range recordsFiles {
		rf, err := harness.LoadRecordsFile(rfPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scoring failed for %s: %v", rfPath, err)), nil
		}

		summary, err := harness.Rescore(rf.Records, metric)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scoring failed for %s: %v", rfPath, err)), nil
		}

		scoresFile, err := harness.WriteScoreFile(&harness.ScoreFileOutput{
			RecordsPath: rfPath,
			Metric:      metric.Name(),
			Summary:     summary,
			Records:     rf.Records,
		}, rfPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to write scores for %s: %v", rfPath, err)), nil
		}

		scored = append(scored, fileScore{
			RecordsFile: rfPath,
			ScoresFile:  scoresFile,
			Summary:     summary,
		})
	}

	result := map[string]interface{}{
		"run_id": runID,
		"metric": metric.Name(),
		"scored": scored,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
