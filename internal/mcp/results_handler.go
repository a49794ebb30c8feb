package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/prompteval/internal/server"
)

func handleGetResults(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	runID, _ := args["run_id"].(string)

	if runID != "" {
		return getSpecificRun(sc.OutputDir, runID)
	}
	return listRuns(sc.OutputDir)
}

func listRuns(outputDir string) (*mcp.CallToolResult, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return mcp.NewToolResultText("[]"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to read results directory: %v", err)), nil
	}

	var runs []map[string]interface{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		manifestPath := filepath.Join(outputDir, e.Name(), "resultset.json")
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			continue
		}

		var manifest map[string]interface{}
		if err := json.Unmarshal(data, &manifest); err != nil {
			continue
		}

		// Check for score files.
		files, _ := os.ReadDir(filepath.Join(outputDir, e.Name()))
		var scoreFiles []string
		for _, f := range files {
			if strings.HasSuffix(f.Name(), "_scores.json") {
				scoreFiles = append(scoreFiles, f.Name())
			}
		}
		manifest["score_files"] = scoreFiles
		runs = append(runs, manifest)
	}

	if len(runs) == 0 {
		return mcp.NewToolResultText("[]"), nil
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func getSpecificRun(outputDir, runID string) (*mcp.CallToolResult, error) {
	runPath, err := resolveRunPath(outputDir, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid run_id: %v", err)), nil
	}
	manifestPath := filepath.Join(runPath, "resultset.json")

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found: %v", runID, err)), nil
	}

	var manifest map[string]interface{}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse run manifest: %v", err)), nil
	}

	// Include score data if available.
	files, _ := os.ReadDir(runPath)
	scores := make(map[string]interface{})
	for _, f := range files {
		if strings.HasSuffix(f.Name(), "_scores.json") {
			scoreData, err := os.ReadFile(filepath.Join(runPath, f.Name()))
			if err == nil {
				var scoreObj interface{}
				if json.Unmarshal(scoreData, &scoreObj) == nil {
					scores[f.Name()] = scoreObj
				}
			}
		}
	}
	if len(scores) > 0 {
		manifest["scores"] = scores
	}

	result, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}
