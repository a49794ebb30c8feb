package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/prompteval/internal/harness"
	"github.com/giantswarm/prompteval/internal/llm"
	"github.com/giantswarm/prompteval/internal/scorer"
	"github.com/giantswarm/prompteval/internal/server"
	"github.com/giantswarm/prompteval/internal/suite"
)

func handleRunSuite(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	suiteName, ok := args["suite"].(string)
	if !ok || suiteName == "" {
		return mcp.NewToolResultError("suite is required"), nil
	}

	s, err := suite.Load(suiteName, sc.SuitesDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load suite: %v", err)), nil
	}

	var models []suite.Model
	if modelsJSON, ok := args["models"].(string); ok && modelsJSON != "" {
		if err := json.Unmarshal([]byte(modelsJSON), &models); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid models JSON: %v", err)), nil
		}
	} else if modelName, ok := args["model"].(string); ok && modelName != "" {
		temp := 0.0
		if t, ok := args["temperature"].(float64); ok {
			temp = t
		}
		models = []suite.Model{{Name: modelName, Temperature: temp}}
	}
	if len(models) == 0 {
		return mcp.NewToolResultError("either 'model' or 'models' is required"), nil
	}

	// Determine the generation client to use.
	client := sc.LLMClient
	if endpoint, ok := args["endpoint"].(string); ok && endpoint != "" {
		client = llm.NewOpenAIClient(llm.WithBaseURL(endpoint))
	}
	if client == nil {
		return mcp.NewToolResultError("generation client is not configured (provide 'endpoint' or configure the server)"), nil
	}

	metricName := s.Metric
	if m, ok := args["metric"].(string); ok && m != "" {
		metricName = m
	}
	metric, err := scorer.Get(metricName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h := harness.NewHarness(client, metric, sc.OutputDir)
	run, err := h.Run(ctx, s, models)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation run failed: %v", err)), nil
	}

	// Return summary.
	modelSummaries := make([]map[string]interface{}, 0, len(run.Models))
	for _, m := range run.Models {
		entry := map[string]interface{}{
			"model":        m.ModelName,
			"records_file": m.RecordsFile,
			"duration":     m.Duration.String(),
		}
		if m.Summary != nil {
			entry["summary"] = m.Summary
		}
		modelSummaries = append(modelSummaries, entry)
	}

	summary := map[string]interface{}{
		"run_id":   run.ID,
		"suite":    run.Suite,
		"metric":   run.Metric,
		"duration": run.Duration.String(),
		"models":   modelSummaries,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
