package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/prompteval/internal/scorer"
	"github.com/giantswarm/prompteval/internal/server"
	"github.com/giantswarm/prompteval/internal/suite"
)

func registerSuiteTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// list_suites
	listTool := mcp.NewTool("list_suites",
		mcp.WithDescription("List available evaluation suites with metadata"),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListSuites(ctx, request, sc)
	})

	// run_suite
	runTool := mcp.NewTool("run_suite",
		mcp.WithDescription("Render the suite's prompt template for every record, send the prompts to the specified models, and score responses against expected answers."),
		mcp.WithString("suite",
			mcp.Required(),
			mcp.Description("Name of the suite to run (e.g. 'geography-qa')"),
		),
		mcp.WithString("model",
			mcp.Description("Model name to evaluate"),
		),
		mcp.WithString("endpoint",
			mcp.Description("Generation API endpoint URL (overrides the server default)"),
		),
		mcp.WithNumber("temperature",
			mcp.Description("Temperature for generation (default: 0)"),
		),
		mcp.WithString("metric",
			mcp.Description(fmt.Sprintf("Scoring metric (default: from suite config; one of %s)", strings.Join(scorer.Names(), ", "))),
		),
	)
	s.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunSuite(ctx, request, sc)
	})

	// score_records
	scoreTool := mcp.NewTool("score_records",
		mcp.WithDescription("Rescore a completed run's records with a string similarity metric. Scoring is deterministic and needs no model access."),
		mcp.WithString("records_file",
			mcp.Description("Path to the records JSON to score (relative to the output directory)"),
		),
		mcp.WithString("run_id",
			mcp.Description("Run ID whose records files should all be scored (alternative to records_file)"),
		),
		mcp.WithString("metric",
			mcp.Description(fmt.Sprintf("Scoring metric (default: %s)", scorer.DefaultMetric)),
		),
	)
	s.AddTool(scoreTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleScoreRecords(ctx, request, sc)
	})

	// get_results
	getResultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Retrieve results and scores for past evaluation runs"),
		mcp.WithString("run_id",
			mcp.Description("Specific run ID to retrieve (optional, lists all if omitted)"),
		),
	)
	s.AddTool(getResultsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetResults(ctx, request, sc)
	})

	return nil
}

func handleListSuites(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	names, err := suite.List(sc.SuitesDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list suites: %v", err)), nil
	}

	type suiteInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Version     string `json:"version"`
		Metric      string `json:"metric"`
		RecordCount int    `json:"record_count"`
	}

	var suites []suiteInfo
	for _, name := range names {
		s, err := suite.Load(name, sc.SuitesDir)
		if err != nil {
			continue
		}
		suites = append(suites, suiteInfo{
			Name:        s.Name,
			Description: s.Description,
			Version:     s.Version,
			Metric:      s.Metric,
			RecordCount: len(s.Records),
		})
	}

	data, err := json.MarshalIndent(suites, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal suites: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
