package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/prompteval/internal/harness"
	"github.com/giantswarm/prompteval/internal/scorer"
	"github.com/giantswarm/prompteval/internal/suite"
)

func newRunCmd() *cobra.Command {
	var (
		models          []string
		endpoint        string
		apiKey          string
		temperature     float64
		maxOutputTokens int
		metricName      string
		outputDir       string
		suitesDir       string
		timeout         time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <suite>",
		Short: "Run a test suite against one or more models",
		Long: `Run renders the suite's prompt template for every record, sends each
prompt to the configured endpoint, scores the responses against the expected
answers, and writes per-model JSON and text reports to the output directory.

A single failed record aborts the model run; partial results are not written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := suite.Load(args[0], suitesDir)
			if err != nil {
				return fmt.Errorf("loading suite: %w", err)
			}

			// --metric overrides whatever the suite config declares.
			if metricName == "" {
				metricName = s.Metric
			}
			metric, err := scorer.Get(metricName)
			if err != nil {
				return err
			}

			if len(models) == 0 {
				return fmt.Errorf("at least one --model is required")
			}
			runModels := make([]suite.Model, 0, len(models))
			for _, name := range models {
				runModels = append(runModels, suite.Model{
					Name:        name,
					Temperature: temperature,
				})
			}

			client := newLLMClientFromFlags(endpoint, apiKey, "")

			h := harness.NewHarness(client, metric, outputDir)
			if maxOutputTokens > 0 {
				h.SetMaxOutputTokens(maxOutputTokens)
			}
			h.SetProgressFunc(func(model string, current, total int) {
				fmt.Printf("\r[%s] record %d/%d", model, current, total)
				if current == total {
					fmt.Println()
				}
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			slog.Info("starting run", "suite", s.Name, "metric", metric.Name(), "models", len(runModels))

			run, err := h.Run(ctx, s, runModels)
			if err != nil {
				return fmt.Errorf("running suite: %w", err)
			}

			fmt.Printf("\nRun %s completed in %.1fs\n", run.ID, run.Duration.Seconds())
			for _, mr := range run.Models {
				fmt.Println(formatModelResult(mr))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&models, "model", "m", nil, "Model to evaluate (repeatable)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "OpenAI-compatible API base URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (defaults to OPENAI_API_KEY)")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0, "Sampling temperature")
	cmd.Flags().IntVar(&maxOutputTokens, "max-output-tokens", 0, "Maximum tokens per response (0 = provider default)")
	cmd.Flags().StringVar(&metricName, "metric", "", "Scoring metric (overrides suite config)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "results", "Directory for result files")
	cmd.Flags().StringVar(&suitesDir, "suites-dir", "", "Directory with external suite definitions")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Overall run timeout")

	return cmd
}

// formatModelResult renders the one-line result for a model. A suite without
// expected answers produces records but no summary, so Summary can be nil.
func formatModelResult(mr harness.ModelRun) string {
	if mr.Summary == nil {
		return fmt.Sprintf("  %s: %d records, no expected answers to score (%s)",
			mr.ModelName, len(mr.Records), mr.ReportFile)
	}
	return fmt.Sprintf("  %s: mean score %.2f over %d records (%s)",
		mr.ModelName, mr.Summary.Mean, mr.Summary.Scored, mr.ReportFile)
}
