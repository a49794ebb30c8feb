package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giantswarm/prompteval/internal/harness"
	"github.com/giantswarm/prompteval/internal/scorer"
)

func newScoreCmd() *cobra.Command {
	var (
		metricName  string
		normalize   bool
		classReport bool
	)

	cmd := &cobra.Command{
		Use:   "score <records.json>",
		Short: "Rescore a previous run's records file with a metric",
		Long: `Score loads the per-model records JSON written by a previous run,
recomputes the score for every record that has an expected answer, and writes
a <name>_scores.json file next to the input.

With --normalize, expected and predicted texts are lowercased and
whitespace-trimmed before scoring. With --report, a per-label classification
report (accuracy, precision, recall, F1) is printed instead of similarity
summary statistics; this treats expected and predicted values as labels and
is most useful with the exact metric.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			rf, err := harness.LoadRecordsFile(args[0])
			if err != nil {
				return err
			}

			if metricName == "" {
				metricName = rf.Metric
			}
			metric, err := scorer.Get(metricName)
			if err != nil {
				return err
			}

			if normalize {
				for _, r := range rf.Records {
					r.Expected = normalizeText(r.Expected)
					r.Predicted = normalizeText(r.Predicted)
				}
			}

			if classReport {
				var expected, predicted []string
				for _, r := range rf.Records {
					if r.Expected == "" {
						continue
					}
					expected = append(expected, r.Expected)
					predicted = append(predicted, r.Predicted)
				}
				report, err := scorer.Report(expected, predicted)
				if err != nil {
					return err
				}
				fmt.Println(report.Format())
				return nil
			}

			summary, err := harness.Rescore(rf.Records, metric)
			if err != nil {
				return err
			}

			path, err := harness.WriteScoreFile(&harness.ScoreFileOutput{
				RecordsPath: args[0],
				Metric:      metric.Name(),
				Normalized:  normalize,
				Summary:     summary,
				Records:     rf.Records,
			}, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Scored %d records with %s: mean %.2f (min %.2f, max %.2f)\n",
				summary.Scored, metric.Name(), summary.Mean, summary.Min, summary.Max)
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&metricName, "metric", "", "Scoring metric (defaults to the records file's metric)")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "Lowercase and trim texts before scoring")
	cmd.Flags().BoolVar(&classReport, "report", false, "Print a classification report instead of rescoring")

	return cmd
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
