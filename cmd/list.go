package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/prompteval/internal/suite"
)

func newListCmd() *cobra.Command {
	var suitesDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available test suites",
		RunE: func(_ *cobra.Command, _ []string) error {
			names, err := suite.List(suitesDir)
			if err != nil {
				return fmt.Errorf("listing suites: %w", err)
			}

			fmt.Printf("Available suites (%d):\n\n", len(names))
			for _, name := range names {
				s, err := suite.Load(name, suitesDir)
				if err != nil {
					fmt.Printf("  %s (failed to load: %v)\n", name, err)
					continue
				}
				fmt.Printf("  %s (v%s, metric: %s, %d records)\n    %s\n",
					s.Name, s.Version, s.Metric, len(s.Records), s.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&suitesDir, "suites-dir", "", "Directory with external suite definitions")

	return cmd
}
