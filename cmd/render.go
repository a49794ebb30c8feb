package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giantswarm/prompteval/internal/prompt"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <template-file> [key=value ...]",
		Short: "Render a prompt template with the given bindings",
		Long: `Render reads a template file containing {placeholder} markers, substitutes
the key=value bindings given on the command line, and prints the result.
Every placeholder in the template must have a binding; unused bindings are
ignored. Run with no bindings to list the template's placeholders.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading template: %w", err)
			}
			tmpl := prompt.New(string(data))

			if len(args) == 1 {
				placeholders := tmpl.Placeholders()
				if len(placeholders) == 0 {
					fmt.Println("Template has no placeholders.")
					return nil
				}
				fmt.Println("Placeholders:")
				for _, p := range placeholders {
					fmt.Printf("  %s\n", p)
				}
				return nil
			}

			bindings := make(map[string]string, len(args)-1)
			for _, arg := range args[1:] {
				key, value, found := strings.Cut(arg, "=")
				if !found || key == "" {
					return fmt.Errorf("invalid binding %q, expected key=value", arg)
				}
				bindings[key] = value
			}

			rendered, err := tmpl.Render(bindings)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
			return nil
		},
	}

	return cmd
}
