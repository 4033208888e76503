// cmd/classify.go
package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/surveyor/internal/classify"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <question text>",
		Short: "Shows how a question text is classified",
		Long: `Prints what the answer rules derive from a question text: whether it is the
overall satisfaction question, which weight profiles the rating scales use and
which checkbox rule applies.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := classify.Describe(strings.Join(args, " "))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Text\t%s\n", d.Text)
			fmt.Fprintf(tw, "Overall satisfaction\t%t\n", d.OverallSatisfaction)
			fmt.Fprintf(tw, "Problem experience\t%t\n", d.ProblemExperience)
			fmt.Fprintf(tw, "Likelihood profile\t%s %s\n", d.Likelihood.Name, formatWeights(d.Likelihood.Weights))
			fmt.Fprintf(tw, "Satisfaction profile\t%s %s\n", d.Satisfaction.Name, formatWeights(d.Satisfaction.Weights))
			fmt.Fprintf(tw, "Checkbox rule\t%s (at most %d)\n", d.Checkbox.Category, d.Checkbox.Cap)
			return tw.Flush()
		},
	}
}

func formatWeights(w []float64) string {
	parts := make([]string, len(w))
	for i, x := range w {
		parts[i] = fmt.Sprintf("%.2f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
